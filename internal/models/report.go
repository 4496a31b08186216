package models

import "time"

// ReportJobStatus tracks the progress of an async export job.
type ReportJobStatus string

const (
	ReportJobPending    ReportJobStatus = "PENDING"
	ReportJobProcessing ReportJobStatus = "PROCESSING"
	ReportJobCompleted  ReportJobStatus = "COMPLETED"
	ReportJobFailed     ReportJobStatus = "FAILED"
)

// ReportFormat is the output format of an export job.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "CSV"
	ReportFormatPDF ReportFormat = "PDF"
)

// ReportType identifies what data an export job renders.
type ReportType string

const (
	ReportTypeStudents   ReportType = "STUDENTS"
	ReportTypeGrades     ReportType = "GRADES"
	ReportTypeAttendance ReportType = "ATTENDANCE"
	ReportTypePayments   ReportType = "PAYMENTS"
)

// ReportJob is an asynchronous export request and its outcome.
type ReportJob struct {
	ID          string          `db:"id" json:"id"`
	Type        ReportType      `db:"type" json:"type"`
	Format      ReportFormat    `db:"format" json:"format"`
	Params      string          `db:"params" json:"params"`
	Status      ReportJobStatus `db:"status" json:"status"`
	FilePath    *string         `db:"file_path" json:"-"`
	Error       *string         `db:"error" json:"error,omitempty"`
	RequestedBy string          `db:"requested_by" json:"requested_by"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	CompletedAt *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
}
