package dto

import "github.com/sige-edu/sige-api/internal/models"

// GenerateReportRequest captures POST /reports/generate payload.
type GenerateReportRequest struct {
	Type     models.ReportType   `json:"type" validate:"required,oneof=STUDENTS GRADES ATTENDANCE PAYMENTS"`
	Format   models.ReportFormat `json:"format" validate:"required,oneof=CSV PDF"`
	SchoolID *string             `json:"schoolId,omitempty" validate:"omitempty,uuid"`
	ClassID  *string             `json:"classId,omitempty" validate:"omitempty,uuid"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID     string                 `json:"id"`
	Status models.ReportJobStatus `json:"status"`
}

// ReportStatusResponse exposes job state plus a signed download URL once
// the job has completed.
type ReportStatusResponse struct {
	ID          string                 `json:"id"`
	Status      models.ReportJobStatus `json:"status"`
	DownloadURL *string                `json:"downloadUrl,omitempty"`
	Error       *string                `json:"error,omitempty"`
}
