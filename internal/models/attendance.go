package models

import "time"

// AttendanceRecord marks a student present or absent on a given date.
type AttendanceRecord struct {
	ID           string    `db:"id" json:"id"`
	EnrollmentID string    `db:"enrollment_id" json:"enrollment_id"`
	SubjectID    *string   `db:"subject_id" json:"subject_id,omitempty"`
	Date         time.Time `db:"date" json:"date"`
	Present      bool      `db:"present" json:"present"`
	Justified    bool      `db:"justified" json:"justified"`
	Note         *string   `db:"note" json:"note,omitempty"`
	RecordedBy   string    `db:"recorded_by" json:"recorded_by"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// AttendanceFilter defines filter criteria for listing attendance records.
type AttendanceFilter struct {
	EnrollmentID string
	ClassID      string
	SubjectID    string
	From         *time.Time
	To           *time.Time
	Present      *bool
	Page         int
	PageSize     int
}

// AttendanceSummary aggregates attendance for one enrollment.
type AttendanceSummary struct {
	EnrollmentID string  `db:"enrollment_id" json:"enrollment_id"`
	StudentID    string  `db:"student_id" json:"student_id"`
	StudentName  string  `db:"student_name" json:"student_name"`
	TotalRecords int     `db:"total_records" json:"total_records"`
	Presences    int     `db:"presences" json:"presences"`
	Rate         float64 `db:"rate" json:"rate"`
}
