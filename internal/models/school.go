package models

import "time"

// SchoolStatus marks whether a school is operating.
type SchoolStatus string

const (
	SchoolStatusActive   SchoolStatus = "ACTIVE"
	SchoolStatusInactive SchoolStatus = "INACTIVE"
)

// EducationLevel classifies courses by stage.
type EducationLevel string

const (
	LevelKindergarten EducationLevel = "KINDERGARTEN"
	LevelPrimary      EducationLevel = "PRIMARY"
	LevelMiddle       EducationLevel = "MIDDLE"
	LevelHigh         EducationLevel = "HIGH"
	LevelTechnical    EducationLevel = "TECHNICAL"
	LevelHigher       EducationLevel = "HIGHER"
)

// School represents an institution record.
type School struct {
	ID             string       `db:"id" json:"id"`
	Name           string       `db:"name" json:"name"`
	DocumentNumber string       `db:"document_number" json:"document_number"`
	Address        *string      `db:"address" json:"address,omitempty"`
	City           *string      `db:"city" json:"city,omitempty"`
	State          *string      `db:"state" json:"state,omitempty"`
	PostalCode     *string      `db:"postal_code" json:"postal_code,omitempty"`
	Phone          *string      `db:"phone" json:"phone,omitempty"`
	Email          *string      `db:"email" json:"email,omitempty"`
	DirectorID     *string      `db:"director_id" json:"director_id,omitempty"`
	Status         SchoolStatus `db:"status" json:"status"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updated_at"`
}

// SchoolFilter defines filter criteria for listing schools.
type SchoolFilter struct {
	Search   string
	Status   *SchoolStatus
	Page     int
	PageSize int
}

// SchoolStats summarises a single school for its statistics endpoint.
type SchoolStats struct {
	SchoolID      string `db:"school_id" json:"school_id"`
	TotalStudents int    `db:"total_students" json:"total_students"`
	TotalTeachers int    `db:"total_teachers" json:"total_teachers"`
	TotalCourses  int    `db:"total_courses" json:"total_courses"`
	TotalClasses  int    `db:"total_classes" json:"total_classes"`
}

// Course represents a programme offered by a school.
type Course struct {
	ID            string         `db:"id" json:"id"`
	SchoolID      string         `db:"school_id" json:"school_id"`
	Name          string         `db:"name" json:"name"`
	Code          string         `db:"code" json:"code"`
	Description   *string        `db:"description" json:"description,omitempty"`
	DurationYears int            `db:"duration_years" json:"duration_years"`
	Level         EducationLevel `db:"level" json:"level"`
	Active        bool           `db:"active" json:"active"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// CourseFilter defines filter criteria for listing courses.
type CourseFilter struct {
	SchoolID string
	Search   string
	Active   *bool
	Page     int
	PageSize int
}

// Subject represents a discipline taught within a course.
type Subject struct {
	ID         string    `db:"id" json:"id"`
	CourseID   string    `db:"course_id" json:"course_id"`
	Name       string    `db:"name" json:"name"`
	Code       string    `db:"code" json:"code"`
	TotalHours int       `db:"total_hours" json:"total_hours"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
