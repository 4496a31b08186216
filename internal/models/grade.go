package models

import "time"

// Assessment is a graded activity within a subject (exam, project, quiz).
type Assessment struct {
	ID        string    `db:"id" json:"id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	Name      string    `db:"name" json:"name"`
	Weight    float64   `db:"weight" json:"weight"`
	MaxScore  float64   `db:"max_score" json:"max_score"`
	AppliedAt time.Time `db:"applied_at" json:"applied_at"`
	CreatedBy string    `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Grade is a student's score for an assessment.
type Grade struct {
	ID           string    `db:"id" json:"id"`
	AssessmentID string    `db:"assessment_id" json:"assessment_id"`
	EnrollmentID string    `db:"enrollment_id" json:"enrollment_id"`
	Score        float64   `db:"score" json:"score"`
	Comment      *string   `db:"comment" json:"comment,omitempty"`
	GradedBy     string    `db:"graded_by" json:"graded_by"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// GradeDetail joins a grade with its assessment and student names.
type GradeDetail struct {
	Grade
	AssessmentName string `db:"assessment_name" json:"assessment_name"`
	SubjectName    string `db:"subject_name" json:"subject_name"`
	StudentName    string `db:"student_name" json:"student_name"`
}

// GradeFilter defines filter criteria for listing grades.
type GradeFilter struct {
	EnrollmentID string
	AssessmentID string
	ClassID      string
	SubjectID    string
	Page         int
	PageSize     int
}

// QuarterForMonth maps a calendar month to the academic quarter used by
// grade reporting: Feb-Apr is 1, May-Jul is 2, Aug-Oct is 3, and the
// remaining months fall into 4.
func QuarterForMonth(month time.Month) int {
	switch {
	case month >= time.February && month <= time.April:
		return 1
	case month >= time.May && month <= time.July:
		return 2
	case month >= time.August && month <= time.October:
		return 3
	default:
		return 4
	}
}
