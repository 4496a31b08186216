package models

import "time"

// ClassStatus tracks the lifecycle of a class.
type ClassStatus string

const (
	ClassStatusActive    ClassStatus = "ACTIVE"
	ClassStatusFinished  ClassStatus = "FINISHED"
	ClassStatusCancelled ClassStatus = "CANCELLED"
)

// Shift is the period of the day a class runs in.
type Shift string

const (
	ShiftMorning   Shift = "MORNING"
	ShiftAfternoon Shift = "AFTERNOON"
	ShiftEvening   Shift = "EVENING"
	ShiftFullTime  Shift = "FULL_TIME"
)

// EnrollmentStatus tracks the situation of a student within a class.
type EnrollmentStatus string

const (
	EnrollmentStatusActive      EnrollmentStatus = "ACTIVE"
	EnrollmentStatusLocked      EnrollmentStatus = "LOCKED"
	EnrollmentStatusTransferred EnrollmentStatus = "TRANSFERRED"
	EnrollmentStatusCompleted   EnrollmentStatus = "COMPLETED"
)

// Class represents a group of students attending a course together.
type Class struct {
	ID            string      `db:"id" json:"id"`
	SchoolID      string      `db:"school_id" json:"school_id"`
	CourseID      string      `db:"course_id" json:"course_id"`
	Name          string      `db:"name" json:"name"`
	Code          string      `db:"code" json:"code"`
	Year          int         `db:"year" json:"year"`
	Shift         Shift       `db:"shift" json:"shift"`
	Capacity      int         `db:"capacity" json:"capacity"`
	MainTeacherID *string     `db:"main_teacher_id" json:"main_teacher_id,omitempty"`
	Room          *string     `db:"room" json:"room,omitempty"`
	Status        ClassStatus `db:"status" json:"status"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}

// ClassDetail joins a class with its course and head teacher names plus
// the current active enrollment count.
type ClassDetail struct {
	Class
	CourseName      string  `db:"course_name" json:"course_name"`
	MainTeacherName *string `db:"main_teacher_name" json:"main_teacher_name,omitempty"`
	EnrolledCount   int     `db:"enrolled_count" json:"enrolled_count"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	SchoolID string
	CourseID string
	Year     *int
	Shift    *Shift
	Status   *ClassStatus
	Search   string
	Page     int
	PageSize int
}

// Enrollment links a student to a class.
type Enrollment struct {
	ID               string           `db:"id" json:"id"`
	ClassID          string           `db:"class_id" json:"class_id"`
	StudentID        string           `db:"student_id" json:"student_id"`
	EnrollmentNumber string           `db:"enrollment_number" json:"enrollment_number"`
	AcademicYear     int              `db:"academic_year" json:"academic_year"`
	Status           EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt       time.Time        `db:"enrolled_at" json:"enrolled_at"`
	LeftAt           *time.Time       `db:"left_at" json:"left_at,omitempty"`
	Notes            *string          `db:"notes" json:"notes,omitempty"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail joins an enrollment with student and class names.
type EnrollmentDetail struct {
	Enrollment
	StudentName string `db:"student_name" json:"student_name"`
	ClassName   string `db:"class_name" json:"class_name"`
}

// EnrollmentFilter defines filter criteria for listing enrollments.
type EnrollmentFilter struct {
	ClassID   string
	StudentID string
	Status    *EnrollmentStatus
	Page      int
	PageSize  int
}

// RosterChanges is the computed diff between the current active roster
// of a class and a desired set of student ids.
type RosterChanges struct {
	ToAdd    []string
	ToRemove []string
}

// RosterSyncResult summarises a roster synchronisation run.
type RosterSyncResult struct {
	ClassID     string   `json:"class_id"`
	Added       []string `json:"added"`
	Removed     []string `json:"removed"`
	Kept        int      `json:"kept"`
	TotalActive int      `json:"total_active"`
}
