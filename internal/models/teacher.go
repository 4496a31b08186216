package models

import "time"

// TeacherStatus tracks the employment situation of a teacher.
type TeacherStatus string

const (
	TeacherStatusActive    TeacherStatus = "ACTIVE"
	TeacherStatusOnLeave   TeacherStatus = "ON_LEAVE"
	TeacherStatusAway      TeacherStatus = "AWAY"
	TeacherStatusDismissed TeacherStatus = "DISMISSED"
)

// Teacher represents a teaching staff record linked to a user account.
type Teacher struct {
	ID             string        `db:"id" json:"id"`
	UserID         string        `db:"user_id" json:"user_id"`
	SchoolID       string        `db:"school_id" json:"school_id"`
	EmployeeCode   string        `db:"employee_code" json:"employee_code"`
	Specialization *string       `db:"specialization" json:"specialization,omitempty"`
	Degree         *string       `db:"degree" json:"degree,omitempty"`
	HiredAt        time.Time     `db:"hired_at" json:"hired_at"`
	Status         TeacherStatus `db:"status" json:"status"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// TeacherDetail joins the teacher row with its owning user.
type TeacherDetail struct {
	Teacher
	Name       string     `db:"name" json:"name"`
	Email      string     `db:"email" json:"email"`
	Phone      *string    `db:"phone" json:"phone,omitempty"`
	UserStatus UserStatus `db:"user_status" json:"user_status"`
}

// TeacherFilter defines filter criteria for listing teachers.
type TeacherFilter struct {
	SchoolID string
	Status   *TeacherStatus
	Search   string
	Page     int
	PageSize int
}
