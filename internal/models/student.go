package models

import "time"

// StudentStatus tracks the academic situation of a student.
type StudentStatus string

const (
	StudentStatusEnrolled    StudentStatus = "ENROLLED"
	StudentStatusTransferred StudentStatus = "TRANSFERRED"
	StudentStatusDropped     StudentStatus = "DROPPED"
	StudentStatusGraduated   StudentStatus = "GRADUATED"
)

// Gender is free-form on input but normalised to these values.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// Student represents a student record, always linked to a user account.
type Student struct {
	ID               string        `db:"id" json:"id"`
	UserID           string        `db:"user_id" json:"user_id"`
	SchoolID         string        `db:"school_id" json:"school_id"`
	RegistrationCode string        `db:"registration_code" json:"registration_code"`
	BirthDate        time.Time     `db:"birth_date" json:"birth_date"`
	Gender           *Gender       `db:"gender" json:"gender,omitempty"`
	DocumentNumber   *string       `db:"document_number" json:"document_number,omitempty"`
	Address          *string       `db:"address" json:"address,omitempty"`
	GuardianName     *string       `db:"guardian_name" json:"guardian_name,omitempty"`
	GuardianPhone    *string       `db:"guardian_phone" json:"guardian_phone,omitempty"`
	GuardianEmail    *string       `db:"guardian_email" json:"guardian_email,omitempty"`
	Status           StudentStatus `db:"status" json:"status"`
	EnrolledAt       time.Time     `db:"enrolled_at" json:"enrolled_at"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
}

// StudentDetail joins the student row with its owning user.
type StudentDetail struct {
	Student
	Name       string     `db:"name" json:"name"`
	Email      string     `db:"email" json:"email"`
	Phone      *string    `db:"phone" json:"phone,omitempty"`
	UserStatus UserStatus `db:"user_status" json:"user_status"`
}

// StudentFilter defines filter criteria for listing students.
type StudentFilter struct {
	SchoolID string
	ClassID  string
	Status   *StudentStatus
	Search   string
	Page     int
	PageSize int
}
