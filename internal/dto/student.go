package dto

import "github.com/sige-edu/sige-api/internal/models"

// CreateStudentRequest captures POST /students payload. A user account
// is created alongside the student record.
type CreateStudentRequest struct {
	Name           string         `json:"name" validate:"required,min=2,max=120"`
	Email          string         `json:"email" validate:"required,email"`
	Password       string         `json:"password" validate:"required,min=8"`
	SchoolID       string         `json:"schoolId" validate:"required,uuid"`
	BirthDate      string         `json:"birthDate" validate:"required,datetime=2006-01-02"`
	Gender         *models.Gender `json:"gender,omitempty" validate:"omitempty,oneof=MALE FEMALE OTHER"`
	DocumentNumber *string        `json:"documentNumber,omitempty"`
	Address        *string        `json:"address,omitempty"`
	GuardianName   *string        `json:"guardianName,omitempty"`
	GuardianPhone  *string        `json:"guardianPhone,omitempty"`
	GuardianEmail  *string        `json:"guardianEmail,omitempty" validate:"omitempty,email"`
}

// UpdateStudentRequest captures PUT /students/:id payload.
type UpdateStudentRequest struct {
	Name           *string               `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Phone          *string               `json:"phone,omitempty"`
	Address        *string               `json:"address,omitempty"`
	GuardianName   *string               `json:"guardianName,omitempty"`
	GuardianPhone  *string               `json:"guardianPhone,omitempty"`
	GuardianEmail  *string               `json:"guardianEmail,omitempty" validate:"omitempty,email"`
	DocumentNumber *string               `json:"documentNumber,omitempty"`
	Status         *models.StudentStatus `json:"status,omitempty" validate:"omitempty,oneof=ENROLLED TRANSFERRED DROPPED GRADUATED"`
}

// CreateTeacherRequest captures POST /teachers payload. A user account
// is created alongside the teacher record.
type CreateTeacherRequest struct {
	Name           string  `json:"name" validate:"required,min=2,max=120"`
	Email          string  `json:"email" validate:"required,email"`
	Password       string  `json:"password" validate:"required,min=8"`
	SchoolID       string  `json:"schoolId" validate:"required,uuid"`
	HiredAt        string  `json:"hiredAt" validate:"required,datetime=2006-01-02"`
	Specialization *string `json:"specialization,omitempty"`
	Degree         *string `json:"degree,omitempty"`
}

// UpdateTeacherRequest captures PUT /teachers/:id payload.
type UpdateTeacherRequest struct {
	Name           *string               `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Phone          *string               `json:"phone,omitempty"`
	Specialization *string               `json:"specialization,omitempty"`
	Degree         *string               `json:"degree,omitempty"`
	Status         *models.TeacherStatus `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE ON_LEAVE AWAY DISMISSED"`
}
