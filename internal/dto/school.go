package dto

import "github.com/sige-edu/sige-api/internal/models"

// CreateSchoolRequest captures POST /schools payload.
type CreateSchoolRequest struct {
	Name           string  `json:"name" validate:"required,min=2,max=160"`
	DocumentNumber string  `json:"documentNumber" validate:"required,min=11,max=18"`
	Address        *string `json:"address,omitempty"`
	City           *string `json:"city,omitempty"`
	State          *string `json:"state,omitempty" validate:"omitempty,len=2"`
	PostalCode     *string `json:"postalCode,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email"`
	DirectorID     *string `json:"directorId,omitempty" validate:"omitempty,uuid"`
}

// UpdateSchoolRequest captures PUT /schools/:id payload.
type UpdateSchoolRequest struct {
	Name       *string              `json:"name,omitempty" validate:"omitempty,min=2,max=160"`
	Address    *string              `json:"address,omitempty"`
	City       *string              `json:"city,omitempty"`
	State      *string              `json:"state,omitempty" validate:"omitempty,len=2"`
	PostalCode *string              `json:"postalCode,omitempty"`
	Phone      *string              `json:"phone,omitempty"`
	Email      *string              `json:"email,omitempty" validate:"omitempty,email"`
	DirectorID *string              `json:"directorId,omitempty" validate:"omitempty,uuid"`
	Status     *models.SchoolStatus `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

// CreateCourseRequest captures POST /schools/:id/courses payload.
type CreateCourseRequest struct {
	Name          string                `json:"name" validate:"required,min=2,max=160"`
	Code          string                `json:"code" validate:"required,min=2,max=20"`
	Description   *string               `json:"description,omitempty"`
	DurationYears int                   `json:"durationYears" validate:"required,min=1,max=10"`
	Level         models.EducationLevel `json:"level" validate:"required,oneof=KINDERGARTEN PRIMARY MIDDLE HIGH TECHNICAL HIGHER"`
}

// UpdateCourseRequest captures PUT /courses/:id payload.
type UpdateCourseRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,min=2,max=160"`
	Description   *string `json:"description,omitempty"`
	DurationYears *int    `json:"durationYears,omitempty" validate:"omitempty,min=1,max=10"`
	Active        *bool   `json:"active,omitempty"`
}

// CreateSubjectRequest captures POST /courses/:id/subjects payload.
type CreateSubjectRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=160"`
	Code       string `json:"code" validate:"required,min=2,max=20"`
	TotalHours int    `json:"totalHours" validate:"required,min=1"`
}
