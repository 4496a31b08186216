package dto

import "github.com/sige-edu/sige-api/internal/models"

// CreateUserRequest captures POST /users payload.
type CreateUserRequest struct {
	Name     string          `json:"name" validate:"required,min=2,max=120"`
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=8"`
	Role     models.UserRole `json:"role" validate:"required,oneof=ADMIN DIRECTOR TEACHER STUDENT GUARDIAN"`
	Phone    *string         `json:"phone,omitempty"`
}

// UpdateUserRequest captures PUT /users/:id payload. Nil fields are left
// untouched.
type UpdateUserRequest struct {
	Name   *string            `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Email  *string            `json:"email,omitempty" validate:"omitempty,email"`
	Phone  *string            `json:"phone,omitempty"`
	Status *models.UserStatus `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE INACTIVE SUSPENDED"`
}
