package dto

import "github.com/sige-edu/sige-api/internal/models"

// CreateClassRequest captures POST /classes payload.
type CreateClassRequest struct {
	SchoolID      string       `json:"schoolId" validate:"required,uuid"`
	CourseID      string       `json:"courseId" validate:"required,uuid"`
	Name          string       `json:"name" validate:"required,min=2,max=120"`
	Code          string       `json:"code" validate:"required,min=2,max=20"`
	Year          int          `json:"year" validate:"required,min=2000,max=2100"`
	Shift         models.Shift `json:"shift" validate:"required,oneof=MORNING AFTERNOON EVENING FULL_TIME"`
	Capacity      int          `json:"capacity" validate:"required,min=1,max=200"`
	MainTeacherID *string      `json:"mainTeacherId,omitempty" validate:"omitempty,uuid"`
	Room          *string      `json:"room,omitempty"`
}

// UpdateClassRequest captures PUT /classes/:id payload.
type UpdateClassRequest struct {
	Name          *string             `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Shift         *models.Shift       `json:"shift,omitempty" validate:"omitempty,oneof=MORNING AFTERNOON EVENING FULL_TIME"`
	Capacity      *int                `json:"capacity,omitempty" validate:"omitempty,min=1,max=200"`
	MainTeacherID *string             `json:"mainTeacherId,omitempty" validate:"omitempty,uuid"`
	Room          *string             `json:"room,omitempty"`
	Status        *models.ClassStatus `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE FINISHED CANCELLED"`
}

// SyncRosterRequest captures POST /classes/:id/roster/sync payload: the
// full desired set of student ids for the class.
type SyncRosterRequest struct {
	StudentIDs []string `json:"studentIds" validate:"required"`
}

// EnrollStudentRequest captures POST /classes/:id/enrollments payload.
type EnrollStudentRequest struct {
	StudentID string  `json:"studentId" validate:"required,uuid"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}
