package dto

// CreateAnnouncementRequest captures POST /announcements payload.
type CreateAnnouncementRequest struct {
	SchoolID  string  `json:"schoolId" validate:"required,uuid"`
	ClassID   *string `json:"classId,omitempty" validate:"omitempty,uuid"`
	Title     string  `json:"title" validate:"required,min=2,max=200"`
	Body      string  `json:"body" validate:"required,min=1"`
	ExpiresAt *string `json:"expiresAt,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateAnnouncementRequest captures PUT /announcements/:id payload.
type UpdateAnnouncementRequest struct {
	Title     *string `json:"title,omitempty" validate:"omitempty,min=2,max=200"`
	Body      *string `json:"body,omitempty" validate:"omitempty,min=1"`
	ExpiresAt *string `json:"expiresAt,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// SendMessageRequest captures POST /messages payload.
type SendMessageRequest struct {
	RecipientID string  `json:"recipientId" validate:"required,uuid"`
	ParentID    *string `json:"parentId,omitempty" validate:"omitempty,uuid"`
	Subject     string  `json:"subject" validate:"required,min=1,max=200"`
	Body        string  `json:"body" validate:"required,min=1"`
}
