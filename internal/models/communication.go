package models

import "time"

// AnnouncementStatus tracks the publication state of an announcement.
type AnnouncementStatus string

const (
	AnnouncementStatusDraft     AnnouncementStatus = "DRAFT"
	AnnouncementStatusPublished AnnouncementStatus = "PUBLISHED"
	AnnouncementStatusExpired   AnnouncementStatus = "EXPIRED"
)

// MessageStatus tracks whether a direct message was seen or answered.
type MessageStatus string

const (
	MessageStatusSent    MessageStatus = "SENT"
	MessageStatusRead    MessageStatus = "READ"
	MessageStatusReplied MessageStatus = "REPLIED"
)

// Announcement is a broadcast published to a school or a single class.
type Announcement struct {
	ID          string             `db:"id" json:"id"`
	SchoolID    string             `db:"school_id" json:"school_id"`
	ClassID     *string            `db:"class_id" json:"class_id,omitempty"`
	Title       string             `db:"title" json:"title"`
	Body        string             `db:"body" json:"body"`
	AuthorID    string             `db:"author_id" json:"author_id"`
	Status      AnnouncementStatus `db:"status" json:"status"`
	PublishedAt *time.Time         `db:"published_at" json:"published_at,omitempty"`
	ExpiresAt   *time.Time         `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `db:"updated_at" json:"updated_at"`
}

// AnnouncementFilter defines filter criteria for listing announcements.
type AnnouncementFilter struct {
	SchoolID string
	ClassID  string
	Status   *AnnouncementStatus
	Search   string
	Page     int
	PageSize int
}

// Message is a direct message between two users.
type Message struct {
	ID          string        `db:"id" json:"id"`
	SenderID    string        `db:"sender_id" json:"sender_id"`
	RecipientID string        `db:"recipient_id" json:"recipient_id"`
	ParentID    *string       `db:"parent_id" json:"parent_id,omitempty"`
	Subject     string        `db:"subject" json:"subject"`
	Body        string        `db:"body" json:"body"`
	Status      MessageStatus `db:"status" json:"status"`
	ReadAt      *time.Time    `db:"read_at" json:"read_at,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}

// MessageDetail joins a message with sender and recipient names.
type MessageDetail struct {
	Message
	SenderName    string `db:"sender_name" json:"sender_name"`
	RecipientName string `db:"recipient_name" json:"recipient_name"`
}

// MessageFilter defines filter criteria for listing messages.
type MessageFilter struct {
	UserID   string
	Box      string // "inbox" or "sent"
	Status   *MessageStatus
	Page     int
	PageSize int
}
