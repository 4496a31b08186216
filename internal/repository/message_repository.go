package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sige-edu/sige-api/internal/models"
)

// MessageRepository manages persistence for direct messages.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository constructs a MessageRepository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// List returns one user's inbox or sent box.
func (r *MessageRepository) List(ctx context.Context, filter models.MessageFilter) ([]models.MessageDetail, int, error) {
	base := `FROM messages m
        JOIN users sender ON sender.id = m.sender_id
        JOIN users recipient ON recipient.id = m.recipient_id`
	var args []interface{}
	conditions := []string{"1=1"}

	switch filter.Box {
	case "sent":
		conditions = append(conditions, fmt.Sprintf("m.sender_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	default:
		conditions = append(conditions, fmt.Sprintf("m.recipient_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("m.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := models.ClampPage(filter.Page)
	pageSize := models.ClampPageSize(filter.PageSize, 15)
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf(`SELECT m.id, m.sender_id, m.recipient_id, m.parent_id, m.subject, m.body, m.status, m.read_at, m.created_at,
        sender.full_name AS sender_name, recipient.full_name AS recipient_name
        %s ORDER BY m.created_at DESC LIMIT %d OFFSET %d`, base, pageSize, offset)

	var messages []models.MessageDetail
	if err := r.db.SelectContext(ctx, &messages, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}
	return messages, total, nil
}

// FindByID fetches a message by id.
func (r *MessageRepository) FindByID(ctx context.Context, id string) (*models.Message, error) {
	const query = `SELECT id, sender_id, recipient_id, parent_id, subject, body, status, read_at, created_at FROM messages WHERE id = $1 LIMIT 1`
	var message models.Message
	if err := r.db.GetContext(ctx, &message, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find message: %w", err)
	}
	return &message, nil
}

// Create inserts a new message.
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO messages (id, sender_id, recipient_id, parent_id, subject, body, status, read_at, created_at)
        VALUES (:id, :sender_id, :recipient_id, :parent_id, :subject, :body, :status, :read_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, message); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// MarkRead records the first read of a message.
func (r *MessageRepository) MarkRead(ctx context.Context, id string, readAt time.Time) error {
	const query = `UPDATE messages SET status = $2, read_at = $3 WHERE id = $1 AND read_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, id, models.MessageStatusRead, readAt); err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}
	return nil
}

// MarkReplied flips the parent message once an answer lands.
func (r *MessageRepository) MarkReplied(ctx context.Context, id string) error {
	const query = `UPDATE messages SET status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.MessageStatusReplied); err != nil {
		return fmt.Errorf("mark message replied: %w", err)
	}
	return nil
}

// CountUnread returns how many inbox messages are still unread.
func (r *MessageRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND read_at IS NULL`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}
