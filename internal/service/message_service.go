package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sige-edu/sige-api/internal/dto"
	"github.com/sige-edu/sige-api/internal/models"
	appErrors "github.com/sige-edu/sige-api/pkg/errors"
)

type messageRepository interface {
	List(ctx context.Context, filter models.MessageFilter) ([]models.MessageDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Message, error)
	Create(ctx context.Context, message *models.Message) error
	MarkRead(ctx context.Context, id string, readAt time.Time) error
	MarkReplied(ctx context.Context, id string) error
	CountUnread(ctx context.Context, userID string) (int, error)
}

type messageUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// MessageService handles direct messaging between users.
type MessageService struct {
	repo      messageRepository
	users     messageUserRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMessageService constructs the message service.
func NewMessageService(repo messageRepository, users messageUserRepository, validate *validator.Validate, logger *zap.Logger) *MessageService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageService{repo: repo, users: users, validator: validate, logger: logger}
}

// List returns one box of a user's messages with pagination metadata.
func (s *MessageService) List(ctx context.Context, filter models.MessageFilter) ([]models.MessageDetail, *models.Pagination, error) {
	messages, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}
	page := models.ClampPage(filter.Page)
	size := models.ClampPageSize(filter.PageSize, 15)
	return messages, models.NewPagination(page, size, total), nil
}

// Send delivers a message. Replying flips the parent to REPLIED.
func (s *MessageService) Send(ctx context.Context, senderID string, req dto.SendMessageRequest) (*models.Message, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}
	if senderID == req.RecipientID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot message yourself")
	}

	recipient, err := s.users.FindByID(ctx, req.RecipientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "recipient not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recipient")
	}
	if !recipient.Active() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "recipient account is inactive")
	}

	if req.ParentID != nil {
		parent, err := s.repo.FindByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "parent message not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parent message")
		}
		if parent.RecipientID != senderID && parent.SenderID != senderID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot reply to a conversation you are not part of")
		}
	}

	message := &models.Message{
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		ParentID:    req.ParentID,
		Subject:     req.Subject,
		Body:        req.Body,
		Status:      models.MessageStatusSent,
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to send message")
	}

	if req.ParentID != nil {
		if err := s.repo.MarkReplied(ctx, *req.ParentID); err != nil {
			s.logger.Warn("failed to flag parent message", zap.String("message_id", *req.ParentID), zap.Error(err))
		}
	}
	return message, nil
}

// Read fetches a message and records the first read when the requester
// is the recipient.
func (s *MessageService) Read(ctx context.Context, userID, id string) (*models.Message, error) {
	message, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "message not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load message")
	}
	if message.SenderID != userID && message.RecipientID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "message belongs to another conversation")
	}

	if message.RecipientID == userID && message.ReadAt == nil {
		now := time.Now().UTC()
		if err := s.repo.MarkRead(ctx, id, now); err != nil {
			s.logger.Warn("failed to mark message read", zap.String("message_id", id), zap.Error(err))
		} else {
			message.ReadAt = &now
			if message.Status == models.MessageStatusSent {
				message.Status = models.MessageStatusRead
			}
		}
	}
	return message, nil
}

// UnreadCount reports how many inbox messages await the user.
func (s *MessageService) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread messages")
	}
	return count, nil
}
