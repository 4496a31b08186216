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

type announcementRepository interface {
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error)
	FindByID(ctx context.Context, id string) (*models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
	Update(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id string) error
	ExpirePublished(ctx context.Context, asOf time.Time) (int64, error)
}

// AnnouncementService handles broadcast publication.
type AnnouncementService struct {
	repo      announcementRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnnouncementService constructs the announcement service.
func NewAnnouncementService(repo announcementRepository, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{repo: repo, validator: validate, logger: logger}
}

// List returns announcements and pagination metadata.
func (s *AnnouncementService) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, *models.Pagination, error) {
	announcements, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	page := models.ClampPage(filter.Page)
	size := models.ClampPageSize(filter.PageSize, 15)
	return announcements, models.NewPagination(page, size, total), nil
}

// Get returns a single announcement.
func (s *AnnouncementService) Get(ctx context.Context, id string) (*models.Announcement, error) {
	announcement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcement")
	}
	return announcement, nil
}

// Create registers a draft announcement.
func (s *AnnouncementService) Create(ctx context.Context, authorID string, req dto.CreateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil {
		parsed, err := time.Parse("2006-01-02", *req.ExpiresAt)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid expiry date")
		}
		expiresAt = &parsed
	}

	announcement := &models.Announcement{
		SchoolID:  req.SchoolID,
		ClassID:   req.ClassID,
		Title:     req.Title,
		Body:      req.Body,
		AuthorID:  authorID,
		Status:    models.AnnouncementStatusDraft,
		ExpiresAt: expiresAt,
	}
	if err := s.repo.Create(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create announcement")
	}
	return announcement, nil
}

// Update modifies a draft or published announcement.
func (s *AnnouncementService) Update(ctx context.Context, id string, req dto.UpdateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}
	announcement, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if announcement.Status == models.AnnouncementStatusExpired {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "expired announcements cannot change")
	}

	if req.Title != nil {
		announcement.Title = *req.Title
	}
	if req.Body != nil {
		announcement.Body = *req.Body
	}
	if req.ExpiresAt != nil {
		parsed, err := time.Parse("2006-01-02", *req.ExpiresAt)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid expiry date")
		}
		announcement.ExpiresAt = &parsed
	}
	if err := s.repo.Update(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update announcement")
	}
	return announcement, nil
}

// Publish moves a draft to published.
func (s *AnnouncementService) Publish(ctx context.Context, id string) (*models.Announcement, error) {
	announcement, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if announcement.Status != models.AnnouncementStatusDraft {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "only drafts can be published")
	}

	now := time.Now().UTC()
	announcement.Status = models.AnnouncementStatusPublished
	announcement.PublishedAt = &now
	if err := s.repo.Update(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish announcement")
	}
	return announcement, nil
}

// Delete removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete announcement")
	}
	return nil
}

// SweepExpired flips published announcements past their expiry date.
// Runs from the background queue.
func (s *AnnouncementService) SweepExpired(ctx context.Context) (int64, error) {
	affected, err := s.repo.ExpirePublished(ctx, time.Now().UTC())
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to expire announcements")
	}
	if affected > 0 {
		s.logger.Info("expired announcements", zap.Int64("count", affected))
	}
	return affected, nil
}
