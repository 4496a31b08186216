package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sige-edu/sige-api/internal/models"
	"github.com/sige-edu/sige-api/pkg/config"
)

type bootstrapUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// BootstrapService seeds the initial admin account on startup. The seed
// is idempotent: an existing account with the configured email is left
// untouched.
type BootstrapService struct {
	repo   bootstrapUserRepository
	logger *zap.Logger
	config config.BootstrapConfig
}

// NewBootstrapService constructs a BootstrapService.
func NewBootstrapService(repo bootstrapUserRepository, logger *zap.Logger, config config.BootstrapConfig) *BootstrapService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BootstrapService{repo: repo, logger: logger, config: config}
}

// Run performs the seed if enabled and configured.
func (s *BootstrapService) Run(ctx context.Context) error {
	if !s.config.Enabled {
		return nil
	}
	if s.config.AdminEmail == "" || s.config.AdminPassword == "" {
		return fmt.Errorf("bootstrap enabled but admin credentials missing")
	}

	existing, err := s.repo.FindByEmail(ctx, s.config.AdminEmail)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check bootstrap admin: %w", err)
	}
	if existing != nil {
		s.logger.Debug("bootstrap admin already present", zap.String("email", s.config.AdminEmail))
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.config.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}
	admin := &models.User{
		FullName:     "Administrator",
		Email:        s.config.AdminEmail,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Status:       models.UserStatusActive,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}
	s.logger.Info("bootstrap admin created", zap.String("email", admin.Email))
	return nil
}
