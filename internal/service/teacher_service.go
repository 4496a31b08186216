package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sige-edu/sige-api/internal/dto"
	"github.com/sige-edu/sige-api/internal/models"
	appErrors "github.com/sige-edu/sige-api/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.TeacherDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.TeacherDetail, error)
	ExistsByEmployeeCode(ctx context.Context, code, excludeID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	SetStatus(ctx context.Context, id string, status models.TeacherStatus) error
	CountActiveClasses(ctx context.Context, id string) (int, error)
}

// TeacherService handles teaching staff use-cases.
type TeacherService struct {
	repo      teacherRepository
	users     studentUserRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs the teacher service.
func NewTeacherService(repo teacherRepository, users studentUserRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, users: users, validator: validate, logger: logger}
}

// List returns teachers and pagination metadata.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.TeacherDetail, *models.Pagination, error) {
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	page := models.ClampPage(filter.Page)
	size := models.ClampPageSize(filter.PageSize, 15)
	return teachers, models.NewPagination(page, size, total), nil
}

// Get returns detailed teacher information.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.TeacherDetail, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// Create registers a new teacher together with its user account.
func (s *TeacherService) Create(ctx context.Context, req dto.CreateTeacherRequest) (*models.TeacherDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}

	hiredAt, err := time.Parse("2006-01-02", req.HiredAt)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid hire date")
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		FullName:     req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.RoleTeacher,
		Status:       models.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user account")
	}

	code, err := s.generateEmployeeCode(ctx)
	if err != nil {
		return nil, err
	}

	teacher := &models.Teacher{
		UserID:         user.ID,
		SchoolID:       req.SchoolID,
		EmployeeCode:   code,
		Specialization: req.Specialization,
		Degree:         req.Degree,
		HiredAt:        hiredAt,
		Status:         models.TeacherStatusActive,
	}
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}

	return &models.TeacherDetail{Teacher: *teacher, Name: user.FullName, Email: user.Email, UserStatus: user.Status}, nil
}

// Update modifies an existing teacher and, when needed, its user row.
func (s *TeacherService) Update(ctx context.Context, id string, req dto.UpdateTeacherRequest) (*models.TeacherDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	teacher := detail.Teacher
	if req.Specialization != nil {
		teacher.Specialization = req.Specialization
	}
	if req.Degree != nil {
		teacher.Degree = req.Degree
	}
	if req.Status != nil {
		teacher.Status = *req.Status
	}
	if err := s.repo.Update(ctx, &teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}

	if req.Name != nil || req.Phone != nil {
		user, err := s.users.FindByID(ctx, teacher.UserID)
		if err == nil {
			if req.Name != nil {
				user.FullName = *req.Name
			}
			if req.Phone != nil {
				user.Phone = req.Phone
			}
			if err := s.users.Update(ctx, user); err != nil {
				s.logger.Warn("failed to update linked user", zap.String("teacher_id", id), zap.Error(err))
			}
			detail.Name = user.FullName
			detail.Phone = user.Phone
		}
	}

	detail.Teacher = teacher
	return detail, nil
}

// Dismiss flips a teacher to DISMISSED and deactivates its account. A
// teacher still leading active classes cannot be dismissed.
func (s *TeacherService) Dismiss(ctx context.Context, id string) error {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	leading, err := s.repo.CountActiveClasses(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class assignments")
	}
	if leading > 0 {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "teacher still leads active classes")
	}

	if err := s.repo.SetStatus(ctx, id, models.TeacherStatusDismissed); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to dismiss teacher")
	}
	if err := s.users.SetStatus(ctx, detail.UserID, models.UserStatusInactive); err != nil {
		s.logger.Warn("failed to deactivate linked user", zap.String("teacher_id", id), zap.Error(err))
	}
	return nil
}

func (s *TeacherService) generateEmployeeCode(ctx context.Context) (string, error) {
	year := time.Now().UTC().Year()
	for attempt := 0; attempt < 5; attempt++ {
		buf := make([]byte, 3)
		if _, err := rand.Read(buf); err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate employee code")
		}
		code := fmt.Sprintf("PR%d-%s", year, strings.ToUpper(hex.EncodeToString(buf)))
		exists, err := s.repo.ExistsByEmployeeCode(ctx, code, "")
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate employee code")
		}
		if !exists {
			return code, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrInternal, "could not allocate employee code")
}
