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

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	ExistsByRegistration(ctx context.Context, code, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	SetStatus(ctx context.Context, id string, status models.StudentStatus) error
}

type studentUserRepository interface {
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetStatus(ctx context.Context, id string, status models.UserStatus) error
}

// StudentService handles student use-cases. Every student owns a user
// account created together with the record.
type StudentService struct {
	repo      studentRepository
	users     studentUserRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, users studentUserRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, users: users, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := models.ClampPage(filter.Page)
	size := models.ClampPageSize(filter.PageSize, 15)
	return students, models.NewPagination(page, size, total), nil
}

// Get returns detailed student information.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student together with its user account.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	birthDate, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid birth date")
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
		Role:         models.RoleStudent,
		Status:       models.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user account")
	}

	code, err := s.generateRegistrationCode(ctx)
	if err != nil {
		return nil, err
	}

	student := &models.Student{
		UserID:           user.ID,
		SchoolID:         req.SchoolID,
		RegistrationCode: code,
		BirthDate:        birthDate,
		Gender:           req.Gender,
		DocumentNumber:   req.DocumentNumber,
		Address:          req.Address,
		GuardianName:     req.GuardianName,
		GuardianPhone:    req.GuardianPhone,
		GuardianEmail:    req.GuardianEmail,
		Status:           models.StudentStatusEnrolled,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	detail := &models.StudentDetail{Student: *student, Name: user.FullName, Email: user.Email, UserStatus: user.Status}
	return detail, nil
}

// Update modifies an existing student and, when needed, its user row.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	student := detail.Student
	if req.Address != nil {
		student.Address = req.Address
	}
	if req.GuardianName != nil {
		student.GuardianName = req.GuardianName
	}
	if req.GuardianPhone != nil {
		student.GuardianPhone = req.GuardianPhone
	}
	if req.GuardianEmail != nil {
		student.GuardianEmail = req.GuardianEmail
	}
	if req.DocumentNumber != nil {
		student.DocumentNumber = req.DocumentNumber
	}
	if req.Status != nil {
		student.Status = *req.Status
	}
	if err := s.repo.Update(ctx, &student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}

	if req.Name != nil || req.Phone != nil {
		user, err := s.users.FindByID(ctx, student.UserID)
		if err == nil {
			if req.Name != nil {
				user.FullName = *req.Name
			}
			if req.Phone != nil {
				user.Phone = req.Phone
			}
			if err := s.users.Update(ctx, user); err != nil {
				s.logger.Warn("failed to update linked user", zap.String("student_id", id), zap.Error(err))
			}
			detail.Name = user.FullName
			detail.Phone = user.Phone
		}
	}

	detail.Student = student
	return detail, nil
}

// Delete is always a soft delete: the student moves to DROPPED and the
// linked account is deactivated. History rows stay untouched.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SetStatus(ctx, id, models.StudentStatusDropped); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove student")
	}
	if err := s.users.SetStatus(ctx, detail.UserID, models.UserStatusInactive); err != nil {
		s.logger.Warn("failed to deactivate linked user", zap.String("student_id", id), zap.Error(err))
	}
	return nil
}

// generateRegistrationCode builds a unique code like RA2026-ABC123. A
// handful of retries covers the rare collision.
func (s *StudentService) generateRegistrationCode(ctx context.Context) (string, error) {
	year := time.Now().UTC().Year()
	for attempt := 0; attempt < 5; attempt++ {
		buf := make([]byte, 3)
		if _, err := rand.Read(buf); err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate registration code")
		}
		code := fmt.Sprintf("RA%d-%s", year, strings.ToUpper(hex.EncodeToString(buf)))
		exists, err := s.repo.ExistsByRegistration(ctx, code, "")
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate registration code")
		}
		if !exists {
			return code, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrInternal, "could not allocate registration code")
}
