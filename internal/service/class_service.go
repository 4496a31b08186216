package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sige-edu/sige-api/internal/dto"
	"github.com/sige-edu/sige-api/internal/models"
	appErrors "github.com/sige-edu/sige-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.ClassDetail, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id string) error
}

type rosterEnrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	ActiveStudentIDs(ctx context.Context, classID string) ([]string, error)
	CountActive(ctx context.Context, classID string) (int, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	ApplyRosterChanges(ctx context.Context, classID string, removeStudentIDs []string, additions []models.Enrollment) error
}

type rosterStudentRepository interface {
	FilterExistingIDs(ctx context.Context, ids []string) ([]string, error)
}

type rosterCache interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ClassService handles class and roster use-cases.
type ClassService struct {
	repo        classRepository
	enrollments rosterEnrollmentRepository
	students    rosterStudentRepository
	cache       rosterCache
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewClassService constructs the class service. The cache may be nil.
func NewClassService(repo classRepository, enrollments rosterEnrollmentRepository, students rosterStudentRepository, cache rosterCache, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, enrollments: enrollments, students: students, cache: cache, validator: validate, logger: logger}
}

// invalidateDashboard drops cached overview payloads after roster writes.
func (s *ClassService) invalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

// List returns classes and pagination metadata.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, *models.Pagination, error) {
	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	page := models.ClampPage(filter.Page)
	size := models.ClampPageSize(filter.PageSize, 10)
	return classes, models.NewPagination(page, size, total), nil
}

// Get returns detailed class information.
func (s *ClassService) Get(ctx context.Context, id string) (*models.ClassDetail, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// Create registers a new class. Codes are normalised to upper case and
// must be unique across all schools.
func (s *ClassService) Create(ctx context.Context, req dto.CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.repo.ExistsByCode(ctx, code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate class code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "class code already in use")
	}

	class := &models.Class{
		SchoolID:      req.SchoolID,
		CourseID:      req.CourseID,
		Name:          req.Name,
		Code:          code,
		Year:          req.Year,
		Shift:         req.Shift,
		Capacity:      req.Capacity,
		MainTeacherID: req.MainTeacherID,
		Room:          req.Room,
		Status:        models.ClassStatusActive,
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	return class, nil
}

// Update modifies an existing class.
func (s *ClassService) Update(ctx context.Context, id string, req dto.UpdateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	class := detail.Class
	if req.Name != nil {
		class.Name = *req.Name
	}
	if req.Shift != nil {
		class.Shift = *req.Shift
	}
	if req.Capacity != nil {
		class.Capacity = *req.Capacity
	}
	if req.MainTeacherID != nil {
		class.MainTeacherID = req.MainTeacherID
	}
	if req.Room != nil {
		class.Room = req.Room
	}
	if req.Status != nil {
		class.Status = *req.Status
	}
	if err := s.repo.Update(ctx, &class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	return &class, nil
}

// Delete removes the class and every enrollment attached to it.
func (s *ClassService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}
	return nil
}

// Roster returns the active enrollments of a class.
func (s *ClassService) Roster(ctx context.Context, classID string) ([]models.EnrollmentDetail, error) {
	if _, err := s.Get(ctx, classID); err != nil {
		return nil, err
	}
	status := models.EnrollmentStatusActive
	enrollments, _, err := s.enrollments.List(ctx, models.EnrollmentFilter{ClassID: classID, Status: &status, Page: 1, PageSize: 100})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	return enrollments, nil
}

// Enroll adds a single student to the class.
func (s *ClassService) Enroll(ctx context.Context, classID string, req dto.EnrollStudentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	class, err := s.Get(ctx, classID)
	if err != nil {
		return nil, err
	}

	valid, err := s.students.FilterExistingIDs(ctx, []string{req.StudentID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate student")
	}
	if len(valid) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	current, err := s.enrollments.ActiveStudentIDs(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	for _, id := range current {
		if id == req.StudentID {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student already enrolled in this class")
		}
	}
	if len(current) >= class.Capacity {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "class is at capacity")
	}

	number, err := enrollmentNumber(classID, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate enrollment number")
	}
	enrollment := &models.Enrollment{
		ClassID:          classID,
		StudentID:        req.StudentID,
		EnrollmentNumber: number,
		AcademicYear:     class.Year,
		Status:           models.EnrollmentStatusActive,
		Notes:            req.Notes,
	}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll student")
	}
	s.invalidateDashboard(ctx)
	return enrollment, nil
}

// SyncRoster reconciles the class roster against the desired set of
// student ids. Duplicates in the payload collapse, unknown ids are
// dropped, and the removal plus addition of enrollments commits as one
// transaction. Submitting the current roster is a no-op.
func (s *ClassService) SyncRoster(ctx context.Context, classID string, req dto.SyncRosterRequest) (*models.RosterSyncResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid roster payload")
	}
	class, err := s.Get(ctx, classID)
	if err != nil {
		return nil, err
	}

	desired := dedupe(req.StudentIDs)

	valid, err := s.students.FilterExistingIDs(ctx, desired)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate students")
	}
	if dropped := len(desired) - len(valid); dropped > 0 {
		s.logger.Info("roster sync dropped unknown student ids",
			zap.String("class_id", classID), zap.Int("dropped", dropped))
	}

	current, err := s.enrollments.ActiveStudentIDs(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	changes := diffRoster(current, valid)

	if len(valid) > class.Capacity {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "desired roster exceeds class capacity")
	}

	additions := make([]models.Enrollment, 0, len(changes.ToAdd))
	for _, studentID := range changes.ToAdd {
		number, err := enrollmentNumber(classID, studentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate enrollment number")
		}
		additions = append(additions, models.Enrollment{
			StudentID:        studentID,
			EnrollmentNumber: number,
			AcademicYear:     class.Year,
		})
	}

	if err := s.enrollments.ApplyRosterChanges(ctx, classID, changes.ToRemove, additions); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply roster changes")
	}
	if len(changes.ToAdd) > 0 || len(changes.ToRemove) > 0 {
		s.invalidateDashboard(ctx)
	}

	return &models.RosterSyncResult{
		ClassID:     classID,
		Added:       changes.ToAdd,
		Removed:     changes.ToRemove,
		Kept:        len(valid) - len(changes.ToAdd),
		TotalActive: len(valid),
	}, nil
}

// diffRoster computes which students to add and remove so that current
// becomes desired. Order follows the desired slice for additions and the
// current slice for removals, keeping the outcome deterministic.
func diffRoster(current, desired []string) models.RosterChanges {
	currentSet := make(map[string]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}
	desiredSet := make(map[string]struct{}, len(desired))
	for _, id := range desired {
		desiredSet[id] = struct{}{}
	}

	var changes models.RosterChanges
	for _, id := range desired {
		if _, ok := currentSet[id]; !ok {
			changes.ToAdd = append(changes.ToAdd, id)
		}
	}
	for _, id := range current {
		if _, ok := desiredSet[id]; !ok {
			changes.ToRemove = append(changes.ToRemove, id)
		}
	}
	return changes
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// enrollmentNumber builds a human-scannable number from fragments of the
// class and student ids plus a random suffix, e.g. T1A2B3C4-A5D6E7F8-0F3A9C.
func enrollmentNumber(classID, studentID string) (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("T%s-A%s-%s",
		strings.ToUpper(idFragment(classID)),
		strings.ToUpper(idFragment(studentID)),
		strings.ToUpper(hex.EncodeToString(buf))), nil
}

func idFragment(id string) string {
	clean := strings.ReplaceAll(id, "-", "")
	if len(clean) > 8 {
		return clean[:8]
	}
	return clean
}
