package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sige-edu/sige-api/internal/dto"
	"github.com/sige-edu/sige-api/internal/models"
	appErrors "github.com/sige-edu/sige-api/pkg/errors"
)

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
	CreateBatch(ctx context.Context, records []models.AttendanceRecord) error
	SummaryByClass(ctx context.Context, classID string, from, to time.Time) ([]models.AttendanceSummary, error)
}

type attendanceEnrollmentRepository interface {
	ActiveStudentIDs(ctx context.Context, classID string) ([]string, error)
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
}

// AttendanceService handles attendance recording and summaries.
type AttendanceService struct {
	repo        attendanceRepository
	enrollments attendanceEnrollmentRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, enrollments attendanceEnrollmentRepository, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, enrollments: enrollments, validator: validate, logger: logger}
}

// List returns attendance records and pagination metadata.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	page := models.ClampPage(filter.Page)
	size := models.ClampPageSize(filter.PageSize, 15)
	return records, models.NewPagination(page, size, total), nil
}

// Record stores one class-date batch of marks. Entries that do not
// belong to the class are rejected as a whole.
func (s *AttendanceService) Record(ctx context.Context, recordedBy string, req dto.RecordAttendanceRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid attendance date")
	}
	if date.After(time.Now().UTC()) {
		return 0, appErrors.Clone(appErrors.ErrValidation, "attendance date cannot be in the future")
	}

	for _, entry := range req.Entries {
		enrollment, err := s.enrollments.FindByID(ctx, entry.EnrollmentID)
		if err != nil {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		if enrollment.ClassID != req.ClassID {
			return 0, appErrors.Clone(appErrors.ErrValidation, "enrollment does not belong to the class")
		}
	}

	records := make([]models.AttendanceRecord, 0, len(req.Entries))
	for _, entry := range req.Entries {
		records = append(records, models.AttendanceRecord{
			EnrollmentID: entry.EnrollmentID,
			SubjectID:    req.SubjectID,
			Date:         date,
			Present:      entry.Present,
			Justified:    entry.Justified,
			Note:         entry.Note,
			RecordedBy:   recordedBy,
		})
	}
	if err := s.repo.CreateBatch(ctx, records); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	return len(records), nil
}

// ClassSummary aggregates per-student attendance for a class window.
// When from/to are zero, the last 30 days apply.
func (s *AttendanceService) ClassSummary(ctx context.Context, classID string, from, to time.Time) ([]models.AttendanceSummary, error) {
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	summaries, err := s.repo.SummaryByClass(ctx, classID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarise attendance")
	}
	return summaries, nil
}
