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

type gradeRepository interface {
	CreateAssessment(ctx context.Context, assessment *models.Assessment) error
	FindAssessmentByID(ctx context.Context, id string) (*models.Assessment, error)
	ListAssessments(ctx context.Context, classID string) ([]models.Assessment, error)
	UpsertGrades(ctx context.Context, grades []models.Grade) error
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, int, error)
}

// GradeService handles assessments and grading.
type GradeService struct {
	repo      gradeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs the grade service.
func NewGradeService(repo gradeRepository, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{repo: repo, validator: validate, logger: logger}
}

// CreateAssessment registers a graded activity for a class subject.
func (s *GradeService) CreateAssessment(ctx context.Context, createdBy string, req dto.CreateAssessmentRequest) (*models.Assessment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment payload")
	}
	appliedAt, err := time.Parse("2006-01-02", req.AppliedAt)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid assessment date")
	}

	assessment := &models.Assessment{
		ClassID:   req.ClassID,
		SubjectID: req.SubjectID,
		Name:      req.Name,
		Weight:    req.Weight,
		MaxScore:  req.MaxScore,
		AppliedAt: appliedAt,
		CreatedBy: createdBy,
	}
	if err := s.repo.CreateAssessment(ctx, assessment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assessment")
	}
	return assessment, nil
}

// ListAssessments returns the assessments of a class.
func (s *GradeService) ListAssessments(ctx context.Context, classID string) ([]models.Assessment, error) {
	assessments, err := s.repo.ListAssessments(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assessments")
	}
	return assessments, nil
}

// RecordGrades stores scores for an assessment. Scores above the
// assessment maximum are rejected. Regrading replaces prior scores.
func (s *GradeService) RecordGrades(ctx context.Context, assessmentID, gradedBy string, req dto.RecordGradesRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grades payload")
	}

	assessment, err := s.repo.FindAssessmentByID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment")
	}

	grades := make([]models.Grade, 0, len(req.Grades))
	for _, entry := range req.Grades {
		if entry.Score > assessment.MaxScore {
			return 0, appErrors.Clone(appErrors.ErrValidation, "score exceeds the assessment maximum")
		}
		grades = append(grades, models.Grade{
			AssessmentID: assessmentID,
			EnrollmentID: entry.EnrollmentID,
			Score:        entry.Score,
			Comment:      entry.Comment,
			GradedBy:     gradedBy,
		})
	}
	if err := s.repo.UpsertGrades(ctx, grades); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record grades")
	}
	return len(grades), nil
}

// List returns grades and pagination metadata.
func (s *GradeService) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, *models.Pagination, error) {
	grades, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	page := models.ClampPage(filter.Page)
	size := models.ClampPageSize(filter.PageSize, 15)
	return grades, models.NewPagination(page, size, total), nil
}
