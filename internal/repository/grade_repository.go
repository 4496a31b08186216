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

// GradeRepository manages persistence for assessments and grades.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs a GradeRepository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// CreateAssessment inserts a new assessment.
func (r *GradeRepository) CreateAssessment(ctx context.Context, assessment *models.Assessment) error {
	if assessment.ID == "" {
		assessment.ID = uuid.NewString()
	}
	if assessment.CreatedAt.IsZero() {
		assessment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assessments (id, class_id, subject_id, name, weight, max_score, applied_at, created_by, created_at)
        VALUES (:id, :class_id, :subject_id, :name, :weight, :max_score, :applied_at, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assessment); err != nil {
		return fmt.Errorf("create assessment: %w", err)
	}
	return nil
}

// FindAssessmentByID fetches an assessment by id.
func (r *GradeRepository) FindAssessmentByID(ctx context.Context, id string) (*models.Assessment, error) {
	const query = `SELECT id, class_id, subject_id, name, weight, max_score, applied_at, created_by, created_at FROM assessments WHERE id = $1 LIMIT 1`
	var assessment models.Assessment
	if err := r.db.GetContext(ctx, &assessment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find assessment: %w", err)
	}
	return &assessment, nil
}

// ListAssessments returns the assessments of a class, newest first.
func (r *GradeRepository) ListAssessments(ctx context.Context, classID string) ([]models.Assessment, error) {
	const query = `SELECT id, class_id, subject_id, name, weight, max_score, applied_at, created_by, created_at FROM assessments WHERE class_id = $1 ORDER BY applied_at DESC`
	var assessments []models.Assessment
	if err := r.db.SelectContext(ctx, &assessments, query, classID); err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	return assessments, nil
}

// UpsertGrades records scores for an assessment in one transaction.
// Regrading a student replaces the earlier score.
func (r *GradeRepository) UpsertGrades(ctx context.Context, grades []models.Grade) (err error) {
	if len(grades) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin grade batch: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO grades (id, assessment_id, enrollment_id, score, comment, graded_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
        ON CONFLICT (assessment_id, enrollment_id) DO UPDATE
        SET score = EXCLUDED.score, comment = EXCLUDED.comment, graded_by = EXCLUDED.graded_by, updated_at = EXCLUDED.updated_at`

	now := time.Now().UTC()
	for i := range grades {
		g := &grades[i]
		if g.ID == "" {
			g.ID = uuid.NewString()
		}
		if _, err = tx.ExecContext(ctx, query, g.ID, g.AssessmentID, g.EnrollmentID, g.Score, g.Comment, g.GradedBy, now); err != nil {
			return fmt.Errorf("upsert grade: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit grade batch: %w", err)
	}
	return nil
}

// List returns grades matching the provided filters.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, int, error) {
	base := `FROM grades g
        JOIN assessments a ON a.id = g.assessment_id
        JOIN subjects sub ON sub.id = a.subject_id
        JOIN enrollments e ON e.id = g.enrollment_id
        JOIN students s ON s.id = e.student_id
        JOIN users u ON u.id = s.user_id`
	var args []interface{}
	conditions := []string{"1=1"}

	if filter.EnrollmentID != "" {
		conditions = append(conditions, fmt.Sprintf("g.enrollment_id = $%d", len(args)+1))
		args = append(args, filter.EnrollmentID)
	}
	if filter.AssessmentID != "" {
		conditions = append(conditions, fmt.Sprintf("g.assessment_id = $%d", len(args)+1))
		args = append(args, filter.AssessmentID)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("a.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("a.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := models.ClampPage(filter.Page)
	pageSize := models.ClampPageSize(filter.PageSize, 15)
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf(`SELECT g.id, g.assessment_id, g.enrollment_id, g.score, g.comment, g.graded_by, g.created_at, g.updated_at,
        a.name AS assessment_name, sub.name AS subject_name, u.full_name AS student_name
        %s ORDER BY u.full_name ASC LIMIT %d OFFSET %d`, base, pageSize, offset)

	var grades []models.GradeDetail
	if err := r.db.SelectContext(ctx, &grades, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list grades: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count grades: %w", err)
	}
	return grades, total, nil
}
