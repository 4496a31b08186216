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

// EnrollmentRepository manages persistence for class enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentColumns = `id, class_id, student_id, enrollment_number, academic_year, status, enrolled_at, left_at, notes, created_at, updated_at`

// List returns enrollments matching the provided filters.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	base := `FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN users u ON u.id = s.user_id
        JOIN classes c ON c.id = e.class_id`
	var args []interface{}
	conditions := []string{"1=1"}

	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("e.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("e.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := models.ClampPage(filter.Page)
	pageSize := models.ClampPageSize(filter.PageSize, 15)
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf(`SELECT e.id, e.class_id, e.student_id, e.enrollment_number, e.academic_year, e.status, e.enrolled_at, e.left_at, e.notes, e.created_at, e.updated_at,
        u.full_name AS student_name, c.name AS class_name
        %s ORDER BY u.full_name ASC LIMIT %d OFFSET %d`, base, pageSize, offset)

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// FindByID fetches an enrollment by id.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	query := fmt.Sprintf("SELECT %s FROM enrollments WHERE id = $1 LIMIT 1", enrollmentColumns)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &enrollment, nil
}

// ActiveStudentIDs returns the student ids currently enrolled in a class.
func (r *EnrollmentRepository) ActiveStudentIDs(ctx context.Context, classID string) ([]string, error) {
	const query = `SELECT student_id FROM enrollments WHERE class_id = $1 AND status = $2`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, classID, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("active student ids: %w", err)
	}
	return ids, nil
}

// CountActive returns the number of active enrollments in a class.
func (r *EnrollmentRepository) CountActive(ctx context.Context, classID string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE class_id = $1 AND status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, classID, models.EnrollmentStatusActive); err != nil {
		return 0, fmt.Errorf("count active enrollments: %w", err)
	}
	return count, nil
}

// Create inserts a single enrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = now
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = now
	}
	enrollment.UpdatedAt = now
	const query = `INSERT INTO enrollments (id, class_id, student_id, enrollment_number, academic_year, status, enrolled_at, left_at, notes, created_at, updated_at)
        VALUES (:id, :class_id, :student_id, :enrollment_number, :academic_year, :status, :enrolled_at, :left_at, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// SetStatus updates the status of one enrollment.
func (r *EnrollmentRepository) SetStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	now := time.Now().UTC()
	const query = `UPDATE enrollments SET status = $2, left_at = CASE WHEN $2 IN ('TRANSFERRED', 'COMPLETED') THEN $3 ELSE left_at END, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, now); err != nil {
		return fmt.Errorf("set enrollment status: %w", err)
	}
	return nil
}

// ApplyRosterChanges atomically removes and adds class enrollments.
// Removals are status flips, not row deletions, so grade and attendance
// history stays intact.
func (r *EnrollmentRepository) ApplyRosterChanges(ctx context.Context, classID string, removeStudentIDs []string, additions []models.Enrollment) (err error) {
	if len(removeStudentIDs) == 0 && len(additions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin roster transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()

	if len(removeStudentIDs) > 0 {
		query, args, inErr := sqlx.In(
			`UPDATE enrollments SET status = ?, left_at = ?, updated_at = ? WHERE class_id = ? AND status = ? AND student_id IN (?)`,
			models.EnrollmentStatusTransferred, now, now, classID, models.EnrollmentStatusActive, removeStudentIDs,
		)
		if inErr != nil {
			err = fmt.Errorf("build roster removal: %w", inErr)
			return err
		}
		query = tx.Rebind(query)
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("remove roster enrollments: %w", err)
		}
	}

	const insertQuery = `INSERT INTO enrollments (id, class_id, student_id, enrollment_number, academic_year, status, enrolled_at, left_at, notes, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NULL, $8, $9, $10)`
	for i := range additions {
		e := &additions[i]
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if _, err = tx.ExecContext(ctx, insertQuery, e.ID, classID, e.StudentID, e.EnrollmentNumber, e.AcademicYear, models.EnrollmentStatusActive, now, e.Notes, now, now); err != nil {
			return fmt.Errorf("add roster enrollment %s: %w", e.StudentID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit roster transaction: %w", err)
	}
	return nil
}
