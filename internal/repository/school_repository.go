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

// SchoolRepository manages persistence for schools, courses and subjects.
type SchoolRepository struct {
	db *sqlx.DB
}

// NewSchoolRepository constructs a SchoolRepository.
func NewSchoolRepository(db *sqlx.DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

const schoolColumns = `id, name, document_number, address, city, state, postal_code, phone, email, director_id, status, created_at, updated_at`

// List returns schools matching the provided filters.
func (r *SchoolRepository) List(ctx context.Context, filter models.SchoolFilter) ([]models.School, int, error) {
	baseQuery := "FROM schools WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR document_number LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := models.ClampPage(filter.Page)
	pageSize := models.ClampPageSize(filter.PageSize, 15)
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY name ASC LIMIT %d OFFSET %d", schoolColumns, baseQuery, pageSize, offset)

	var schools []models.School
	if err := r.db.SelectContext(ctx, &schools, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list schools: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schools: %w", err)
	}
	return schools, total, nil
}

// FindByID fetches a school by id.
func (r *SchoolRepository) FindByID(ctx context.Context, id string) (*models.School, error) {
	query := fmt.Sprintf("SELECT %s FROM schools WHERE id = $1 LIMIT 1", schoolColumns)
	var school models.School
	if err := r.db.GetContext(ctx, &school, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find school: %w", err)
	}
	return &school, nil
}

// ExistsByDocument checks document uniqueness, optionally excluding an id.
func (r *SchoolRepository) ExistsByDocument(ctx context.Context, document, excludeID string) (bool, error) {
	query := "SELECT 1 FROM schools WHERE document_number = $1"
	args := []interface{}{document}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check school document: %w", err)
	}
	return true, nil
}

// Create inserts a new school.
func (r *SchoolRepository) Create(ctx context.Context, school *models.School) error {
	if school.ID == "" {
		school.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if school.CreatedAt.IsZero() {
		school.CreatedAt = now
	}
	school.UpdatedAt = now
	const query = `INSERT INTO schools (id, name, document_number, address, city, state, postal_code, phone, email, director_id, status, created_at, updated_at)
        VALUES (:id, :name, :document_number, :address, :city, :state, :postal_code, :phone, :email, :director_id, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, school); err != nil {
		return fmt.Errorf("create school: %w", err)
	}
	return nil
}

// Update modifies an existing school.
func (r *SchoolRepository) Update(ctx context.Context, school *models.School) error {
	school.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schools SET name = :name, address = :address, city = :city, state = :state, postal_code = :postal_code, phone = :phone, email = :email, director_id = :director_id, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, school); err != nil {
		return fmt.Errorf("update school: %w", err)
	}
	return nil
}

// Deactivate marks a school inactive.
func (r *SchoolRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE schools SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.SchoolStatusInactive, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate school: %w", err)
	}
	return nil
}

// Stats aggregates entity counts for a single school.
func (r *SchoolRepository) Stats(ctx context.Context, id string) (*models.SchoolStats, error) {
	const query = `SELECT
        $1 AS school_id,
        (SELECT COUNT(*) FROM students WHERE school_id = $1) AS total_students,
        (SELECT COUNT(*) FROM teachers WHERE school_id = $1) AS total_teachers,
        (SELECT COUNT(*) FROM courses WHERE school_id = $1) AS total_courses,
        (SELECT COUNT(*) FROM classes WHERE school_id = $1) AS total_classes`
	var stats models.SchoolStats
	if err := r.db.GetContext(ctx, &stats, query, id); err != nil {
		return nil, fmt.Errorf("school stats: %w", err)
	}
	return &stats, nil
}

const courseColumns = `id, school_id, name, code, description, duration_years, level, active, created_at`

// ListCourses returns courses matching the provided filters.
func (r *SchoolRepository) ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	baseQuery := "FROM courses WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.SchoolID != "" {
		conditions = append(conditions, fmt.Sprintf("school_id = $%d", len(args)+1))
		args = append(args, filter.SchoolID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(code) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := models.ClampPage(filter.Page)
	pageSize := models.ClampPageSize(filter.PageSize, 15)
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY name ASC LIMIT %d OFFSET %d", courseColumns, baseQuery, pageSize, offset)

	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// FindCourseByID fetches a course by id.
func (r *SchoolRepository) FindCourseByID(ctx context.Context, id string) (*models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE id = $1 LIMIT 1", courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

// ExistsCourseCode checks course code uniqueness inside a school.
func (r *SchoolRepository) ExistsCourseCode(ctx context.Context, schoolID, code, excludeID string) (bool, error) {
	query := "SELECT 1 FROM courses WHERE school_id = $1 AND LOWER(code) = LOWER($2)"
	args := []interface{}{schoolID, code}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check course code: %w", err)
	}
	return true, nil
}

// CreateCourse inserts a new course.
func (r *SchoolRepository) CreateCourse(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	if course.CreatedAt.IsZero() {
		course.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO courses (id, school_id, name, code, description, duration_years, level, active, created_at)
        VALUES (:id, :school_id, :name, :code, :description, :duration_years, :level, :active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// UpdateCourse modifies an existing course.
func (r *SchoolRepository) UpdateCourse(ctx context.Context, course *models.Course) error {
	const query = `UPDATE courses SET name = :name, description = :description, duration_years = :duration_years, active = :active WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// ListSubjects returns the subjects of a course.
func (r *SchoolRepository) ListSubjects(ctx context.Context, courseID string) ([]models.Subject, error) {
	const query = `SELECT id, course_id, name, code, total_hours, active, created_at FROM subjects WHERE course_id = $1 ORDER BY name ASC`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, courseID); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// FindSubjectByID fetches a subject by id.
func (r *SchoolRepository) FindSubjectByID(ctx context.Context, id string) (*models.Subject, error) {
	const query = `SELECT id, course_id, name, code, total_hours, active, created_at FROM subjects WHERE id = $1 LIMIT 1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find subject: %w", err)
	}
	return &subject, nil
}

// CreateSubject inserts a new subject.
func (r *SchoolRepository) CreateSubject(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO subjects (id, course_id, name, code, total_hours, active, created_at)
        VALUES (:id, :course_id, :name, :code, :total_hours, :active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}
