package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sige-edu/sige-api/internal/models"
)

// AttendanceRepository manages persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// List returns attendance records matching the provided filters.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	base := "FROM attendance_records a"
	var args []interface{}
	conditions := []string{"1=1"}

	if filter.ClassID != "" {
		args = append(args, filter.ClassID)
		conditions = append(conditions, fmt.Sprintf("a.enrollment_id IN (SELECT id FROM enrollments WHERE class_id = $%d)", len(args)))
	}
	if filter.EnrollmentID != "" {
		conditions = append(conditions, fmt.Sprintf("a.enrollment_id = $%d", len(args)+1))
		args = append(args, filter.EnrollmentID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("a.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	if filter.Present != nil {
		conditions = append(conditions, fmt.Sprintf("a.present = $%d", len(args)+1))
		args = append(args, *filter.Present)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := models.ClampPage(filter.Page)
	pageSize := models.ClampPageSize(filter.PageSize, 15)
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf(`SELECT a.id, a.enrollment_id, a.subject_id, a.date, a.present, a.justified, a.note, a.recorded_by, a.created_at
        %s ORDER BY a.date DESC LIMIT %d OFFSET %d`, base, pageSize, offset)

	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return records, total, nil
}

// CreateBatch upserts one class-date worth of records in a single
// transaction. Re-submitting the same date overwrites the earlier marks.
func (r *AttendanceRepository) CreateBatch(ctx context.Context, records []models.AttendanceRecord) (err error) {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance batch: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO attendance_records (id, enrollment_id, subject_id, date, present, justified, note, recorded_by, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (enrollment_id, date, COALESCE(subject_id, '')) DO UPDATE
        SET present = EXCLUDED.present, justified = EXCLUDED.justified, note = EXCLUDED.note, recorded_by = EXCLUDED.recorded_by`

	now := time.Now().UTC()
	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		if _, err = tx.ExecContext(ctx, query, rec.ID, rec.EnrollmentID, rec.SubjectID, rec.Date, rec.Present, rec.Justified, rec.Note, rec.RecordedBy, rec.CreatedAt); err != nil {
			return fmt.Errorf("insert attendance record: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance batch: %w", err)
	}
	return nil
}

// SummaryByClass aggregates per-enrollment attendance for a class within
// a window.
func (r *AttendanceRepository) SummaryByClass(ctx context.Context, classID string, from, to time.Time) ([]models.AttendanceSummary, error) {
	const query = `SELECT
        e.id AS enrollment_id,
        e.student_id,
        u.full_name AS student_name,
        COUNT(a.id) AS total_records,
        COUNT(a.id) FILTER (WHERE a.present) AS presences,
        CASE WHEN COUNT(a.id) = 0 THEN 0
             ELSE ROUND(COUNT(a.id) FILTER (WHERE a.present)::numeric * 100 / COUNT(a.id), 2)
        END AS rate
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN users u ON u.id = s.user_id
        LEFT JOIN attendance_records a ON a.enrollment_id = e.id AND a.date BETWEEN $2 AND $3
        WHERE e.class_id = $1 AND e.status = $4
        GROUP BY e.id, e.student_id, u.full_name
        ORDER BY u.full_name ASC`
	var summaries []models.AttendanceSummary
	if err := r.db.SelectContext(ctx, &summaries, query, classID, from, to, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("attendance summary: %w", err)
	}
	return summaries, nil
}
