package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sige-edu/sige-api/internal/dto"
	"github.com/sige-edu/sige-api/internal/models"
)

// DashboardRepository runs the aggregate queries behind the dashboard.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs a DashboardRepository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// StatusCount is one status bucket of a breakdown query.
type StatusCount struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}

// EntityCounts returns total and active counters for the headline row.
func (r *DashboardRepository) EntityCounts(ctx context.Context) (*dto.DashboardSummary, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM schools) AS total_schools,
        (SELECT COUNT(*) FROM schools WHERE status = 'ACTIVE') AS active_schools,
        (SELECT COUNT(*) FROM students) AS total_students,
        (SELECT COUNT(*) FROM students WHERE status = 'ENROLLED') AS active_students,
        (SELECT COUNT(*) FROM teachers) AS total_teachers,
        (SELECT COUNT(*) FROM teachers WHERE status = 'ACTIVE') AS active_teachers,
        (SELECT COUNT(*) FROM classes) AS total_classes,
        (SELECT COUNT(*) FROM classes WHERE status = 'ACTIVE') AS active_classes,
        (SELECT COUNT(*) FROM users) AS total_users,
        (SELECT COUNT(*) FROM users WHERE status = 'ACTIVE') AS active_users,
        (SELECT COUNT(*) FROM student_payments WHERE status = 'PENDING') AS pending_payments`
	var row struct {
		TotalSchools    int `db:"total_schools"`
		ActiveSchools   int `db:"active_schools"`
		TotalStudents   int `db:"total_students"`
		ActiveStudents  int `db:"active_students"`
		TotalTeachers   int `db:"total_teachers"`
		ActiveTeachers  int `db:"active_teachers"`
		TotalClasses    int `db:"total_classes"`
		ActiveClasses   int `db:"active_classes"`
		TotalUsers      int `db:"total_users"`
		ActiveUsers     int `db:"active_users"`
		PendingPayments int `db:"pending_payments"`
	}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}
	return &dto.DashboardSummary{
		TotalSchools:    row.TotalSchools,
		ActiveSchools:   row.ActiveSchools,
		TotalStudents:   row.TotalStudents,
		ActiveStudents:  row.ActiveStudents,
		TotalTeachers:   row.TotalTeachers,
		ActiveTeachers:  row.ActiveTeachers,
		TotalClasses:    row.TotalClasses,
		ActiveClasses:   row.ActiveClasses,
		TotalUsers:      row.TotalUsers,
		ActiveUsers:     row.ActiveUsers,
		PendingPayments: row.PendingPayments,
	}, nil
}

// AttendanceRate computes the presence percentage over a date window.
// Returns 0 when the window holds no records.
func (r *DashboardRepository) AttendanceRate(ctx context.Context, from, to time.Time) (float64, error) {
	const query = `SELECT CASE WHEN COUNT(*) = 0 THEN 0
        ELSE ROUND(COUNT(*) FILTER (WHERE present)::numeric * 100 / COUNT(*), 2)
        END AS rate
        FROM attendance_records WHERE date BETWEEN $1 AND $2`
	var rate float64
	if err := r.db.GetContext(ctx, &rate, query, from, to); err != nil {
		return 0, fmt.Errorf("attendance rate: %w", err)
	}
	return rate, nil
}

// QuarterGradeAverage computes the mean score of all assessments applied
// within the given quarter window. Returns 0 when no grades exist.
func (r *DashboardRepository) QuarterGradeAverage(ctx context.Context, from, to time.Time) (float64, error) {
	const query = `SELECT COALESCE(ROUND(AVG(g.score)::numeric, 2), 0)
        FROM grades g
        JOIN assessments a ON a.id = g.assessment_id
        WHERE a.applied_at BETWEEN $1 AND $2`
	var avg float64
	if err := r.db.GetContext(ctx, &avg, query, from, to); err != nil {
		return 0, fmt.Errorf("quarter grade average: %w", err)
	}
	return avg, nil
}

// CountsByStatus groups a table by its status column.
func (r *DashboardRepository) CountsByStatus(ctx context.Context, table string) (map[string]int, error) {
	allowed := map[string]string{
		"students":         "status",
		"teachers":         "status",
		"classes":          "status",
		"student_payments": "status",
	}
	column, ok := allowed[table]
	if !ok {
		return nil, fmt.Errorf("unsupported breakdown table %q", table)
	}
	query := fmt.Sprintf("SELECT %s AS status, COUNT(*) AS count FROM %s GROUP BY %s", column, table, column)
	var rows []StatusCount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("counts by status for %s: %w", table, err)
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

// ClassCountsByShift groups classes by shift.
func (r *DashboardRepository) ClassCountsByShift(ctx context.Context) (map[string]int, error) {
	const query = `SELECT shift AS status, COUNT(*) AS count FROM classes GROUP BY shift`
	var rows []StatusCount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("class counts by shift: %w", err)
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

// EnrollmentsByMonth returns monthly enrollment counts for the last
// twelve months.
func (r *DashboardRepository) EnrollmentsByMonth(ctx context.Context, since time.Time) ([]dto.MonthCount, error) {
	const query = `SELECT
        EXTRACT(YEAR FROM enrolled_at)::int AS year,
        EXTRACT(MONTH FROM enrolled_at)::int AS month,
        COUNT(*) AS count
        FROM enrollments WHERE enrolled_at >= $1
        GROUP BY 1, 2 ORDER BY 1, 2`
	var points []dto.MonthCount
	if err := r.db.SelectContext(ctx, &points, query, since); err != nil {
		return nil, fmt.Errorf("enrollments by month: %w", err)
	}
	return points, nil
}

// AttendanceByMonth returns monthly presence percentages.
func (r *DashboardRepository) AttendanceByMonth(ctx context.Context, since time.Time) ([]dto.MonthRate, error) {
	const query = `SELECT
        EXTRACT(YEAR FROM date)::int AS year,
        EXTRACT(MONTH FROM date)::int AS month,
        CASE WHEN COUNT(*) = 0 THEN 0
             ELSE ROUND(COUNT(*) FILTER (WHERE present)::numeric * 100 / COUNT(*), 2)
        END AS rate
        FROM attendance_records WHERE date >= $1
        GROUP BY 1, 2 ORDER BY 1, 2`
	var points []dto.MonthRate
	if err := r.db.SelectContext(ctx, &points, query, since); err != nil {
		return nil, fmt.Errorf("attendance by month: %w", err)
	}
	return points, nil
}

// LowAttendanceStudent is an alert source row for students under the
// attendance threshold.
type LowAttendanceStudent struct {
	StudentID   string  `db:"student_id"`
	StudentName string  `db:"student_name"`
	Rate        float64 `db:"rate"`
}

// LowAttendanceStudents finds enrolled students whose presence in the
// window sits below the threshold percentage.
func (r *DashboardRepository) LowAttendanceStudents(ctx context.Context, from, to time.Time, threshold float64, limit int) ([]LowAttendanceStudent, error) {
	const query = `SELECT s.id AS student_id, u.full_name AS student_name,
        ROUND(COUNT(a.id) FILTER (WHERE a.present)::numeric * 100 / COUNT(a.id), 2) AS rate
        FROM students s
        JOIN users u ON u.id = s.user_id
        JOIN enrollments e ON e.student_id = s.id AND e.status = 'ACTIVE'
        JOIN attendance_records a ON a.enrollment_id = e.id AND a.date BETWEEN $1 AND $2
        WHERE s.status = 'ENROLLED'
        GROUP BY s.id, u.full_name
        HAVING COUNT(a.id) > 0
           AND COUNT(a.id) FILTER (WHERE a.present)::numeric * 100 / COUNT(a.id) < $3
        ORDER BY rate ASC LIMIT $4`
	var rows []LowAttendanceStudent
	if err := r.db.SelectContext(ctx, &rows, query, from, to, threshold, limit); err != nil {
		return nil, fmt.Errorf("low attendance students: %w", err)
	}
	return rows, nil
}

// CountOverduePayments counts payments currently marked overdue.
func (r *DashboardRepository) CountOverduePayments(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM student_payments WHERE status = 'OVERDUE'`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count overdue payments: %w", err)
	}
	return count, nil
}

// CountExpiredAnnouncements counts announcements that have expired.
func (r *DashboardRepository) CountExpiredAnnouncements(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM announcements WHERE status = 'EXPIRED'`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count expired announcements: %w", err)
	}
	return count, nil
}

// RecentEnrollments returns the latest enrollments within the window.
func (r *DashboardRepository) RecentEnrollments(ctx context.Context, since time.Time, limit int) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.class_id, e.student_id, e.enrollment_number, e.academic_year, e.status, e.enrolled_at, e.left_at, e.notes, e.created_at, e.updated_at,
        u.full_name AS student_name, c.name AS class_name
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN users u ON u.id = s.user_id
        JOIN classes c ON c.id = e.class_id
        WHERE e.created_at >= $1
        ORDER BY e.created_at DESC LIMIT $2`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, since, limit); err != nil {
		return nil, fmt.Errorf("recent enrollments: %w", err)
	}
	return enrollments, nil
}

// RecentPayments returns the latest settled payments within the window.
func (r *DashboardRepository) RecentPayments(ctx context.Context, since time.Time, limit int) ([]models.PaymentDetail, error) {
	const query = `SELECT p.id, p.student_id, p.plan_id, p.description, p.amount, p.due_date, p.paid_at, p.paid_amount, p.status, p.created_at, p.updated_at,
        u.full_name AS student_name
        FROM student_payments p
        JOIN students s ON s.id = p.student_id
        JOIN users u ON u.id = s.user_id
        WHERE p.paid_at IS NOT NULL AND p.paid_at >= $1
        ORDER BY p.paid_at DESC LIMIT $2`
	var payments []models.PaymentDetail
	if err := r.db.SelectContext(ctx, &payments, query, since, limit); err != nil {
		return nil, fmt.Errorf("recent payments: %w", err)
	}
	return payments, nil
}

// RecentGrades returns the latest grade postings within the window.
func (r *DashboardRepository) RecentGrades(ctx context.Context, since time.Time, limit int) ([]models.GradeDetail, error) {
	const query = `SELECT g.id, g.assessment_id, g.enrollment_id, g.score, g.comment, g.graded_by, g.created_at, g.updated_at,
        a.name AS assessment_name, sub.name AS subject_name, u.full_name AS student_name
        FROM grades g
        JOIN assessments a ON a.id = g.assessment_id
        JOIN subjects sub ON sub.id = a.subject_id
        JOIN enrollments e ON e.id = g.enrollment_id
        JOIN students s ON s.id = e.student_id
        JOIN users u ON u.id = s.user_id
        WHERE g.updated_at >= $1
        ORDER BY g.updated_at DESC LIMIT $2`
	var grades []models.GradeDetail
	if err := r.db.SelectContext(ctx, &grades, query, since, limit); err != nil {
		return nil, fmt.Errorf("recent grades: %w", err)
	}
	return grades, nil
}

// RecentAnnouncements returns the latest published announcements within
// the window.
func (r *DashboardRepository) RecentAnnouncements(ctx context.Context, since time.Time, limit int) ([]models.Announcement, error) {
	const query = `SELECT id, school_id, class_id, title, body, author_id, status, published_at, expires_at, created_at, updated_at
        FROM announcements
        WHERE published_at IS NOT NULL AND published_at >= $1
        ORDER BY published_at DESC LIMIT $2`
	var announcements []models.Announcement
	if err := r.db.SelectContext(ctx, &announcements, query, since, limit); err != nil {
		return nil, fmt.Errorf("recent announcements: %w", err)
	}
	return announcements, nil
}
