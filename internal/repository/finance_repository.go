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

// FinanceRepository manages persistence for payment plans and payments.
type FinanceRepository struct {
	db *sqlx.DB
}

// NewFinanceRepository constructs a FinanceRepository.
func NewFinanceRepository(db *sqlx.DB) *FinanceRepository {
	return &FinanceRepository{db: db}
}

// CreatePlan inserts a new payment plan.
func (r *FinanceRepository) CreatePlan(ctx context.Context, plan *models.PaymentPlan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO payment_plans (id, school_id, course_id, name, amount, installments, due_day, active, created_at)
        VALUES (:id, :school_id, :course_id, :name, :amount, :installments, :due_day, :active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return fmt.Errorf("create payment plan: %w", err)
	}
	return nil
}

// FindPlanByID fetches a payment plan by id.
func (r *FinanceRepository) FindPlanByID(ctx context.Context, id string) (*models.PaymentPlan, error) {
	const query = `SELECT id, school_id, course_id, name, amount, installments, due_day, active, created_at FROM payment_plans WHERE id = $1 LIMIT 1`
	var plan models.PaymentPlan
	if err := r.db.GetContext(ctx, &plan, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find payment plan: %w", err)
	}
	return &plan, nil
}

// ListPlans returns the payment plans of a school.
func (r *FinanceRepository) ListPlans(ctx context.Context, schoolID string) ([]models.PaymentPlan, error) {
	const query = `SELECT id, school_id, course_id, name, amount, installments, due_day, active, created_at FROM payment_plans WHERE school_id = $1 ORDER BY name ASC`
	var plans []models.PaymentPlan
	if err := r.db.SelectContext(ctx, &plans, query, schoolID); err != nil {
		return nil, fmt.Errorf("list payment plans: %w", err)
	}
	return plans, nil
}

// CreatePayment inserts a single payment.
func (r *FinanceRepository) CreatePayment(ctx context.Context, payment *models.StudentPayment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	payment.UpdatedAt = now
	const query = `INSERT INTO student_payments (id, student_id, plan_id, description, amount, due_date, paid_at, paid_amount, status, created_at, updated_at)
        VALUES (:id, :student_id, :plan_id, :description, :amount, :due_date, :paid_at, :paid_amount, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// CreateInstallments inserts the full installment sequence of a plan for
// one student in a single transaction.
func (r *FinanceRepository) CreateInstallments(ctx context.Context, payments []models.StudentPayment) (err error) {
	if len(payments) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin installments: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO student_payments (id, student_id, plan_id, description, amount, due_date, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`
	now := time.Now().UTC()
	for i := range payments {
		p := &payments[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if _, err = tx.ExecContext(ctx, query, p.ID, p.StudentID, p.PlanID, p.Description, p.Amount, p.DueDate, p.Status, now); err != nil {
			return fmt.Errorf("insert installment: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit installments: %w", err)
	}
	return nil
}

// FindPaymentByID fetches a payment by id.
func (r *FinanceRepository) FindPaymentByID(ctx context.Context, id string) (*models.StudentPayment, error) {
	const query = `SELECT id, student_id, plan_id, description, amount, due_date, paid_at, paid_amount, status, created_at, updated_at FROM student_payments WHERE id = $1 LIMIT 1`
	var payment models.StudentPayment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}
	return &payment, nil
}

// ListPayments returns payments matching the provided filters.
func (r *FinanceRepository) ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error) {
	base := `FROM student_payments p
        JOIN students s ON s.id = p.student_id
        JOIN users u ON u.id = s.user_id`
	var args []interface{}
	conditions := []string{"1=1"}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("p.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.DueFrom != nil {
		conditions = append(conditions, fmt.Sprintf("p.due_date >= $%d", len(args)+1))
		args = append(args, *filter.DueFrom)
	}
	if filter.DueTo != nil {
		conditions = append(conditions, fmt.Sprintf("p.due_date <= $%d", len(args)+1))
		args = append(args, *filter.DueTo)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := models.ClampPage(filter.Page)
	pageSize := models.ClampPageSize(filter.PageSize, 15)
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf(`SELECT p.id, p.student_id, p.plan_id, p.description, p.amount, p.due_date, p.paid_at, p.paid_amount, p.status, p.created_at, p.updated_at,
        u.full_name AS student_name
        %s ORDER BY p.due_date ASC LIMIT %d OFFSET %d`, base, pageSize, offset)

	var payments []models.PaymentDetail
	if err := r.db.SelectContext(ctx, &payments, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}
	return payments, total, nil
}

// SettlePayment records a payment as paid.
func (r *FinanceRepository) SettlePayment(ctx context.Context, id string, paidAmount float64, paidAt time.Time) error {
	const query = `UPDATE student_payments SET status = $2, paid_amount = $3, paid_at = $4, updated_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.PaymentStatusPaid, paidAmount, paidAt, time.Now().UTC()); err != nil {
		return fmt.Errorf("settle payment: %w", err)
	}
	return nil
}

// CancelPayment flips a pending payment to cancelled.
func (r *FinanceRepository) CancelPayment(ctx context.Context, id string) error {
	const query = `UPDATE student_payments SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`
	if _, err := r.db.ExecContext(ctx, query, id, models.PaymentStatusCancelled, time.Now().UTC(), models.PaymentStatusPending); err != nil {
		return fmt.Errorf("cancel payment: %w", err)
	}
	return nil
}

// MarkOverdue flips pending payments past their due date to overdue and
// returns how many rows changed.
func (r *FinanceRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	const query = `UPDATE student_payments SET status = $1, updated_at = $2 WHERE status = $3 AND due_date < $2`
	res, err := r.db.ExecContext(ctx, query, models.PaymentStatusOverdue, asOf, models.PaymentStatusPending)
	if err != nil {
		return 0, fmt.Errorf("mark overdue payments: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("overdue rows affected: %w", err)
	}
	return affected, nil
}

// Summary aggregates billing totals, optionally scoped to one school.
func (r *FinanceRepository) Summary(ctx context.Context, schoolID string) (*models.FinanceSummary, error) {
	query := `SELECT
        COALESCE(SUM(p.amount), 0) AS total_billed,
        COALESCE(SUM(p.paid_amount) FILTER (WHERE p.status = 'PAID'), 0) AS total_received,
        COALESCE(SUM(p.amount) FILTER (WHERE p.status = 'PENDING'), 0) AS total_pending,
        COALESCE(SUM(p.amount) FILTER (WHERE p.status = 'OVERDUE'), 0) AS total_overdue,
        COUNT(*) FILTER (WHERE p.status = 'OVERDUE') AS overdue_count
        FROM student_payments p`
	var args []interface{}
	if schoolID != "" {
		query += ` JOIN students s ON s.id = p.student_id WHERE s.school_id = $1`
		args = append(args, schoolID)
	}
	var summary models.FinanceSummary
	if err := r.db.GetContext(ctx, &summary, query, args...); err != nil {
		return nil, fmt.Errorf("finance summary: %w", err)
	}
	return &summary, nil
}
