package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sige-edu/sige-api/internal/dto"
	"github.com/sige-edu/sige-api/internal/models"
	appErrors "github.com/sige-edu/sige-api/pkg/errors"
)

type financeRepository interface {
	CreatePlan(ctx context.Context, plan *models.PaymentPlan) error
	FindPlanByID(ctx context.Context, id string) (*models.PaymentPlan, error)
	ListPlans(ctx context.Context, schoolID string) ([]models.PaymentPlan, error)
	CreatePayment(ctx context.Context, payment *models.StudentPayment) error
	CreateInstallments(ctx context.Context, payments []models.StudentPayment) error
	FindPaymentByID(ctx context.Context, id string) (*models.StudentPayment, error)
	ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error)
	SettlePayment(ctx context.Context, id string, paidAmount float64, paidAt time.Time) error
	CancelPayment(ctx context.Context, id string) error
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
	Summary(ctx context.Context, schoolID string) (*models.FinanceSummary, error)
}

// FinanceService handles payment plans, charges and settlement.
type FinanceService struct {
	repo      financeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFinanceService constructs the finance service.
func NewFinanceService(repo financeRepository, validate *validator.Validate, logger *zap.Logger) *FinanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FinanceService{repo: repo, validator: validate, logger: logger}
}

// CreatePlan registers a recurring charge definition.
func (s *FinanceService) CreatePlan(ctx context.Context, req dto.CreatePaymentPlanRequest) (*models.PaymentPlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan payload")
	}
	plan := &models.PaymentPlan{
		SchoolID:     req.SchoolID,
		CourseID:     req.CourseID,
		Name:         req.Name,
		Amount:       req.Amount,
		Installments: req.Installments,
		DueDay:       req.DueDay,
		Active:       true,
	}
	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create plan")
	}
	return plan, nil
}

// ListPlans returns the payment plans of a school.
func (s *FinanceService) ListPlans(ctx context.Context, schoolID string) ([]models.PaymentPlan, error) {
	plans, err := s.repo.ListPlans(ctx, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list plans")
	}
	return plans, nil
}

// CreatePayment registers a one-off charge for a student.
func (s *FinanceService) CreatePayment(ctx context.Context, req dto.CreatePaymentRequest) (*models.StudentPayment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid due date")
	}
	payment := &models.StudentPayment{
		StudentID:   req.StudentID,
		PlanID:      req.PlanID,
		Description: req.Description,
		Amount:      req.Amount,
		DueDate:     dueDate,
		Status:      models.PaymentStatusPending,
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create payment")
	}
	return payment, nil
}

// EnrollStudentInPlan creates one pending installment per plan month,
// starting next month on the plan's due day.
func (s *FinanceService) EnrollStudentInPlan(ctx context.Context, studentID, planID string) ([]models.StudentPayment, error) {
	plan, err := s.repo.FindPlanByID(ctx, planID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment plan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}
	if !plan.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "payment plan is inactive")
	}

	now := time.Now().UTC()
	first := time.Date(now.Year(), now.Month(), plan.DueDay, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)

	payments := make([]models.StudentPayment, 0, plan.Installments)
	for i := 0; i < plan.Installments; i++ {
		payments = append(payments, models.StudentPayment{
			StudentID:   studentID,
			PlanID:      &plan.ID,
			Description: fmt.Sprintf("%s (%d/%d)", plan.Name, i+1, plan.Installments),
			Amount:      plan.Amount,
			DueDate:     first.AddDate(0, i, 0),
			Status:      models.PaymentStatusPending,
		})
	}
	if err := s.repo.CreateInstallments(ctx, payments); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create installments")
	}
	return payments, nil
}

// ListPayments returns payments and pagination metadata.
func (s *FinanceService) ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, *models.Pagination, error) {
	payments, total, err := s.repo.ListPayments(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	page := models.ClampPage(filter.Page)
	size := models.ClampPageSize(filter.PageSize, 15)
	return payments, models.NewPagination(page, size, total), nil
}

// Settle records a payment as paid. Cancelled payments cannot settle.
func (s *FinanceService) Settle(ctx context.Context, id string, req dto.SettlePaymentRequest) (*models.StudentPayment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settlement payload")
	}

	payment, err := s.repo.FindPaymentByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	if payment.Status == models.PaymentStatusPaid {
		return nil, appErrors.Clone(appErrors.ErrConflict, "payment already settled")
	}
	if payment.Status == models.PaymentStatusCancelled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "cancelled payments cannot be settled")
	}

	paidAt := time.Now().UTC()
	if req.PaidAt != nil {
		parsed, err := time.Parse("2006-01-02", *req.PaidAt)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid payment date")
		}
		paidAt = parsed
	}

	if err := s.repo.SettlePayment(ctx, id, req.PaidAmount, paidAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to settle payment")
	}
	payment.Status = models.PaymentStatusPaid
	payment.PaidAmount = &req.PaidAmount
	payment.PaidAt = &paidAt
	return payment, nil
}

// Cancel voids a pending payment.
func (s *FinanceService) Cancel(ctx context.Context, id string) error {
	payment, err := s.repo.FindPaymentByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	if payment.Status != models.PaymentStatusPending {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "only pending payments can be cancelled")
	}
	if err := s.repo.CancelPayment(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel payment")
	}
	return nil
}

// Summary aggregates billing totals, optionally scoped to one school.
func (s *FinanceService) Summary(ctx context.Context, schoolID string) (*models.FinanceSummary, error) {
	summary, err := s.repo.Summary(ctx, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load finance summary")
	}
	return summary, nil
}

// SweepOverdue flips pending payments past their due date to overdue.
// Runs from the background queue.
func (s *FinanceService) SweepOverdue(ctx context.Context) (int64, error) {
	affected, err := s.repo.MarkOverdue(ctx, time.Now().UTC())
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sweep overdue payments")
	}
	if affected > 0 {
		s.logger.Info("marked overdue payments", zap.Int64("count", affected))
	}
	return affected, nil
}
