package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sige-edu/sige-api/internal/dto"
	"github.com/sige-edu/sige-api/internal/models"
	"github.com/sige-edu/sige-api/internal/service"
	appErrors "github.com/sige-edu/sige-api/pkg/errors"
	"github.com/sige-edu/sige-api/pkg/response"
)

// FinanceHandler exposes payment plan and payment endpoints.
type FinanceHandler struct {
	finance *service.FinanceService
}

// NewFinanceHandler constructs FinanceHandler.
func NewFinanceHandler(finance *service.FinanceService) *FinanceHandler {
	return &FinanceHandler{finance: finance}
}

// CreatePlan godoc
// @Summary Create a payment plan
// @Tags Finance
// @Accept json
// @Produce json
// @Param payload body dto.CreatePaymentPlanRequest true "Plan payload"
// @Success 201 {object} response.Envelope
// @Router /finance/plans [post]
func (h *FinanceHandler) CreatePlan(c *gin.Context) {
	var req dto.CreatePaymentPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid plan payload"))
		return
	}
	plan, err := h.finance.CreatePlan(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, plan, "payment plan created")
}

// ListPlans godoc
// @Summary List payment plans
// @Tags Finance
// @Produce json
// @Param schoolId query string false "Filter by school"
// @Success 200 {object} response.Envelope
// @Router /finance/plans [get]
func (h *FinanceHandler) ListPlans(c *gin.Context) {
	plans, err := h.finance.ListPlans(c.Request.Context(), c.Query("schoolId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, plans, "")
}

// CreatePayment godoc
// @Summary Create a one-off payment
// @Tags Finance
// @Accept json
// @Produce json
// @Param payload body dto.CreatePaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Router /finance/payments [post]
func (h *FinanceHandler) CreatePayment(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
		return
	}
	payment, err := h.finance.CreatePayment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment, "payment created")
}

type enrollInPlanRequest struct {
	StudentID string `json:"studentId" binding:"required"`
	PlanID    string `json:"planId" binding:"required"`
}

// EnrollInPlan godoc
// @Summary Generate a student's installments for a plan
// @Tags Finance
// @Accept json
// @Produce json
// @Param payload body enrollInPlanRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /finance/plans/enroll [post]
func (h *FinanceHandler) EnrollInPlan(c *gin.Context) {
	var req enrollInPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid plan enrollment payload"))
		return
	}
	payments, err := h.finance.EnrollStudentInPlan(c.Request.Context(), req.StudentID, req.PlanID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payments, "installments generated")
}

// ListPayments godoc
// @Summary List payments
// @Tags Finance
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param status query string false "Filter by status"
// @Param dueFrom query string false "Due date lower bound (YYYY-MM-DD)"
// @Param dueTo query string false "Due date upper bound (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} models.PagedResponse
// @Router /finance/payments [get]
func (h *FinanceHandler) ListPayments(c *gin.Context) {
	filter := models.PaymentFilter{
		StudentID: c.Query("studentId"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "pageSize", 0),
	}
	if status := c.Query("status"); status != "" {
		s := models.PaymentStatus(status)
		filter.Status = &s
	}
	if raw := c.Query("dueFrom"); raw != "" {
		if ts, err := time.Parse("2006-01-02", raw); err == nil {
			filter.DueFrom = &ts
		}
	}
	if raw := c.Query("dueTo"); raw != "" {
		if ts, err := time.Parse("2006-01-02", raw); err == nil {
			filter.DueTo = &ts
		}
	}

	payments, pagination, err := h.finance.ListPayments(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Raw(c, http.StatusOK, models.PagedResponse{Items: payments, Pagination: pagination})
}

// Settle godoc
// @Summary Settle a payment
// @Tags Finance
// @Accept json
// @Produce json
// @Param id path string true "Payment ID"
// @Param payload body dto.SettlePaymentRequest true "Settlement payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /finance/payments/{id}/settle [post]
func (h *FinanceHandler) Settle(c *gin.Context) {
	var req dto.SettlePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid settlement payload"))
		return
	}
	payment, err := h.finance.Settle(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, payment, "payment settled")
}

// Cancel godoc
// @Summary Cancel a pending payment
// @Tags Finance
// @Produce json
// @Param id path string true "Payment ID"
// @Success 204
// @Failure 412 {object} response.Envelope
// @Router /finance/payments/{id} [delete]
func (h *FinanceHandler) Cancel(c *gin.Context) {
	if err := h.finance.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Summary godoc
// @Summary Finance totals
// @Tags Finance
// @Produce json
// @Param schoolId query string false "Filter by school"
// @Success 200 {object} response.Envelope
// @Router /finance/summary [get]
func (h *FinanceHandler) Summary(c *gin.Context) {
	summary, err := h.finance.Summary(c.Request.Context(), c.Query("schoolId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary, "")
}
