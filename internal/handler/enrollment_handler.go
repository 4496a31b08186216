package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sige-edu/sige-api/internal/models"
	"github.com/sige-edu/sige-api/internal/service"
	appErrors "github.com/sige-edu/sige-api/pkg/errors"
	"github.com/sige-edu/sige-api/pkg/response"
)

// EnrollmentHandler exposes enrollment lookup and status transitions.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// List godoc
// @Summary List enrollments
// @Tags Enrollments
// @Produce json
// @Param classId query string false "Filter by class"
// @Param studentId query string false "Filter by student"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} models.PagedResponse
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	filter := models.EnrollmentFilter{
		ClassID:   c.Query("classId"),
		StudentID: c.Query("studentId"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "pageSize", 0),
	}
	if status := c.Query("status"); status != "" {
		s := models.EnrollmentStatus(status)
		filter.Status = &s
	}

	enrollments, pagination, err := h.enrollments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Raw(c, http.StatusOK, models.PagedResponse{Items: enrollments, Pagination: pagination})
}

// Get godoc
// @Summary Get an enrollment
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	enrollment, err := h.enrollments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, enrollment, "")
}

type setEnrollmentStatusRequest struct {
	Status models.EnrollmentStatus `json:"status" binding:"required"`
}

// SetStatus godoc
// @Summary Transition an enrollment status
// @Description Only transitions allowed by the enrollment lifecycle are accepted
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body setEnrollmentStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /enrollments/{id}/status [put]
func (h *EnrollmentHandler) SetStatus(c *gin.Context) {
	var req setEnrollmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	enrollment, err := h.enrollments.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, enrollment, "enrollment updated")
}
