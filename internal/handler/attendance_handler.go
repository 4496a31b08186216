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

// AttendanceHandler exposes attendance recording and reporting.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// List godoc
// @Summary List attendance records
// @Tags Attendance
// @Produce json
// @Param classId query string false "Filter by class"
// @Param enrollmentId query string false "Filter by enrollment"
// @Param subjectId query string false "Filter by subject"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} models.PagedResponse
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	filter := models.AttendanceFilter{
		ClassID:      c.Query("classId"),
		EnrollmentID: c.Query("enrollmentId"),
		SubjectID:    c.Query("subjectId"),
		Page:         queryInt(c, "page", 1),
		PageSize:     queryInt(c, "pageSize", 0),
	}
	if from := c.Query("from"); from != "" {
		if ts, err := time.Parse("2006-01-02", from); err == nil {
			filter.From = &ts
		}
	}
	if to := c.Query("to"); to != "" {
		if ts, err := time.Parse("2006-01-02", to); err == nil {
			filter.To = &ts
		}
	}

	records, pagination, err := h.attendance.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Raw(c, http.StatusOK, models.PagedResponse{Items: records, Pagination: pagination})
}

// Record godoc
// @Summary Record attendance for a class on a date
// @Description Re-submitting the same class and date overwrites the previous entries
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.RecordAttendanceRequest true "Attendance sheet"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}
	count, err := h.attendance.Record(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"recorded": count}, "attendance recorded")
}

// ClassSummary godoc
// @Summary Attendance summary per enrollment for a class
// @Tags Attendance
// @Produce json
// @Param id path string true "Class ID"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/attendance/summary [get]
func (h *AttendanceHandler) ClassSummary(c *gin.Context) {
	var from, to time.Time
	if raw := c.Query("from"); raw != "" {
		if ts, err := time.Parse("2006-01-02", raw); err == nil {
			from = ts
		}
	}
	if raw := c.Query("to"); raw != "" {
		if ts, err := time.Parse("2006-01-02", raw); err == nil {
			to = ts
		}
	}

	summary, err := h.attendance.ClassSummary(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary, "")
}
