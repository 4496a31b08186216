package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sige-edu/sige-api/internal/dto"
	"github.com/sige-edu/sige-api/internal/models"
	"github.com/sige-edu/sige-api/internal/service"
	appErrors "github.com/sige-edu/sige-api/pkg/errors"
	"github.com/sige-edu/sige-api/pkg/response"
)

// GradeHandler exposes assessment and grading endpoints.
type GradeHandler struct {
	grades *service.GradeService
}

// NewGradeHandler constructs GradeHandler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// CreateAssessment godoc
// @Summary Create an assessment
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body dto.CreateAssessmentRequest true "Assessment payload"
// @Success 201 {object} response.Envelope
// @Router /assessments [post]
func (h *GradeHandler) CreateAssessment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assessment payload"))
		return
	}
	assessment, err := h.grades.CreateAssessment(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assessment, "assessment created")
}

// ListAssessments godoc
// @Summary List assessments of a class
// @Tags Grades
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/assessments [get]
func (h *GradeHandler) ListAssessments(c *gin.Context) {
	assessments, err := h.grades.ListAssessments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, assessments, "")
}

// RecordGrades godoc
// @Summary Record grades for an assessment
// @Description Re-submitting a grade for the same enrollment overwrites the score
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param payload body dto.RecordGradesRequest true "Grade entries"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assessments/{id}/grades [post]
func (h *GradeHandler) RecordGrades(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.RecordGradesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grades payload"))
		return
	}
	count, err := h.grades.RecordGrades(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"recorded": count}, "grades recorded")
}

// List godoc
// @Summary List grades
// @Tags Grades
// @Produce json
// @Param classId query string false "Filter by class"
// @Param subjectId query string false "Filter by subject"
// @Param enrollmentId query string false "Filter by enrollment"
// @Param assessmentId query string false "Filter by assessment"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} models.PagedResponse
// @Router /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	filter := models.GradeFilter{
		ClassID:      c.Query("classId"),
		SubjectID:    c.Query("subjectId"),
		EnrollmentID: c.Query("enrollmentId"),
		AssessmentID: c.Query("assessmentId"),
		Page:         queryInt(c, "page", 1),
		PageSize:     queryInt(c, "pageSize", 0),
	}

	grades, pagination, err := h.grades.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Raw(c, http.StatusOK, models.PagedResponse{Items: grades, Pagination: pagination})
}
