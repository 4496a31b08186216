package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sige-edu/sige-api/internal/dto"
	"github.com/sige-edu/sige-api/internal/models"
	"github.com/sige-edu/sige-api/internal/service"
	appErrors "github.com/sige-edu/sige-api/pkg/errors"
	"github.com/sige-edu/sige-api/pkg/response"
)

// ClassHandler exposes class and roster endpoints.
type ClassHandler struct {
	classes  *service.ClassService
	schools  *service.SchoolService
	teachers *service.TeacherService
}

// NewClassHandler constructs ClassHandler.
func NewClassHandler(classes *service.ClassService, schools *service.SchoolService, teachers *service.TeacherService) *ClassHandler {
	return &ClassHandler{classes: classes, schools: schools, teachers: teachers}
}

// Catalog godoc
// @Summary Class form catalog
// @Description Active courses and teachers for class creation forms
// @Tags Classes
// @Produce json
// @Param schoolId query string false "School filter"
// @Success 200 {object} response.Envelope
// @Router /classes/catalog [get]
func (h *ClassHandler) Catalog(c *gin.Context) {
	schoolID := c.Query("schoolId")
	active := true

	courses, _, err := h.schools.ListCourses(c.Request.Context(), models.CourseFilter{
		SchoolID: schoolID,
		Active:   &active,
		Page:     1,
		PageSize: 100,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	status := models.TeacherStatusActive
	teacherList, _, err := h.teachers.List(c.Request.Context(), models.TeacherFilter{
		SchoolID: schoolID,
		Status:   &status,
		Page:     1,
		PageSize: 100,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"courses": courses, "teachers": teacherList}, "")
}

// List godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Param search query string false "Search by name or code"
// @Param schoolId query string false "Filter by school"
// @Param courseId query string false "Filter by course"
// @Param year query int false "Filter by academic year"
// @Param shift query string false "Filter by shift"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} models.PagedResponse
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	filter := models.ClassFilter{
		SchoolID: c.Query("schoolId"),
		CourseID: c.Query("courseId"),
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 0),
	}
	if year := queryInt(c, "year", 0); year > 0 {
		filter.Year = &year
	}
	if shift := c.Query("shift"); shift != "" {
		v := models.Shift(shift)
		filter.Shift = &v
	}
	if status := c.Query("status"); status != "" {
		v := models.ClassStatus(status)
		filter.Status = &v
	}

	classes, pagination, err := h.classes.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Raw(c, http.StatusOK, models.PagedResponse{Items: classes, Pagination: pagination})
}

// Get godoc
// @Summary Get class detail
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	class, err := h.classes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, class, "")
}

// Create godoc
// @Summary Create a class
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body dto.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req dto.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return
	}
	class, err := h.classes.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class, "class created")
}

// Update godoc
// @Summary Update a class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body dto.UpdateClassRequest true "Class payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [put]
func (h *ClassHandler) Update(c *gin.Context) {
	var req dto.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return
	}
	class, err := h.classes.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, class, "class updated")
}

// Delete godoc
// @Summary Delete a class
// @Description Removes the class and its enrollment records
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 204
// @Router /classes/{id} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	if err := h.classes.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Roster godoc
// @Summary Active roster of a class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/roster [get]
func (h *ClassHandler) Roster(c *gin.Context) {
	roster, err := h.classes.Roster(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, roster, "")
}

// Enroll godoc
// @Summary Enroll a single student
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body dto.EnrollStudentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /classes/{id}/enrollments [post]
func (h *ClassHandler) Enroll(c *gin.Context) {
	var req dto.EnrollStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrollment payload"))
		return
	}
	enrollment, err := h.classes.Enroll(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment, "student enrolled")
}

// SyncRoster godoc
// @Summary Reconcile the class roster against a desired student set
// @Description Adds missing enrollments, transfers out absent ones and keeps the rest
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body dto.SyncRosterRequest true "Desired roster"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /classes/{id}/roster/sync [post]
func (h *ClassHandler) SyncRoster(c *gin.Context) {
	var req dto.SyncRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid roster payload"))
		return
	}
	result, err := h.classes.SyncRoster(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result, "roster synchronized")
}
