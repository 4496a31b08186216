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

// CommunicationHandler exposes announcements and direct messages.
type CommunicationHandler struct {
	announcements *service.AnnouncementService
	messages      *service.MessageService
}

// NewCommunicationHandler constructs CommunicationHandler.
func NewCommunicationHandler(announcements *service.AnnouncementService, messages *service.MessageService) *CommunicationHandler {
	return &CommunicationHandler{announcements: announcements, messages: messages}
}

// ListAnnouncements godoc
// @Summary List announcements
// @Tags Communication
// @Produce json
// @Param schoolId query string false "Filter by school"
// @Param classId query string false "Filter by class"
// @Param status query string false "Filter by status"
// @Param search query string false "Search by title"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} models.PagedResponse
// @Router /announcements [get]
func (h *CommunicationHandler) ListAnnouncements(c *gin.Context) {
	filter := models.AnnouncementFilter{
		SchoolID: c.Query("schoolId"),
		ClassID:  c.Query("classId"),
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 0),
	}
	if status := c.Query("status"); status != "" {
		s := models.AnnouncementStatus(status)
		filter.Status = &s
	}

	announcements, pagination, err := h.announcements.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Raw(c, http.StatusOK, models.PagedResponse{Items: announcements, Pagination: pagination})
}

// GetAnnouncement godoc
// @Summary Get an announcement
// @Tags Communication
// @Produce json
// @Param id path string true "Announcement ID"
// @Success 200 {object} response.Envelope
// @Router /announcements/{id} [get]
func (h *CommunicationHandler) GetAnnouncement(c *gin.Context) {
	announcement, err := h.announcements.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, announcement, "")
}

// CreateAnnouncement godoc
// @Summary Create a draft announcement
// @Tags Communication
// @Accept json
// @Produce json
// @Param payload body dto.CreateAnnouncementRequest true "Announcement payload"
// @Success 201 {object} response.Envelope
// @Router /announcements [post]
func (h *CommunicationHandler) CreateAnnouncement(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid announcement payload"))
		return
	}
	announcement, err := h.announcements.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, announcement, "announcement created")
}

// UpdateAnnouncement godoc
// @Summary Update an announcement
// @Tags Communication
// @Accept json
// @Produce json
// @Param id path string true "Announcement ID"
// @Param payload body dto.UpdateAnnouncementRequest true "Announcement payload"
// @Success 200 {object} response.Envelope
// @Router /announcements/{id} [put]
func (h *CommunicationHandler) UpdateAnnouncement(c *gin.Context) {
	var req dto.UpdateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid announcement payload"))
		return
	}
	announcement, err := h.announcements.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, announcement, "announcement updated")
}

// PublishAnnouncement godoc
// @Summary Publish a draft announcement
// @Tags Communication
// @Produce json
// @Param id path string true "Announcement ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /announcements/{id}/publish [post]
func (h *CommunicationHandler) PublishAnnouncement(c *gin.Context) {
	announcement, err := h.announcements.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, announcement, "announcement published")
}

// DeleteAnnouncement godoc
// @Summary Delete an announcement
// @Tags Communication
// @Produce json
// @Param id path string true "Announcement ID"
// @Success 204
// @Router /announcements/{id} [delete]
func (h *CommunicationHandler) DeleteAnnouncement(c *gin.Context) {
	if err := h.announcements.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListMessages godoc
// @Summary List own messages
// @Tags Communication
// @Produce json
// @Param box query string false "inbox or sent" default(inbox)
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} models.PagedResponse
// @Router /messages [get]
func (h *CommunicationHandler) ListMessages(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := models.MessageFilter{
		UserID:   claims.UserID,
		Box:      c.DefaultQuery("box", "inbox"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 0),
	}
	if status := c.Query("status"); status != "" {
		s := models.MessageStatus(status)
		filter.Status = &s
	}

	messages, pagination, err := h.messages.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Raw(c, http.StatusOK, models.PagedResponse{Items: messages, Pagination: pagination})
}

// SendMessage godoc
// @Summary Send a direct message
// @Tags Communication
// @Accept json
// @Produce json
// @Param payload body dto.SendMessageRequest true "Message payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /messages [post]
func (h *CommunicationHandler) SendMessage(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid message payload"))
		return
	}
	message, err := h.messages.Send(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, message, "message sent")
}

// ReadMessage godoc
// @Summary Read a message
// @Description Marks the message as read on first access by the recipient
// @Tags Communication
// @Produce json
// @Param id path string true "Message ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /messages/{id} [get]
func (h *CommunicationHandler) ReadMessage(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	message, err := h.messages.Read(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, message, "")
}

// UnreadCount godoc
// @Summary Count unread messages
// @Tags Communication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /messages/unread [get]
func (h *CommunicationHandler) UnreadCount(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	count, err := h.messages.UnreadCount(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"unread": count}, "")
}
