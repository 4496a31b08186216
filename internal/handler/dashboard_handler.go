package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sige-edu/sige-api/internal/service"
	"github.com/sige-edu/sige-api/pkg/response"
)

// DashboardHandler exposes the management overview endpoint.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Overview godoc
// @Summary Management dashboard overview
// @Description Aggregated counts, charts, alerts and recent activity
// @Tags Dashboard
// @Produce json
// @Success 200 {object} dto.DashboardResponse
// @Router /dashboard [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	overview, err := h.dashboard.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Raw(c, http.StatusOK, overview)
}
