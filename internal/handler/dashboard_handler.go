package handler

import (
	"github.com/gin-gonic/gin"

	"ims/internal/service"
)

// DashboardHandler handles the chart aggregates endpoint.
type DashboardHandler struct {
	dashboardService service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Get handles GET /api/v1/dashboard
func (h *DashboardHandler) Get(c *gin.Context) {
	data, err := h.dashboardService.GetDashboard(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, data)
}
