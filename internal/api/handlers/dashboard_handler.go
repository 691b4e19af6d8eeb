package handlers

import (
	"net/http"

	"example.com/cartonbox/internal/services"

	"github.com/gin-gonic/gin"
)

// DashboardHandler handles dashboard requests
type DashboardHandler struct {
	dashboard *services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler instance
func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Aggregates handles the dashboard summary request
func (h *DashboardHandler) Aggregates(c *gin.Context) {
	aggregates, err := h.dashboard.Aggregates(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, aggregates)
}
