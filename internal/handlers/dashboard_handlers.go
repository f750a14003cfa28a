package handlers

import (
	"net/http"

	"billcraft/internal/common"
	"billcraft/internal/services"

	"github.com/labstack/echo/v4"
)

// DashboardHandlers serves aggregated tenant stats
type DashboardHandlers struct {
	dashboardService services.DashboardService
}

func NewDashboardHandlers(dashboardService services.DashboardService) *DashboardHandlers {
	return &DashboardHandlers{dashboardService: dashboardService}
}

// GetStats handles GET /dashboard/stats
func (h *DashboardHandlers) GetStats(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	stats, err := h.dashboardService.GetStats(ctx, userID)
	if err != nil {
		return common.SendServerError(c, "Failed to load dashboard stats")
	}

	return c.JSON(http.StatusOK, stats)
}
