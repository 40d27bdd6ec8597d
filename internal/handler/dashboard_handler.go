package handler

import (
	"net/http"

	"github.com/dafibh/arthaku/internal/service"
	"github.com/labstack/echo/v4"
)

// DashboardHandler handles yearly dashboard requests
type DashboardHandler struct {
	budgetService *service.BudgetService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(budgetService *service.BudgetService) *DashboardHandler {
	return &DashboardHandler{
		budgetService: budgetService,
	}
}

// GetYear handles GET /api/v1/years/:year
// Months without data are reported with zeros and are never provisioned.
func (h *DashboardHandler) GetYear(c echo.Context) error {
	rollup, err := h.budgetService.YearlyRollup(c.Param("year"))
	if err != nil {
		return handleServiceError(c, err, "Failed to get yearly summary")
	}
	return c.JSON(http.StatusOK, rollup)
}
