package handler

import (
	"net/http"

	"github.com/dafibh/arthaku/internal/domain"
	"github.com/dafibh/arthaku/internal/service"
	"github.com/labstack/echo/v4"
)

// SalaryHandler handles payroll calculator requests
type SalaryHandler struct {
	budgetService *service.BudgetService
}

// NewSalaryHandler creates a new SalaryHandler
func NewSalaryHandler(budgetService *service.BudgetService) *SalaryHandler {
	return &SalaryHandler{
		budgetService: budgetService,
	}
}

// Submit handles PUT /api/v1/salary. The take-home pay is applied to the
// viewed month's income after a short quiet window.
func (h *SalaryHandler) Submit(c echo.Context) error {
	var req domain.SalaryInputs
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	return c.JSON(http.StatusAccepted, h.budgetService.SubmitSalary(req))
}
