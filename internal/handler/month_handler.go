package handler

import (
	"net/http"
	"net/url"

	"github.com/dafibh/arthaku/internal/domain"
	"github.com/dafibh/arthaku/internal/service"
	"github.com/labstack/echo/v4"
)

// MonthHandler handles month-related HTTP requests
type MonthHandler struct {
	budgetService *service.BudgetService
}

// NewMonthHandler creates a new MonthHandler
func NewMonthHandler(budgetService *service.BudgetService) *MonthHandler {
	return &MonthHandler{
		budgetService: budgetService,
	}
}

// SetIncomeRequest represents the request body for setting a month's income
type SetIncomeRequest struct {
	Income domain.Amount `json:"income"`
}

// AddCategoryRequest represents the request body for adding a category
type AddCategoryRequest struct {
	Name string `json:"name"`
}

// AddItemRequest represents the request body for adding an item
type AddItemRequest struct {
	Name     string        `json:"name"`
	Category string        `json:"category"`
	Budget   domain.Amount `json:"budget"`
	Actual   domain.Amount `json:"actual"`
}

// UpdateItemRequest represents the request body for editing an item.
// Omitted fields are left unchanged.
type UpdateItemRequest struct {
	Name   *string        `json:"name"`
	Budget *domain.Amount `json:"budget"`
	Actual *domain.Amount `json:"actual"`
}

// AlertsResponse lists the active alerts of a month
type AlertsResponse struct {
	Period string         `json:"period"`
	Alerts []domain.Alert `json:"alerts"`
}

// GetCurrent handles GET /api/v1/months/current
func (h *MonthHandler) GetCurrent(c echo.Context) error {
	view, err := h.budgetService.CurrentMonth(c.Request().Context())
	if err != nil {
		return handleServiceError(c, err, "Failed to get current month")
	}
	return c.JSON(http.StatusOK, view)
}

// GetByPeriod handles GET /api/v1/months/:period
func (h *MonthHandler) GetByPeriod(c echo.Context) error {
	view, err := h.budgetService.SelectPeriod(c.Request().Context(), c.Param("period"))
	if err != nil {
		return handleServiceError(c, err, "Failed to get month")
	}
	return c.JSON(http.StatusOK, view)
}

// SetIncome handles PUT /api/v1/months/:period/income
func (h *MonthHandler) SetIncome(c echo.Context) error {
	var req SetIncomeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	view, err := h.budgetService.SetIncome(c.Request().Context(), c.Param("period"), req.Income.Int64())
	if err != nil {
		return handleServiceError(c, err, "Failed to set income")
	}
	return c.JSON(http.StatusOK, view)
}

// AddCategory handles POST /api/v1/months/:period/categories
func (h *MonthHandler) AddCategory(c echo.Context) error {
	var req AddCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	view, err := h.budgetService.AddCategory(c.Request().Context(), c.Param("period"), req.Name)
	if err != nil {
		return handleServiceError(c, err, "Failed to add category")
	}
	return c.JSON(http.StatusOK, view)
}

// RemoveCategory handles DELETE /api/v1/months/:period/categories/:name
func (h *MonthHandler) RemoveCategory(c echo.Context) error {
	view, err := h.budgetService.RemoveCategory(c.Request().Context(), c.Param("period"), pathParam(c, "name"))
	if err != nil {
		return handleServiceError(c, err, "Failed to remove category")
	}
	return c.JSON(http.StatusOK, view)
}

// AddItem handles POST /api/v1/months/:period/items
func (h *MonthHandler) AddItem(c echo.Context) error {
	var req AddItemRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	view, err := h.budgetService.AddItem(c.Request().Context(), c.Param("period"), service.NewItemInput{
		Name:     req.Name,
		Category: req.Category,
		Budget:   req.Budget.Int64(),
		Actual:   req.Actual.Int64(),
	})
	if err != nil {
		return handleServiceError(c, err, "Failed to add item")
	}
	return c.JSON(http.StatusOK, view)
}

// UpdateItem handles PATCH /api/v1/months/:period/items/:id
func (h *MonthHandler) UpdateItem(c echo.Context) error {
	var req UpdateItemRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	patch := service.ItemPatch{Name: req.Name}
	if req.Budget != nil {
		v := req.Budget.Int64()
		patch.Budget = &v
	}
	if req.Actual != nil {
		v := req.Actual.Int64()
		patch.Actual = &v
	}

	view, err := h.budgetService.UpdateItem(c.Request().Context(), c.Param("period"), pathParam(c, "id"), patch)
	if err != nil {
		return handleServiceError(c, err, "Failed to update item")
	}
	return c.JSON(http.StatusOK, view)
}

// RemoveItem handles DELETE /api/v1/months/:period/items/:id
func (h *MonthHandler) RemoveItem(c echo.Context) error {
	view, err := h.budgetService.RemoveItem(c.Request().Context(), c.Param("period"), pathParam(c, "id"))
	if err != nil {
		return handleServiceError(c, err, "Failed to remove item")
	}
	return c.JSON(http.StatusOK, view)
}

// GetAlerts handles GET /api/v1/months/:period/alerts
func (h *MonthHandler) GetAlerts(c echo.Context) error {
	view, err := h.budgetService.SelectPeriod(c.Request().Context(), c.Param("period"))
	if err != nil {
		return handleServiceError(c, err, "Failed to get alerts")
	}
	return c.JSON(http.StatusOK, AlertsResponse{Period: view.Period, Alerts: view.Alerts})
}

// DismissAlert handles POST /api/v1/months/:period/alerts/:category/dismiss
func (h *MonthHandler) DismissAlert(c echo.Context) error {
	view, err := h.budgetService.DismissAlert(c.Request().Context(), c.Param("period"), pathParam(c, "category"))
	if err != nil {
		return handleServiceError(c, err, "Failed to dismiss alert")
	}
	return c.JSON(http.StatusOK, AlertsResponse{Period: view.Period, Alerts: view.Alerts})
}

// pathParam returns a path parameter with percent-escapes decoded
func pathParam(c echo.Context, name string) string {
	raw := c.Param(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
