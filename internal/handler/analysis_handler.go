package handler

import (
	"net/http"

	"github.com/dafibh/arthaku/internal/service"
	"github.com/labstack/echo/v4"
)

// AnalysisHandler handles AI review requests
type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler
func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
	}
}

// Analyze handles POST /api/v1/months/:period/analysis
func (h *AnalysisHandler) Analyze(c echo.Context) error {
	if !h.analysisService.Enabled() {
		return NewServiceUnavailableError(c, "Analysis is not configured")
	}

	result, err := h.analysisService.Analyze(c.Request().Context(), c.Param("period"))
	if err != nil {
		return handleServiceError(c, err, "Failed to analyze month")
	}
	return c.JSON(http.StatusOK, result)
}
