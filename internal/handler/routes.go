package handler

import (
	"github.com/dafibh/arthaku/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes. authMiddleware may be nil when auth
// is disabled.
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, analysisLimiter *middleware.RateLimiter, monthHandler *MonthHandler, salaryHandler *SalaryHandler, dashboardHandler *DashboardHandler, backupHandler *BackupHandler, analysisHandler *AnalysisHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")
	api.Use(middleware.Optional(authMiddleware))

	// Month routes
	months := api.Group("/months")
	months.GET("/current", monthHandler.GetCurrent)
	months.GET("/:period", monthHandler.GetByPeriod)
	months.PUT("/:period/income", monthHandler.SetIncome)
	months.POST("/:period/categories", monthHandler.AddCategory)
	months.DELETE("/:period/categories/:name", monthHandler.RemoveCategory)
	months.POST("/:period/items", monthHandler.AddItem)
	months.PATCH("/:period/items/:id", monthHandler.UpdateItem)
	months.DELETE("/:period/items/:id", monthHandler.RemoveItem)
	months.GET("/:period/alerts", monthHandler.GetAlerts)
	months.POST("/:period/alerts/:category/dismiss", monthHandler.DismissAlert)

	// Analysis is rate limited per caller
	months.POST("/:period/analysis", analysisHandler.Analyze, middleware.RateLimitMiddleware(analysisLimiter))

	// Payroll calculator
	api.PUT("/salary", salaryHandler.Submit)

	// Yearly dashboard
	api.GET("/years/:year", dashboardHandler.GetYear)

	// Backup routes
	api.POST("/backups", backupHandler.Backup)
	api.POST("/backups/:handle/restore", backupHandler.Restore)
	api.GET("/export", backupHandler.Export)
	api.POST("/import", backupHandler.Import)
	api.POST("/reload", backupHandler.Reload)

	// WebSocket authenticates with a query token
	e.GET("/ws", wsHandler.HandleWS)
}
