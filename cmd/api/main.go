package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/arthaku/internal/amqp"
	"github.com/dafibh/arthaku/internal/analysis"
	"github.com/dafibh/arthaku/internal/config"
	"github.com/dafibh/arthaku/internal/domain"
	"github.com/dafibh/arthaku/internal/handler"
	"github.com/dafibh/arthaku/internal/middleware"
	"github.com/dafibh/arthaku/internal/repository/file"
	"github.com/dafibh/arthaku/internal/repository/postgres"
	"github.com/dafibh/arthaku/internal/repository/sqlite"
	"github.com/dafibh/arthaku/internal/repository/storage"
	"github.com/dafibh/arthaku/internal/service"
	"github.com/dafibh/arthaku/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	tmpl, err := config.LoadTemplate(cfg.TemplateFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load budget template")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open the ledger store
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("Failed to open ledger store")
	}
	defer closeStore()
	log.Info().Str("backend", cfg.StoreBackend).Msg("Ledger store ready")

	// Event fan-out: websocket clients, plus the broker when configured
	hub := websocket.NewHub()
	publishers := websocket.MultiPublisher{hub}
	if cfg.AMQP.Enabled() {
		publisher, err := amqp.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Warn().Err(err).Msg("AMQP unavailable, events stay local")
		} else {
			defer publisher.Close()
			publishers = append(publishers, publisher)
			log.Info().Str("exchange", cfg.AMQP.Exchange).Msg("Publishing events to AMQP")
		}
	}

	// Budget engine
	budgetService := service.NewBudgetService(store, service.NewMonthService(tmpl), service.BudgetServiceConfig{
		IncomeDebounce: cfg.IncomeDebounce,
	}, log.Logger)
	budgetService.SetEventPublisher(publishers)
	if err := budgetService.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start budget engine")
	}
	defer budgetService.Close()

	// Remote backups
	var backupRepo domain.BackupRepository
	if cfg.S3.Enabled() {
		repo, err := storage.NewS3BackupRepository(ctx, cfg.S3)
		if err != nil {
			log.Warn().Err(err).Msg("Remote backups disabled")
		} else {
			backupRepo = repo
			log.Info().Str("bucket", cfg.S3.Bucket).Msg("Remote backups enabled")
		}
	}
	backupService := service.NewBackupService(budgetService, backupRepo)

	// AI analysis
	var analyzer domain.Analyzer
	if cfg.Gemini.Enabled() {
		analyzer = analysis.NewGeminiAnalyzer(cfg.Gemini, nil)
	}
	analysisService := service.NewAnalysisService(budgetService, analyzer)
	analysisLimiter := middleware.NewRateLimiterWithConfig(cfg.Gemini.RateLimit, middleware.DefaultBurstSize)
	defer analysisLimiter.Stop()

	// Optional auth
	var authMiddleware *middleware.AuthMiddleware
	var wsValidator handler.JWTValidator
	if cfg.AuthEnabled() {
		authMiddleware, err = middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create auth middleware")
		}
		validator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create websocket token validator")
		}
		wsValidator = validator
	} else {
		log.Warn().Msg("AUTH0_DOMAIN not set, API is open")
	}

	// Initialize handlers
	monthHandler := handler.NewMonthHandler(budgetService)
	salaryHandler := handler.NewSalaryHandler(budgetService)
	dashboardHandler := handler.NewDashboardHandler(budgetService)
	backupHandler := handler.NewBackupHandler(backupService)
	analysisHandler := handler.NewAnalysisHandler(analysisService)
	wsHandler := handler.NewWebSocketHandler(hub, wsValidator, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.RequestID())

	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders:    []string{echo.HeaderContentDisposition, "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	e.Use(zerologMiddleware())
	e.Use(echomiddleware.Recover())

	e.GET("/health", func(c echo.Context) error {
		sync := budgetService.SyncStatus()
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":       "ok",
			"viewedPeriod": budgetService.ViewedPeriod(),
			"clients":      hub.ClientCount(),
			"sync":         sync,
		})
	})

	handler.RegisterRoutes(e, authMiddleware, analysisLimiter, monthHandler, salaryHandler, dashboardHandler, backupHandler, analysisHandler, wsHandler)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		hub.CloseAll()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
	}

	log.Info().Msg("Server exited")
}

// openStore builds the configured ledger store and its cleanup func
func openStore(ctx context.Context, cfg *config.Config) (domain.BudgetStore, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		store := postgres.NewBudgetStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil

	case config.StoreBackendSQLite:
		store, err := sqlite.NewBudgetStore(cfg.SQLitePath, sqlite.DefaultRetention)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close sqlite store")
			}
		}, nil

	default:
		store, err := file.NewBudgetStore(cfg.DataFile)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
