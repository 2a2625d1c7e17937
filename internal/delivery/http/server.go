package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/scoutscape/internal/config"
	"github.com/scoutscape/internal/delivery/http/handler"
	"github.com/scoutscape/internal/delivery/http/middleware"
	"github.com/scoutscape/internal/pkg/metrics"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"
)

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	// Handlers
	scoutingHandler *handler.ScoutingHandler
	sessionHandler  *handler.SessionHandler
	geocodeHandler  *handler.GeocodeHandler
	analysisHandler *handler.AnalysisHandler
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	scoutingHandler *handler.ScoutingHandler,
	sessionHandler *handler.SessionHandler,
	geocodeHandler *handler.GeocodeHandler,
	analysisHandler *handler.AnalysisHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Scoutscape",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:             app,
		config:          cfg,
		logger:          logger,
		scoutingHandler: scoutingHandler,
		sessionHandler:  sessionHandler,
		geocodeHandler:  geocodeHandler,
		analysisHandler: analysisHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App отдаёт fiber.App (нужно тестам)
func (s *Server) App() *fiber.App {
	return s.app
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS())
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	// Prometheus
	s.app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := s.app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Categories and feature set
	api.Get("/categories", s.scoutingHandler.GetCategories)
	api.Get("/features/status", s.scoutingHandler.GetFeatureStatus)
	api.Post("/features/refresh", s.scoutingHandler.RefreshFeatures)
	api.Post("/facilities/nearby", s.scoutingHandler.Nearby)

	// Sessions
	sessions := api.Group("/sessions")
	sessions.Post("/", s.sessionHandler.CreateSession)
	sessions.Get("/:id", s.sessionHandler.GetSession)
	sessions.Put("/:id/point", s.sessionHandler.SetPoint)
	sessions.Put("/:id/radius", s.sessionHandler.SetRadius)
	sessions.Put("/:id/time", s.sessionHandler.SetTime)
	sessions.Put("/:id/layers/:category", s.sessionHandler.SetLayer)
	sessions.Get("/:id/facilities", s.sessionHandler.GetFacilities)
	sessions.Get("/:id/conditions", s.sessionHandler.GetConditions)
	sessions.Post("/:id/analyze", s.sessionHandler.Analyze)

	// Geocoding
	api.Get("/geocode/search", s.geocodeHandler.Search)
	api.Get("/geocode/reverse", s.geocodeHandler.Reverse)

	// Analyses
	api.Get("/analyses", s.analysisHandler.ListAnalyses)
	api.Get("/analyses/:id", s.analysisHandler.GetAnalysis)

	// Time helpers
	api.Post("/time/duration", handler.NormalizeDuration)
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - кастомный обработчик ошибок
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		return c.Status(code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INTERNAL_SERVER_ERROR",
				"message": err.Error(),
			},
		})
	}
}
