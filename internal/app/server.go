// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"pawmart_web/internal/config"
	"pawmart_web/internal/handler"
	"pawmart_web/internal/jobs"
	"pawmart_web/internal/middleware"
	"pawmart_web/internal/workspace"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups the route handlers mounted by the server.
type Handlers struct {
	Health    *handler.HealthHandler
	Session   *handler.SessionHandler
	Theme     *handler.ThemeHandler
	Listing   *handler.ListingHandler
	MyListing *handler.MyListingHandler
	Order     *handler.OrderHandler
	Admin     *handler.AdminHandler
	Dashboard *handler.DashboardHandler
}

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	// Jobs
	listingSyncJob *jobs.ListingSyncJob
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	handlers Handlers,
	registry *workspace.Registry,
	rateLimiter *middleware.RateLimiter,
	listingSyncJob *jobs.ListingSyncJob,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	// The workspace cookie is credentialed, so origins must be explicit.
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.FrontendURL}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", workspace.SystemThemeHeader, middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	sessionMW := middleware.RequireSession(cfg, logger.Named("RequireSession"))
	adminMW := middleware.RequireAdmin(logger.Named("RequireAdmin"))
	rateLimitMW := rateLimiter.Middleware(logger.Named("RateLimiter"))

	// --- Setup Routes ---
	handlers.Health.RegisterRoutes(router)

	api := router.Group("/api", middleware.Workspace(registry, logger.Named("Workspace")))
	handlers.Session.RegisterRoutes(api, rateLimitMW, sessionMW)
	handlers.Theme.RegisterRoutes(api)
	handlers.Listing.RegisterRoutes(api, sessionMW)
	handlers.MyListing.RegisterRoutes(api, sessionMW)
	handlers.Order.RegisterRoutes(api, sessionMW)
	handlers.Admin.RegisterRoutes(api, sessionMW, adminMW)
	handlers.Dashboard.RegisterRoutes(api, sessionMW)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.ServerTimeout,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:     httpServer,
		router:         router,
		cfg:            cfg,
		logger:         logger,
		listingSyncJob: listingSyncJob,
	}, nil
}

// Router exposes the configured engine.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Start() error {
	if s.listingSyncJob != nil {
		if err := s.listingSyncJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start listing sync job", zap.Error(err))
		}
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.listingSyncJob != nil {
		s.listingSyncJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
