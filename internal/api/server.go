package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/suqly/category-suggester/internal/logger"
	"github.com/suqly/category-suggester/internal/telemetry"
)

// Default timeout values.
const (
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 60 * time.Second
	defaultIdleTimeout  = 120 * time.Second
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         int
	Debug        bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	RateLimit    float64
	RateBurst    int
}

// Server wraps the gin engine and the underlying http.Server.
type Server struct {
	httpServer *http.Server
	logger     logger.Logger
}

// NewServer builds the router and wires all routes.
func NewServer(cfg ServerConfig, handler *Handler, tel *telemetry.Provider, log logger.Logger) *Server {
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	SetupRoutes(router, cfg, handler, tel)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  defaultIdleTimeout,
		},
		logger: log,
	}
}

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, cfg ServerConfig, handler *Handler, tel *telemetry.Provider) {
	// Health and readiness checks
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)

	if tel != nil {
		router.GET("/metrics", gin.WrapH(tel.Handler()))
	}

	v1 := router.Group("/api/v1")
	v1.Use(RateLimiter(cfg.RateLimit, cfg.RateBurst))
	{
		v1.POST("/classify", handler.Classify) // POST /api/v1/classify

		// Admin operations
		v1.POST("/sync", handler.Sync)                             // POST /api/v1/sync
		v1.POST("/train", handler.Train)                           // POST /api/v1/train
		v1.GET("/documents", handler.ListDocuments)                // GET  /api/v1/documents
		v1.POST("/documents/:id/examples", handler.AppendExample)  // POST /api/v1/documents/:id/examples
	}
}

// Start begins serving. Blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("http server listening", logger.String("addr", s.httpServer.Addr))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
