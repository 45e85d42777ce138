// Package server exposes the archived report over a small read-only HTTP
// API. It serves exactly the core's output contract and recomputes nothing.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	apperrors "github.com/arcstats/demoaudit/internal/errors"
	"github.com/arcstats/demoaudit/internal/monitoring"
	"github.com/arcstats/demoaudit/internal/store"
)

// Server serves the latest archived run.
type Server struct {
	repo   *store.Repository
	logger *monitoring.Logger
	router *gin.Engine
}

// New creates the report server with its middleware chain.
func New(repo *store.Repository, logger *monitoring.Logger) *Server {
	if logger == nil {
		logger = monitoring.NewLogger()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(requestLogging(logger))
	router.Use(apperrors.ErrorHandler())
	router.Use(apperrors.RecoveryHandler())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	limiter := NewRateLimiter(DefaultRateLimitConfig())
	router.Use(limiter.Middleware())

	s := &Server{repo: repo, logger: logger, router: router}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api/v1/report")
	api.GET("/summary", s.handleSummary)
	api.GET("/districts", s.handleDistricts)
	api.GET("/alerts", s.handleAlerts)
	api.GET("/early-warnings", s.handleEarlyWarnings)
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func requestLogging(logger *monitoring.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.RequestLogger(c.Request.Method, c.Request.URL.Path, c.ClientIP(), c.Writer.Status(), time.Since(start))
	}
}
