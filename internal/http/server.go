// Package http provides the HTTP server that fronts the webhook pipeline.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"github.com/allisson/fulfillment/internal/metrics"
	webhookHTTP "github.com/allisson/fulfillment/internal/webhook/http"
)

// Server represents the HTTP server
type Server struct {
	db     *sql.DB
	host   string
	port   int
	logger *slog.Logger
	router *gin.Engine
	server *http.Server

	webhookHandler   *webhookHTTP.WebhookHandler
	meterProvider    metric.MeterProvider
	metricsNamespace string
	corsEnabled      bool
	corsOrigins      string
	rateLimitEnabled bool
	rateLimitRPS     float64
	rateLimitBurst   int
}

// ServerOption configures optional server behavior.
type ServerOption func(*Server)

// WithWebhookHandler registers the webhook intake routes.
func WithWebhookHandler(handler *webhookHTTP.WebhookHandler) ServerOption {
	return func(s *Server) {
		s.webhookHandler = handler
	}
}

// WithCORS enables CORS for the given comma-separated origins.
func WithCORS(enabled bool, allowOrigins string) ServerOption {
	return func(s *Server) {
		s.corsEnabled = enabled
		s.corsOrigins = allowOrigins
	}
}

// WithRateLimit enables per-client rate limiting on the webhook routes.
func WithRateLimit(enabled bool, rps float64, burst int) ServerOption {
	return func(s *Server) {
		s.rateLimitEnabled = enabled
		s.rateLimitRPS = rps
		s.rateLimitBurst = burst
	}
}

// WithHTTPMetrics records request metrics through the given meter provider.
func WithHTTPMetrics(meterProvider metric.MeterProvider, namespace string) ServerOption {
	return func(s *Server) {
		s.meterProvider = meterProvider
		s.metricsNamespace = namespace
	}
}

// NewServer creates a new HTTP server. A nil db means the service runs on
// in-memory stores and readiness does not depend on a database.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger, options ...ServerOption) *Server {
	server := &Server{
		db:     db,
		host:   host,
		port:   port,
		logger: logger,
	}

	for _, option := range options {
		option(server)
	}

	return server
}

// setupRouter builds the gin engine with the middleware chain and routes.
func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(s.corsEnabled, s.corsOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if s.meterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(s.meterProvider, s.metricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	if s.webhookHandler != nil {
		webhooks := router.Group("/webhooks")
		if s.rateLimitEnabled {
			webhooks.Use(RateLimitMiddleware(s.rateLimitRPS, s.rateLimitBurst, s.logger))
		}
		webhooks.POST("/shopify", s.webhookHandler.ReceiveHandler)
	}

	return router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the service can take traffic. With SQL
// storage the database must answer a ping; in-memory mode is always ready.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if s.db == nil {
		components["database"] = "memory"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := s.db.PingContext(ctx); err != nil {
			components["database"] = "error"
			ready = false
		} else {
			components["database"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}

// Handler returns the fully configured router, building it on first use.
func (s *Server) Handler() http.Handler {
	if s.router == nil {
		s.router = s.setupRouter()
	}
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		s.router = s.setupRouter()
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.host, s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
