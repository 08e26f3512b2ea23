// Package http wires the gin engine: middleware chain, routes and server lifecycle.
package http

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/prismstudio/certverify/internal/application/dto"
	"github.com/prismstudio/certverify/internal/config"
	"github.com/prismstudio/certverify/internal/infrastructure/monitoring"
	"github.com/prismstudio/certverify/internal/interfaces/http/handlers"
	"github.com/prismstudio/certverify/internal/interfaces/http/middleware"
	"github.com/prismstudio/certverify/pkg/constants"
	"github.com/prismstudio/certverify/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

// Router owns the gin engine and the HTTP server.
type Router struct {
	engine              *gin.Engine
	config              *config.Config
	logger              logger.Logger
	metrics             *monitoring.Metrics
	gatherer            prometheus.Gatherer
	tracer              trace.Tracer
	renderer            *dto.ErrorRenderer
	healthHandler       *handlers.HealthHandler
	verificationHandler *handlers.VerificationHandler
	server              *http.Server
}

// RouterDeps groups the collaborators of the router.
type RouterDeps struct {
	Metrics             *monitoring.Metrics
	Gatherer            prometheus.Gatherer
	Tracer              trace.Tracer
	Renderer            *dto.ErrorRenderer
	HealthHandler       *handlers.HealthHandler
	VerificationHandler *handlers.VerificationHandler
}

// NewRouter creates a router and registers all routes.
func NewRouter(cfg *config.Config, log logger.Logger, deps RouterDeps) *Router {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:              gin.New(),
		config:              cfg,
		logger:              log.WithComponent("router"),
		metrics:             deps.Metrics,
		gatherer:            deps.Gatherer,
		tracer:              deps.Tracer,
		renderer:            deps.Renderer,
		healthHandler:       deps.HealthHandler,
		verificationHandler: deps.VerificationHandler,
	}
	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	r.engine.Use(
		middleware.RequestIDMiddleware(),
		middleware.RecoveryMiddleware(r.logger, r.renderer),
		middleware.ObservabilityMiddleware(r.tracer, r.metrics),
		middleware.LoggingMiddleware(r.logger),
	)

	origins := r.config.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.engine.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", constants.HeaderRequestID},
		ExposeHeaders: []string{constants.HeaderRequestID, constants.HeaderRetryAfter},
		MaxAge:        12 * time.Hour,
	}))

	r.engine.GET("/health", r.healthHandler.HealthCheck)
	r.engine.GET("/ready", r.healthHandler.ReadinessCheck)
	r.engine.GET("/live", r.healthHandler.LivenessCheck)

	r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))

	if r.config.Server.Environment != "production" {
		pprof.Register(r.engine)
	}

	v1 := r.engine.Group("/api/v1")
	{
		certificates := v1.Group("/certificates")
		certificates.POST("/verify", r.verificationHandler.VerifyPost)
		certificates.GET("/verify", r.verificationHandler.VerifyGet)
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "The requested resource was not found",
		})
	})
}

// Start serves HTTP until the server is stopped or a termination signal arrives.
func (r *Router) Start() error {
	addr := r.config.Server.Address()
	r.server = &http.Server{
		Addr:           addr,
		Handler:        r.engine,
		ReadTimeout:    time.Duration(r.config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(r.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(r.config.Server.IdleTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	r.logger.Info(context.Background(), "Starting HTTP server", logger.String("address", addr))

	go r.gracefulShutdown()

	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (r *Router) gracefulShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := r.Stop(ctx); err != nil {
		r.logger.Error(ctx, "Server forced to shutdown", err)
	}
	r.logger.Info(ctx, "HTTP server stopped")
}

// Stop shuts the server down, waiting for in-flight requests.
func (r *Router) Stop(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	r.logger.Info(ctx, "Stopping HTTP server...")
	return r.server.Shutdown(ctx)
}

// Engine exposes the gin engine for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

//Personal.AI order the ending
