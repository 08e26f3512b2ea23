// Package app assembles the verification service from configuration.
package app

import (
	"context"
	goerrors "errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/prismstudio/certverify/internal/application/dto"
	"github.com/prismstudio/certverify/internal/application/service"
	"github.com/prismstudio/certverify/internal/config"
	"github.com/prismstudio/certverify/internal/domain/repository"
	"github.com/prismstudio/certverify/internal/infrastructure/audit"
	"github.com/prismstudio/certverify/internal/infrastructure/crypto"
	"github.com/prismstudio/certverify/internal/infrastructure/monitoring"
	"github.com/prismstudio/certverify/internal/infrastructure/persistence/database"
	redisstore "github.com/prismstudio/certverify/internal/infrastructure/persistence/redis"
	"github.com/prismstudio/certverify/internal/infrastructure/ratelimit"
	httpiface "github.com/prismstudio/certverify/internal/interfaces/http"
	"github.com/prismstudio/certverify/internal/interfaces/http/handlers"
	"github.com/prismstudio/certverify/pkg/constants"
	"github.com/prismstudio/certverify/pkg/logger"
)

// Container holds the long-lived components of a running process.
type Container struct {
	Config  *config.Config
	Logger  logger.Logger
	DB      *database.DBConnection
	Redis   *redisstore.RedisConnection
	Limiter *ratelimit.FixedWindowLimiter

	Registry  *prometheus.Registry
	Metrics   *monitoring.Metrics
	Tracing   *monitoring.TracingManager
	Publisher audit.EventPublisher
	Router    *httpiface.Router
}

// NewStorage connects the database and the configured rate limit store.
func NewStorage(ctx context.Context, cfg *config.Config, log logger.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: log}

	db, err := database.NewDBConnection(ctx, &cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	store, err := c.rateLimitStore(ctx)
	if err != nil {
		_ = c.Close(ctx)
		return nil, err
	}

	c.Limiter = ratelimit.NewFixedWindowLimiter(store, &ratelimit.LimiterConfig{
		Window:    cfg.RateLimit.Window,
		Threshold: cfg.RateLimit.Threshold,
	}, nil, log)
	return c, nil
}

func (c *Container) rateLimitStore(ctx context.Context) (repository.RateLimitRepository, error) {
	backend := constants.RateLimitBackend(c.Config.RateLimit.Backend)
	c.Logger.Info(ctx, "Initializing rate limit store", logger.String("backend", string(backend)))

	switch backend {
	case constants.RateLimitBackendRedis:
		conn, err := redisstore.NewRedisConnection(ctx, &c.Config.Redis, c.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		c.Redis = conn
		return redisstore.NewRateLimitStore(conn, c.Config.RateLimit.Window), nil
	case constants.RateLimitBackendMemory:
		return ratelimit.NewMemoryStore(c.Config.RateLimit.Window), nil
	default:
		return database.NewRateLimitRepository(c.DB.DB()), nil
	}
}

// NewServer builds the full HTTP service on top of NewStorage.
func NewServer(ctx context.Context, cfg *config.Config, log logger.Logger) (*Container, error) {
	c, err := NewStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if err := c.buildServer(ctx); err != nil {
		_ = c.Close(ctx)
		return nil, err
	}
	return c, nil
}

func (c *Container) buildServer(ctx context.Context) error {
	cfg := c.Config

	key, err := crypto.LoadVerificationKey(ctx, cfg, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to load verification key: %w", err)
	}
	hasher, err := crypto.NewHMACHasher(key)
	if err != nil {
		return err
	}

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = monitoring.NewMetrics(c.Registry)

	c.Tracing, err = monitoring.NewTracingManager(&cfg.Tracing, cfg.Server.Environment, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	var logRepo repository.VerificationLogRepository = database.NewVerificationLogRepository(c.DB.DB())
	if cfg.Kafka.Enabled {
		c.Publisher = audit.NewKafkaProducer(cfg.Kafka, c.Logger)
		logRepo = audit.NewPublishingLogRepository(logRepo, c.Publisher, c.Logger)
	}

	issuer := service.DefaultIssuerInfo()
	if cfg.Verification.IssuerName != "" {
		issuer.Name = cfg.Verification.IssuerName
	}
	if cfg.Verification.IssuerWebsite != "" {
		issuer.Website = cfg.Verification.IssuerWebsite
	}
	if cfg.Verification.SupportContact != "" {
		issuer.SupportContact = cfg.Verification.SupportContact
	}

	verificationSvc := service.NewVerificationAppService(
		c.Limiter,
		database.NewCertificateRepository(c.DB.DB(), c.Logger),
		logRepo,
		hasher,
		issuer,
		nil,
		c.Metrics,
		c.Logger,
	)

	checkers := map[string]handlers.HealthChecker{"database": c.DB}
	if c.Redis != nil {
		checkers["redis"] = c.Redis
	}

	renderer := dto.NewErrorRenderer(issuer.SupportContact)
	c.Router = httpiface.NewRouter(cfg, c.Logger, httpiface.RouterDeps{
		Metrics:             c.Metrics,
		Gatherer:            c.Registry,
		Tracer:              c.Tracing.Tracer(),
		Renderer:            renderer,
		HealthHandler:       handlers.NewHealthHandler(checkers, c.Logger),
		VerificationHandler: handlers.NewVerificationHandler(verificationSvc, renderer, c.Logger),
	})
	return nil
}

// Close releases everything the container opened, in reverse order.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	if c.Tracing != nil {
		errs = append(errs, c.Tracing.Shutdown(ctx))
	}
	if c.Publisher != nil {
		errs = append(errs, c.Publisher.Close())
	}
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return goerrors.Join(errs...)
}

//Personal.AI order the ending
