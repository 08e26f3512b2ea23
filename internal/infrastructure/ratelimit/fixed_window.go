// Package ratelimit provides fixed-window rate limiting over a pluggable record store.
package ratelimit

import (
	"context"
	"time"

	"github.com/prismstudio/certverify/internal/domain/models"
	"github.com/prismstudio/certverify/internal/domain/repository"
	"github.com/prismstudio/certverify/internal/domain/service"
	"github.com/prismstudio/certverify/pkg/constants"
	"github.com/prismstudio/certverify/pkg/errors"
	"github.com/prismstudio/certverify/pkg/logger"
)

var _ service.RateLimiter = (*FixedWindowLimiter)(nil)

// LimiterConfig holds fixed-window limiter configuration.
type LimiterConfig struct {
	// Window is the length of one counting window
	Window time.Duration
	// Threshold is the number of requests allowed per window
	Threshold int
}

// DefaultLimiterConfig returns the 10 requests per 5 minutes policy.
func DefaultLimiterConfig() *LimiterConfig {
	return &LimiterConfig{
		Window:    constants.RateLimitWindow,
		Threshold: constants.RateLimitThreshold,
	}
}

// FixedWindowLimiter counts requests per (client address, endpoint) in non-overlapping windows.
//
// Any store failure allows the request. Concurrent requests for the same pair may race
// between read and write; the counter is an anti-abuse heuristic and tolerates that.
type FixedWindowLimiter struct {
	store  repository.RateLimitRepository
	config *LimiterConfig
	now    service.Clock
	logger logger.Logger
}

// NewFixedWindowLimiter creates a limiter backed by store. A nil clock uses time.Now.
func NewFixedWindowLimiter(
	store repository.RateLimitRepository,
	config *LimiterConfig,
	clock service.Clock,
	log logger.Logger,
) *FixedWindowLimiter {
	if config == nil {
		config = DefaultLimiterConfig()
	}
	if clock == nil {
		clock = time.Now
	}

	return &FixedWindowLimiter{
		store:  store,
		config: config,
		now:    clock,
		logger: log.WithComponent("rate_limiter"),
	}
}

// CheckAndRecord records one request for the pair and reports whether it may proceed.
func (l *FixedWindowLimiter) CheckAndRecord(ctx context.Context, clientAddress, endpoint string) service.RateLimitDecision {
	now := l.now()

	record, err := l.store.Find(ctx, clientAddress, endpoint)
	if err != nil {
		if !errors.IsNotFoundError(err) {
			return l.failOpen(ctx, "find", clientAddress, endpoint, err)
		}

		record = models.NewRateLimitRecord(clientAddress, endpoint, now)
		if err := l.store.Create(ctx, record); err != nil {
			return l.failOpen(ctx, "create", clientAddress, endpoint, err)
		}
		return service.RateLimitDecision{Allowed: true, Count: record.RequestCount}
	}

	if record.WindowExpired(now, l.config.Window) {
		record.ResetWindow(now)
		if err := l.store.Update(ctx, record); err != nil {
			return l.failOpen(ctx, "reset", clientAddress, endpoint, err)
		}
		return service.RateLimitDecision{Allowed: true, Count: record.RequestCount}
	}

	if record.IsBlocked(now) {
		return service.RateLimitDecision{
			Allowed:    false,
			Count:      record.RequestCount,
			RetryAfter: record.BlockedUntil.Sub(now),
		}
	}

	record.RequestCount++
	if record.RequestCount > l.config.Threshold {
		blockedUntil := record.WindowStart.Add(l.config.Window)
		record.BlockedUntil = &blockedUntil
		if err := l.store.Update(ctx, record); err != nil {
			return l.failOpen(ctx, "block", clientAddress, endpoint, err)
		}

		l.logger.Warn(ctx, "Rate limit exceeded",
			logger.String("client_ip", clientAddress),
			logger.String("endpoint", endpoint),
			logger.Int("count", record.RequestCount),
			logger.Time("blocked_until", blockedUntil),
		)
		return service.RateLimitDecision{
			Allowed:    false,
			Count:      record.RequestCount,
			RetryAfter: blockedUntil.Sub(now),
		}
	}

	if err := l.store.Update(ctx, record); err != nil {
		return l.failOpen(ctx, "increment", clientAddress, endpoint, err)
	}
	return service.RateLimitDecision{Allowed: true, Count: record.RequestCount}
}

// failOpen allows the request when the store cannot answer.
func (l *FixedWindowLimiter) failOpen(ctx context.Context, op, clientAddress, endpoint string, err error) service.RateLimitDecision {
	l.logger.Error(ctx, "Rate limit store failed, allowing request", err,
		logger.String("operation", op),
		logger.String("client_ip", clientAddress),
		logger.String("endpoint", endpoint),
	)
	return service.RateLimitDecision{Allowed: true, FailedOpen: true}
}

// Reset clears the counter for the pair.
func (l *FixedWindowLimiter) Reset(ctx context.Context, clientAddress, endpoint string) error {
	if err := l.store.Delete(ctx, clientAddress, endpoint); err != nil {
		return err
	}
	l.logger.Info(ctx, "Rate limit reset",
		logger.String("client_ip", clientAddress),
		logger.String("endpoint", endpoint),
	)
	return nil
}

//Personal.AI order the ending
