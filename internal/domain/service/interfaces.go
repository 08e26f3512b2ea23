// Package service declares domain services consumed by the application layer.
package service

import (
	"context"
	"time"

	"github.com/prismstudio/certverify/internal/domain/models"
)

// RateLimitDecision is the outcome of one rate limit check.
type RateLimitDecision struct {
	// Allowed indicates if the request may proceed
	Allowed bool
	// Count is the number of requests recorded in the current window
	Count int
	// RetryAfter is how long a denied caller should wait
	RetryAfter time.Duration
	// FailedOpen is set when the store failed and the request was allowed anyway
	FailedOpen bool
}

// RateLimiter counts requests per (client address, endpoint) and decides whether they may proceed.
type RateLimiter interface {
	CheckAndRecord(ctx context.Context, clientAddress, endpoint string) RateLimitDecision
}

// VerificationHasher derives the presentational verification hash for a certificate on a given day.
type VerificationHasher interface {
	Hash(cert *models.Certificate, at time.Time) string
}

// Clock supplies the current time.
type Clock func() time.Time
