package repository

import (
	"context"

	"github.com/prismstudio/certverify/internal/domain/models"
)

// RateLimitRepository persists fixed-window counters keyed by (ip, endpoint).
type RateLimitRepository interface {
	// Find returns the record for the pair, or a not found error.
	Find(ctx context.Context, ip, endpoint string) (*models.RateLimitRecord, error)

	// Create inserts a new record. A concurrent insert for the same pair yields a conflict error.
	Create(ctx context.Context, record *models.RateLimitRecord) error

	// Update overwrites count, window start and block of an existing record.
	Update(ctx context.Context, record *models.RateLimitRecord) error

	// Delete removes the record for the pair. Deleting a missing record is not an error.
	Delete(ctx context.Context, ip, endpoint string) error
}
