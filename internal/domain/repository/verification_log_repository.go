package repository

import (
	"context"

	"github.com/prismstudio/certverify/internal/domain/models"
)

// VerificationLogRepository appends verification attempts. Entries are never updated or deleted.
type VerificationLogRepository interface {
	Append(ctx context.Context, entry *models.VerificationLog) error
}
