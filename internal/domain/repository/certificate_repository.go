// Package repository declares the storage contracts used by the verification service.
package repository

import (
	"context"

	"github.com/prismstudio/certverify/internal/domain/models"
)

// CertificateRepository reads issued certificates.
type CertificateRepository interface {
	// FindActiveByCertificateID returns the active certificate with exactly this identifier.
	// A missing or revoked certificate yields an error for which errors.IsNotFoundError is true.
	FindActiveByCertificateID(ctx context.Context, certificateID string) (*models.Certificate, error)
}
