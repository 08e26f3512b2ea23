package database

import (
	"context"
	goerrors "errors"

	"gorm.io/gorm"

	"github.com/prismstudio/certverify/internal/domain/models"
	"github.com/prismstudio/certverify/internal/domain/repository"
	"github.com/prismstudio/certverify/pkg/errors"
	"github.com/prismstudio/certverify/pkg/logger"
)

var _ repository.CertificateRepository = (*CertificateRepoImpl)(nil)

// CertificateRepoImpl reads certificates through gorm.
type CertificateRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewCertificateRepository creates a gorm-backed certificate repository.
func NewCertificateRepository(db *gorm.DB, log logger.Logger) *CertificateRepoImpl {
	return &CertificateRepoImpl{
		db:     db,
		logger: log.WithComponent("certificate_repository"),
	}
}

// FindActiveByCertificateID matches the identifier exactly; revoked certificates are reported as not found.
func (r *CertificateRepoImpl) FindActiveByCertificateID(ctx context.Context, certificateID string) (*models.Certificate, error) {
	var cert models.Certificate
	err := r.db.WithContext(ctx).
		Where("certificate_id = ? AND is_active = ?", certificateID, true).
		Take(&cert).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrCertificateNotFound(certificateID)
		}
		r.logger.Error(ctx, "Failed to find certificate", err, logger.String("certificate_id", certificateID))
		return nil, errors.ErrServerError("failed to find certificate").WithCause(err)
	}
	return &cert, nil
}

// Save inserts a certificate. The verification service never writes certificates;
// this exists for seeding and administration.
func (r *CertificateRepoImpl) Save(ctx context.Context, cert *models.Certificate) error {
	if err := r.db.WithContext(ctx).Create(cert).Error; err != nil {
		return mapWriteErr(err, "certificate already exists")
	}
	return nil
}

//Personal.AI order the ending
