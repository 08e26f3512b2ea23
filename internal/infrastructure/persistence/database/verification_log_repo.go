package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/prismstudio/certverify/internal/domain/models"
	"github.com/prismstudio/certverify/internal/domain/repository"
)

var _ repository.VerificationLogRepository = (*VerificationLogRepoImpl)(nil)

// VerificationLogRepoImpl appends verification attempts to certificate_verifications.
type VerificationLogRepoImpl struct {
	db *gorm.DB
}

// NewVerificationLogRepository creates a gorm-backed verification log.
func NewVerificationLogRepository(db *gorm.DB) *VerificationLogRepoImpl {
	return &VerificationLogRepoImpl{db: db}
}

func (r *VerificationLogRepoImpl) Append(ctx context.Context, entry *models.VerificationLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append verification log: %w", err)
	}
	return nil
}

// CountByCertificateID returns how many attempts were logged for the identifier.
func (r *VerificationLogRepoImpl) CountByCertificateID(ctx context.Context, certificateID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.VerificationLog{}).
		Where("certificate_id = ?", certificateID).
		Count(&count).Error
	return count, err
}

//Personal.AI order the ending
