package database

import (
	"context"
	goerrors "errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/prismstudio/certverify/internal/domain/models"
	"github.com/prismstudio/certverify/internal/domain/repository"
	"github.com/prismstudio/certverify/pkg/errors"
)

const pgUniqueViolation = "23505"

var _ repository.RateLimitRepository = (*RateLimitRepoImpl)(nil)

// RateLimitRepoImpl stores rate limit records in the rate_limits table.
type RateLimitRepoImpl struct {
	db *gorm.DB
}

// NewRateLimitRepository creates a gorm-backed rate limit record store.
func NewRateLimitRepository(db *gorm.DB) *RateLimitRepoImpl {
	return &RateLimitRepoImpl{db: db}
}

func (r *RateLimitRepoImpl) Find(ctx context.Context, ip, endpoint string) (*models.RateLimitRecord, error) {
	var record models.RateLimitRecord
	err := r.db.WithContext(ctx).
		Where("ip_address = ? AND endpoint = ?", ip, endpoint).
		Take(&record).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrRecordNotFound("rate limit record", ip+" "+endpoint)
		}
		return nil, fmt.Errorf("failed to read rate limit record: %w", err)
	}
	return &record, nil
}

func (r *RateLimitRepoImpl) Create(ctx context.Context, record *models.RateLimitRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return mapWriteErr(err, "rate limit record already exists")
	}
	return nil
}

// Update writes count, window start and block. A block of nil clears the column.
func (r *RateLimitRepoImpl) Update(ctx context.Context, record *models.RateLimitRecord) error {
	result := r.db.WithContext(ctx).
		Model(&models.RateLimitRecord{}).
		Where("ip_address = ? AND endpoint = ?", record.IPAddress, record.Endpoint).
		Updates(map[string]interface{}{
			"request_count": record.RequestCount,
			"window_start":  record.WindowStart,
			"blocked_until": record.BlockedUntil,
			"updated_at":    r.db.NowFunc(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update rate limit record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrRecordNotFound("rate limit record", record.IPAddress+" "+record.Endpoint)
	}
	return nil
}

func (r *RateLimitRepoImpl) Delete(ctx context.Context, ip, endpoint string) error {
	err := r.db.WithContext(ctx).
		Where("ip_address = ? AND endpoint = ?", ip, endpoint).
		Delete(&models.RateLimitRecord{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete rate limit record: %w", err)
	}
	return nil
}

// mapWriteErr turns unique constraint violations into conflict errors.
func mapWriteErr(err error, conflictMessage string) error {
	if goerrors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.ErrConflict(conflictMessage).WithCause(err)
	}
	var pgErr *pgconn.PgError
	if goerrors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return errors.ErrConflict(conflictMessage).WithCause(err)
	}
	return err
}

//Personal.AI order the ending
