package audit

import (
	"context"

	"github.com/prismstudio/certverify/internal/domain/models"
	"github.com/prismstudio/certverify/internal/domain/repository"
	"github.com/prismstudio/certverify/pkg/logger"
)

var _ repository.VerificationLogRepository = (*PublishingLogRepository)(nil)

// PublishingLogRepository appends to the primary log and then mirrors the entry to a publisher.
// Only the primary append can fail the call.
type PublishingLogRepository struct {
	primary   repository.VerificationLogRepository
	publisher EventPublisher
	logger    logger.Logger
}

// NewPublishingLogRepository wraps primary with a publisher.
func NewPublishingLogRepository(primary repository.VerificationLogRepository, publisher EventPublisher, log logger.Logger) *PublishingLogRepository {
	return &PublishingLogRepository{
		primary:   primary,
		publisher: publisher,
		logger:    log.WithComponent("verification_audit"),
	}
}

func (r *PublishingLogRepository) Append(ctx context.Context, entry *models.VerificationLog) error {
	if err := r.primary.Append(ctx, entry); err != nil {
		return err
	}

	if err := r.publisher.Publish(ctx, entry); err != nil {
		r.logger.Warn(ctx, "Failed to publish verification event",
			logger.String("certificate_id", entry.CertificateID),
			logger.Err(err),
		)
	}
	return nil
}

//Personal.AI order the ending
