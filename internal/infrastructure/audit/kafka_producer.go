// Package audit mirrors verification attempts to Kafka for downstream analytics.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/prismstudio/certverify/internal/config"
	"github.com/prismstudio/certverify/internal/domain/models"
	"github.com/prismstudio/certverify/pkg/logger"
)

// EventPublisher sends verification attempts to an external sink.
type EventPublisher interface {
	Publish(ctx context.Context, entry *models.VerificationLog) error
	Close() error
}

// VerificationEvent is the message body written to the audit topic.
type VerificationEvent struct {
	ID            string `json:"id"`
	CertificateID string `json:"certificate_id"`
	IPAddress     string `json:"ip_address"`
	UserAgent     string `json:"user_agent"`
	Success       bool   `json:"success"`
	Reason        string `json:"reason"`
	VerifiedAt    string `json:"verified_at"`
}

// NewVerificationEvent converts a log entry into its wire form.
func NewVerificationEvent(entry *models.VerificationLog) VerificationEvent {
	return VerificationEvent{
		ID:            entry.ID.String(),
		CertificateID: entry.CertificateID,
		IPAddress:     entry.IPAddress,
		UserAgent:     entry.UserAgent,
		Success:       entry.Success,
		Reason:        string(entry.Reason),
		VerifiedAt:    entry.VerifiedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

// KafkaProducer writes verification events to a Kafka topic.
type KafkaProducer struct {
	writer *kafka.Writer
	logger logger.Logger
}

// NewKafkaProducer creates a producer. Writes are asynchronous; delivery failures are logged.
func NewKafkaProducer(cfg config.KafkaConfig, log logger.Logger) *KafkaProducer {
	p := &KafkaProducer{logger: log.WithComponent("kafka_producer")}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		Async:        true,
		Completion:   p.onCompletion,
	}
	return p
}

// Publish enqueues the event keyed by certificate identifier.
func (p *KafkaProducer) Publish(ctx context.Context, entry *models.VerificationLog) error {
	body, err := json.Marshal(NewVerificationEvent(entry))
	if err != nil {
		return fmt.Errorf("failed to marshal verification event: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(entry.CertificateID),
		Value: body,
	})
}

func (p *KafkaProducer) onCompletion(messages []kafka.Message, err error) {
	if err != nil {
		p.logger.Error(context.Background(), "Failed to deliver verification events", err,
			logger.Int("messages", len(messages)),
		)
	}
}

// Close flushes pending messages and closes the writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

//Personal.AI order the ending
