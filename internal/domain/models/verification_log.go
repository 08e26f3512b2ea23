package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/prismstudio/certverify/pkg/constants"
)

// VerificationLog is an append-only audit record of one verification attempt.
// Caller-supplied columns are unbounded text so oversized input is still recorded.
type VerificationLog struct {
	ID            uuid.UUID                    `gorm:"type:uuid;primaryKey" json:"id"`
	CertificateID string                       `gorm:"column:certificate_id;type:text;index" json:"certificate_id"`
	IPAddress     string                       `gorm:"column:ip_address;type:text" json:"ip_address"`
	UserAgent     string                       `gorm:"column:user_agent;type:text" json:"user_agent"`
	Success       bool                         `gorm:"column:success;not null" json:"success"`
	Reason        constants.VerificationReason `gorm:"column:reason;size:32" json:"reason"`
	VerifiedAt    time.Time                    `gorm:"column:verified_at;autoCreateTime;index" json:"verified_at"`
}

// TableName overrides the gorm table name.
func (VerificationLog) TableName() string {
	return "certificate_verifications"
}

// NewVerificationLog creates a log entry for an attempt.
func NewVerificationLog(certificateID, ip, userAgent string, reason constants.VerificationReason) *VerificationLog {
	return &VerificationLog{
		ID:            uuid.New(),
		CertificateID: certificateID,
		IPAddress:     ip,
		UserAgent:     userAgent,
		Success:       reason == constants.ReasonVerified,
		Reason:        reason,
	}
}

//Personal.AI order the ending
