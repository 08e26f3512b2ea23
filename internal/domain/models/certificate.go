package models

import (
	"time"

	"github.com/prismstudio/certverify/pkg/certid"
)

// Certificate is an issued internship completion certificate.
// Records are written by the certificate generator; this service only reads them.
type Certificate struct {
	ID              uint       `gorm:"primaryKey" json:"-"`
	CertificateID   string     `gorm:"column:certificate_id;uniqueIndex;size:16;not null" json:"certificate_id"`
	StudentID       string     `gorm:"column:student_id;index;size:64" json:"student_id"`
	HolderName      string     `gorm:"column:holder_name;size:255" json:"holder_name"`
	Domain          string     `gorm:"column:domain;size:4" json:"domain"`
	IssueDate       time.Time  `gorm:"column:issue_date;not null" json:"issue_date"`
	CompletionDate  time.Time  `gorm:"column:completion_date;not null" json:"completion_date"`
	ValidUntil      *time.Time `gorm:"column:valid_until" json:"valid_until,omitempty"`
	Skills          []string   `gorm:"column:skills;serializer:json" json:"skills"`
	Grade           string     `gorm:"column:grade;size:16" json:"grade"`
	IsActive        bool       `gorm:"column:is_active;not null;index" json:"is_active"`
	CertificateHash string     `gorm:"column:certificate_hash;size:128" json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName overrides the gorm table name.
func (Certificate) TableName() string {
	return "certificates"
}

// DomainCode returns the stored domain code, falling back to the one encoded in the identifier.
func (c *Certificate) DomainCode() string {
	if c.Domain != "" {
		return c.Domain
	}
	if parts, ok := certid.Parse(c.CertificateID); ok {
		return parts.Domain
	}
	return ""
}

// IsExpired reports whether the certificate has a validity end that lies before now.
func (c *Certificate) IsExpired(now time.Time) bool {
	return c.ValidUntil != nil && c.ValidUntil.Before(now)
}

//Personal.AI order the ending
