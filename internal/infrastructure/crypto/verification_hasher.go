// Package crypto provides the verification hash and loading of its key material.
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/prismstudio/certverify/internal/domain/models"
	"github.com/prismstudio/certverify/internal/domain/service"
	"github.com/prismstudio/certverify/pkg/constants"
	"github.com/prismstudio/certverify/pkg/errors"
)

var _ service.VerificationHasher = (*HMACHasher)(nil)

// HMACHasher derives a keyed digest over the stored certificate hash, the identifier and the UTC day.
// The result is presentational: it changes daily and is not checked by any endpoint.
type HMACHasher struct {
	key []byte
}

// NewHMACHasher creates a hasher. An empty key is rejected.
func NewHMACHasher(key []byte) (*HMACHasher, error) {
	if len(key) == 0 {
		return nil, errors.ErrInvalidConfig("verification hash key is empty")
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &HMACHasher{key: k}, nil
}

// Hash returns the hex encoded HMAC-SHA256 of "storedHash|certificateID|YYYY-MM-DD".
func (h *HMACHasher) Hash(cert *models.Certificate, at time.Time) string {
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(cert.CertificateHash))
	mac.Write([]byte{'|'})
	mac.Write([]byte(cert.CertificateID))
	mac.Write([]byte{'|'})
	mac.Write([]byte(at.UTC().Format(constants.VerificationHashDateLayout)))
	return hex.EncodeToString(mac.Sum(nil))
}

//Personal.AI order the ending
