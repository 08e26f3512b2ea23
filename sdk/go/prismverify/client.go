// Package prismverify is a Go client for the certificate verification API.
package prismverify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const verifyPath = "/api/v1/certificates/verify"

var (
	ErrInvalidFormat = errors.New("invalid certificate id format")
	ErrNotFound      = errors.New("certificate not found or revoked")
)

// RateLimitedError is returned while the server asks the caller to back off.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// ServerError reports any other non-success response.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("verification failed with status %d: %s", e.StatusCode, e.Message)
}

// Certificate is the public view of a verified certificate.
type Certificate struct {
	CertificateID   string   `json:"certificateId"`
	HolderName      string   `json:"holderName"`
	StudentID       string   `json:"studentId"`
	Domain          string   `json:"domain"`
	DomainCode      string   `json:"domainCode"`
	Cohort          string   `json:"cohort"`
	IssueDate       string   `json:"issueDate"`
	CompletionDate  string   `json:"completionDate"`
	ValidUntil      *string  `json:"validUntil"`
	Skills          []string `json:"skills"`
	Grade           string   `json:"grade"`
	IsExpired       bool     `json:"isExpired"`
	DaysUntilExpiry *int     `json:"daysUntilExpiry"`
}

// Result is a successful verification.
type Result struct {
	Certificate         Certificate `json:"certificate"`
	VerificationDetails struct {
		VerifiedAt       string `json:"verifiedAt"`
		VerificationHash string `json:"verificationHash"`
		ClientIP         string `json:"clientIp"`
		Method           string `json:"method"`
		Status           string `json:"status"`
	} `json:"verificationDetails"`
	Issuer struct {
		Name           string `json:"name"`
		Website        string `json:"website"`
		SupportContact string `json:"supportContact"`
	} `json:"issuer"`
	Timestamp string `json:"timestamp"`
}

type errorBody struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter"`
}

// Client is safe for concurrent use. After a 429 it refuses further calls locally
// until the advertised retry time has passed.
type Client struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time

	mu           sync.RWMutex
	blockedUntil time.Time
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

// Verify checks a certificate id.
func (c *Client) Verify(ctx context.Context, certificateID string) (*Result, error) {
	c.mu.RLock()
	wait := c.blockedUntil.Sub(c.now())
	c.mu.RUnlock()
	if wait > 0 {
		return nil, &RateLimitedError{RetryAfter: wait}
	}

	payload, err := json.Marshal(map[string]string{"certificate_id": certificateID})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+verifyPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		var result Result
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("failed to decode verification response: %w", err)
		}
		return &result, nil
	}

	var body errorBody
	_ = json.NewDecoder(resp.Body).Decode(&body)

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, body.Error)
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		retryAfter := retryAfterFrom(resp.Header.Get("Retry-After"), body.RetryAfter)
		c.mu.Lock()
		c.blockedUntil = c.now().Add(retryAfter)
		c.mu.Unlock()
		return nil, &RateLimitedError{RetryAfter: retryAfter}
	default:
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: body.Error}
	}
}

func retryAfterFrom(header string, fallback int) time.Duration {
	if s, err := strconv.Atoi(header); err == nil && s > 0 {
		return time.Duration(s) * time.Second
	}
	if fallback > 0 {
		return time.Duration(fallback) * time.Second
	}
	return time.Second
}
