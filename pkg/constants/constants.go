// Package constants defines system-wide constants for the PrismStudio certificate verification service.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Service Identity
// ================================================================================

const (
	// ServiceName is used for tracing resources and log metadata
	ServiceName = "prism-verify"

	// IssuerName is the organisation that issues the certificates
	IssuerName = "PrismStudio"

	// IssuerWebsite is the public website of the issuer
	IssuerWebsite = "https://prismstudio.co.in"

	// DefaultSupportContact is returned to callers on not-found and internal errors
	DefaultSupportContact = "support@prismstudio.co.in"
)

// ================================================================================
// Certificate Verification Constants
// ================================================================================

const (
	// CertificateIDFormatHint is echoed to callers who submit a malformed identifier
	CertificateIDFormatHint = "Certificate ID should be in format: PS + YYMM + domain code (2-4 letters) + 3-digit sequence, e.g. PS2506DS148"

	// IPMaskToken replaces the last IPv4 octet (or IPv6 group) in response echoes
	IPMaskToken = "xxx"

	// DefaultClientAddress is used when no forwarding header is present
	DefaultClientAddress = "127.0.0.1"

	// VerificationMethod describes how a certificate was verified
	VerificationMethod = "certificate_id_lookup"

	// VerificationHashDateLayout is the calendar-date layout mixed into the verification hash
	VerificationHashDateLayout = "2006-01-02"
)

// VerificationReason classifies a verification log entry
type VerificationReason string

const (
	// ReasonVerified marks a successful verification
	ReasonVerified VerificationReason = "verified"

	// ReasonInvalidFormat marks an identifier that failed the format check
	ReasonInvalidFormat VerificationReason = "invalid_format"

	// ReasonNotFound marks a well-formed identifier with no active certificate
	ReasonNotFound VerificationReason = "not_found"

	// ReasonLookupError marks a lookup that failed in the backing store
	ReasonLookupError VerificationReason = "lookup_error"
)

// ================================================================================
// Rate Limiting Constants
// ================================================================================

const (
	// RateLimitWindow is the length of one fixed counting window
	RateLimitWindow = 5 * time.Minute

	// RateLimitThreshold is the number of requests allowed per window
	RateLimitThreshold = 10

	// EndpointCertificateVerify identifies the verification endpoint in rate limit records
	EndpointCertificateVerify = "/api/v1/certificates/verify"

	// RateLimitKeyPrefix is the key namespace for redis and in-memory stores
	RateLimitKeyPrefix = "ratelimit"
)

// RateLimitBackend names a rate limit record store
type RateLimitBackend string

const (
	// RateLimitBackendDatabase stores records in the relational database
	RateLimitBackendDatabase RateLimitBackend = "database"

	// RateLimitBackendRedis stores records in redis hashes
	RateLimitBackendRedis RateLimitBackend = "redis"

	// RateLimitBackendMemory stores records in process memory
	RateLimitBackendMemory RateLimitBackend = "memory"
)

// ================================================================================
// Database Constants
// ================================================================================

// DatabaseDriver names a gorm dialector
type DatabaseDriver string

const (
	// DriverPostgres is the production driver
	DriverPostgres DatabaseDriver = "postgres"

	// DriverSQLite is used for local development and tests
	DriverSQLite DatabaseDriver = "sqlite"
)

// ================================================================================
// HTTP Header Constants
// ================================================================================

const (
	HeaderForwardedFor = "X-Forwarded-For"
	HeaderRealIP       = "X-Real-IP"
	HeaderRequestID    = "X-Request-ID"
	HeaderRetryAfter   = "Retry-After"
	HeaderUserAgent    = "User-Agent"
)

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey is the type of keys stored in request contexts
type ContextKey string

const (
	// ContextKeyRequestID carries the request identifier
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyTraceID carries the trace identifier
	ContextKeyTraceID ContextKey = "trace_id"

	// ContextKeyClientIP carries the resolved client address
	ContextKeyClientIP ContextKey = "client_ip"
)

// ================================================================================
// Log Level Constants
// ================================================================================

// LogLevel represents the severity level of log messages
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelFatal
)

// ParseLogLevel converts a config string to a LogLevel, defaulting to info
func ParseLogLevel(level string) LogLevel {
	switch level {
	case "debug", "DEBUG":
		return LogLevelDebug
	case "warn", "WARN", "warning":
		return LogLevelWarn
	case "error", "ERROR":
		return LogLevelError
	case "fatal", "FATAL":
		return LogLevelFatal
	default:
		return LogLevelInfo
	}
}

// ================================================================================
// Error Code Constants
// ================================================================================

// ErrorCode is a machine-readable error code
type ErrorCode string

const (
	ErrCodeInvalidRequest           ErrorCode = "invalid_request"
	ErrCodeInvalidCertificateFormat ErrorCode = "invalid_certificate_format"
	ErrCodeCertificateNotFound      ErrorCode = "certificate_not_found"
	ErrCodeNotFound                 ErrorCode = "not_found"
	ErrCodeRateLimitExceeded        ErrorCode = "rate_limit_exceeded"
	ErrCodeServerError              ErrorCode = "server_error"
	ErrCodeServiceUnavailable       ErrorCode = "service_unavailable"
	ErrCodeConflict                 ErrorCode = "conflict"
	ErrCodeInvalidConfig            ErrorCode = "invalid_config"
)

//Personal.AI order the ending
