package dto

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prismstudio/certverify/pkg/constants"
	"github.com/prismstudio/certverify/pkg/errors"
)

// FormatErrorResponse is the 400 body.
type FormatErrorResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	FormatHint string `json:"format_hint,omitempty"`
}

// NotFoundResponse is the 404 body.
type NotFoundResponse struct {
	Success        bool   `json:"success"`
	Error          string `json:"error"`
	CertificateID  string `json:"certificateId"`
	Timestamp      string `json:"timestamp"`
	SupportContact string `json:"supportContact"`
}

// RateLimitedResponse is the 429 body.
type RateLimitedResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter"`
}

// ServerErrorResponse is the body for 5xx and any other failure.
type ServerErrorResponse struct {
	Success        bool   `json:"success"`
	Error          string `json:"error"`
	SupportContact string `json:"supportContact"`
}

// ErrorRenderer turns application errors into HTTP responses.
type ErrorRenderer struct {
	SupportContact string
	Now            func() time.Time
}

// NewErrorRenderer creates a renderer. An empty contact falls back to the default.
func NewErrorRenderer(supportContact string) *ErrorRenderer {
	if supportContact == "" {
		supportContact = constants.DefaultSupportContact
	}
	return &ErrorRenderer{SupportContact: supportContact, Now: time.Now}
}

// Build returns the HTTP status and body for err. Causes are never included.
func (r *ErrorRenderer) Build(err error) (int, interface{}) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.ErrServerError("unexpected error")
	}
	meta := appErr.Metadata()

	switch appErr.Code() {
	case constants.ErrCodeInvalidCertificateFormat, constants.ErrCodeInvalidRequest:
		hint, _ := meta["format_hint"].(string)
		return appErr.HTTPStatus(), FormatErrorResponse{
			Error:      appErr.Description(),
			FormatHint: hint,
		}

	case constants.ErrCodeCertificateNotFound:
		id, _ := meta["certificate_id"].(string)
		return http.StatusNotFound, NotFoundResponse{
			Error:          appErr.Description(),
			CertificateID:  id,
			Timestamp:      FormatTimestamp(r.Now()),
			SupportContact: r.SupportContact,
		}

	case constants.ErrCodeRateLimitExceeded:
		retryAfter, _ := meta["retry_after"].(int)
		return http.StatusTooManyRequests, RateLimitedResponse{
			Error:      appErr.Description(),
			RetryAfter: retryAfter,
		}

	default:
		status := appErr.HTTPStatus()
		if status < http.StatusInternalServerError {
			status = http.StatusInternalServerError
		}
		description := appErr.Description()
		if appErr.Code() != constants.ErrCodeServerError && appErr.Code() != constants.ErrCodeServiceUnavailable {
			description = errors.ErrServerError("").Description()
		}
		return status, ServerErrorResponse{
			Error:          description,
			SupportContact: r.SupportContact,
		}
	}
}

// SendError writes the response for err and aborts the gin chain.
func (r *ErrorRenderer) SendError(c *gin.Context, err error) {
	status, body := r.Build(err)
	if rl, ok := body.(RateLimitedResponse); ok {
		c.Header(constants.HeaderRetryAfter, strconv.Itoa(rl.RetryAfter))
	}
	c.AbortWithStatusJSON(status, body)
}

// SendSuccess writes a JSON success body.
func SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// FormatTimestamp renders t as RFC 3339 UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

//Personal.AI order the ending
