package service

import (
	"context"
	goerrors "errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prismstudio/certverify/internal/application/dto"
	"github.com/prismstudio/certverify/internal/domain/models"
	domainservice "github.com/prismstudio/certverify/internal/domain/service"
	"github.com/prismstudio/certverify/internal/infrastructure/monitoring"
	"github.com/prismstudio/certverify/pkg/constants"
	"github.com/prismstudio/certverify/pkg/errors"
	"github.com/prismstudio/certverify/pkg/logger"
)

// Mock implementations for dependencies
type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) CheckAndRecord(ctx context.Context, clientAddress, endpoint string) domainservice.RateLimitDecision {
	args := m.Called(ctx, clientAddress, endpoint)
	return args.Get(0).(domainservice.RateLimitDecision)
}

type MockCertificateRepo struct {
	mock.Mock
}

func (m *MockCertificateRepo) FindActiveByCertificateID(ctx context.Context, certificateID string) (*models.Certificate, error) {
	args := m.Called(ctx, certificateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Certificate), args.Error(1)
}

type MockVerificationLogRepo struct {
	mock.Mock
}

func (m *MockVerificationLogRepo) Append(ctx context.Context, entry *models.VerificationLog) error {
	return m.Called(ctx, entry).Error(0)
}

type fixedHasher string

func (h fixedHasher) Hash(cert *models.Certificate, at time.Time) string { return string(h) }

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	limiter *MockRateLimiter
	certs   *MockCertificateRepo
	logs    *MockVerificationLogRepo
	metrics *monitoring.Metrics
	svc     VerificationAppService
}

func newFixture() *fixture {
	f := &fixture{
		limiter: new(MockRateLimiter),
		certs:   new(MockCertificateRepo),
		logs:    new(MockVerificationLogRepo),
		metrics: monitoring.NewMetrics(prometheus.NewRegistry()),
	}
	f.svc = NewVerificationAppService(
		f.limiter, f.certs, f.logs, fixedHasher("deadbeef"),
		DefaultIssuerInfo(),
		func() time.Time { return testNow },
		f.metrics,
		logger.NewNoopLogger(),
	)
	return f
}

func (f *fixture) allow() {
	f.limiter.On("CheckAndRecord", mock.Anything, "203.0.113.42", constants.EndpointCertificateVerify).
		Return(domainservice.RateLimitDecision{Allowed: true, Count: 1})
}

func logWith(reason constants.VerificationReason, id string) interface{} {
	return mock.MatchedBy(func(e *models.VerificationLog) bool {
		return e.Reason == reason && e.CertificateID == id && e.IPAddress == "203.0.113.42" &&
			e.Success == (reason == constants.ReasonVerified)
	})
}

func request(id string) *dto.VerifyCertificateRequest {
	return &dto.VerifyCertificateRequest{CertificateID: id, ClientIP: "203.0.113.42", UserAgent: "curl/8.4"}
}

func activeCertificate(validUntil *time.Time) *models.Certificate {
	return &models.Certificate{
		CertificateID:   "PS2506DS148",
		StudentID:       "STU-42",
		HolderName:      "Asha Verma",
		Domain:          "DS",
		IssueDate:       time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC),
		CompletionDate:  time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:      validUntil,
		Skills:          []string{"Python", "SQL"},
		Grade:           "A+",
		IsActive:        true,
		CertificateHash: "stored",
	}
}

func TestVerifyCertificate_Success(t *testing.T) {
	f := newFixture()
	f.allow()
	validUntil := testNow.Add(36 * time.Hour)
	f.certs.On("FindActiveByCertificateID", mock.Anything, "PS2506DS148").Return(activeCertificate(&validUntil), nil)
	f.logs.On("Append", mock.Anything, logWith(constants.ReasonVerified, "PS2506DS148")).Return(nil).Once()

	resp, err := f.svc.VerifyCertificate(context.Background(), request("PS2506DS148"))
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "PS2506DS148", resp.Certificate.CertificateID)
	assert.Equal(t, "Data Science", resp.Certificate.Domain)
	assert.Equal(t, "DS", resp.Certificate.DomainCode)
	assert.Equal(t, "June 2025 - Data Science", resp.Certificate.Cohort)
	assert.Equal(t, "2025-08-10", resp.Certificate.IssueDate)
	assert.False(t, resp.Certificate.IsExpired)
	require.NotNil(t, resp.Certificate.DaysUntilExpiry)
	assert.Equal(t, 2, *resp.Certificate.DaysUntilExpiry)
	assert.Equal(t, []string{"Python", "SQL"}, resp.Certificate.Skills)

	assert.Equal(t, "203.0.113.xxx", resp.VerificationDetails.ClientIP)
	assert.Equal(t, "deadbeef", resp.VerificationDetails.VerificationHash)
	assert.Equal(t, "verified", resp.VerificationDetails.Status)
	assert.Equal(t, "2026-03-01T12:00:00.000Z", resp.Timestamp)
	assert.Equal(t, constants.IssuerName, resp.Issuer.Name)

	f.logs.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.VerificationRequests.WithLabelValues("verified")))
}

func TestVerifyCertificate_Expired(t *testing.T) {
	f := newFixture()
	f.allow()
	validUntil := testNow.Add(-24 * time.Hour)
	f.certs.On("FindActiveByCertificateID", mock.Anything, "PS2506DS148").Return(activeCertificate(&validUntil), nil)
	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.VerifyCertificate(context.Background(), request("PS2506DS148"))
	require.NoError(t, err)
	assert.True(t, resp.Certificate.IsExpired)
	assert.Equal(t, -1, *resp.Certificate.DaysUntilExpiry)
}

func TestVerifyCertificate_NoExpiry(t *testing.T) {
	f := newFixture()
	f.allow()
	f.certs.On("FindActiveByCertificateID", mock.Anything, "PS2506DS148").Return(activeCertificate(nil), nil)
	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.VerifyCertificate(context.Background(), request("PS2506DS148"))
	require.NoError(t, err)
	assert.False(t, resp.Certificate.IsExpired)
	assert.Nil(t, resp.Certificate.ValidUntil)
	assert.Nil(t, resp.Certificate.DaysUntilExpiry)
}

func TestVerifyCertificate_NotFoundLogsOneFailure(t *testing.T) {
	f := newFixture()
	f.allow()
	f.certs.On("FindActiveByCertificateID", mock.Anything, "PS2506ZZ999").
		Return(nil, errors.ErrCertificateNotFound("PS2506ZZ999"))
	f.logs.On("Append", mock.Anything, logWith(constants.ReasonNotFound, "PS2506ZZ999")).Return(nil).Once()

	_, err := f.svc.VerifyCertificate(context.Background(), request("PS2506ZZ999"))
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.HTTPStatus())
	assert.Equal(t, "PS2506ZZ999", appErr.Metadata()["certificate_id"])
	f.logs.AssertNumberOfCalls(t, "Append", 1)
}

func TestVerifyCertificate_InvalidFormatSkipsLookup(t *testing.T) {
	f := newFixture()
	f.allow()
	f.logs.On("Append", mock.Anything, logWith(constants.ReasonInvalidFormat, "XX123")).Return(nil).Once()

	_, err := f.svc.VerifyCertificate(context.Background(), request("XX123"))
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, constants.ErrCodeInvalidCertificateFormat, appErr.Code())
	assert.Equal(t, constants.CertificateIDFormatHint, appErr.Metadata()["format_hint"])

	f.certs.AssertNotCalled(t, "FindActiveByCertificateID", mock.Anything, mock.Anything)
	f.logs.AssertExpectations(t)
}

func TestVerifyCertificate_NormalizesBeforeLookup(t *testing.T) {
	f := newFixture()
	f.allow()
	f.certs.On("FindActiveByCertificateID", mock.Anything, "PS2506DS148").Return(activeCertificate(nil), nil)
	f.logs.On("Append", mock.Anything, logWith(constants.ReasonVerified, " ps2506ds148 ")).Return(nil)

	_, err := f.svc.VerifyCertificate(context.Background(), request(" ps2506ds148 "))
	require.NoError(t, err)
}

func TestVerifyCertificate_RateLimitedWritesNoLog(t *testing.T) {
	f := newFixture()
	f.limiter.On("CheckAndRecord", mock.Anything, "203.0.113.42", constants.EndpointCertificateVerify).
		Return(domainservice.RateLimitDecision{Allowed: false, Count: 11, RetryAfter: 90500 * time.Millisecond})

	_, err := f.svc.VerifyCertificate(context.Background(), request("PS2506DS148"))
	require.True(t, errors.IsRateLimitError(err))

	appErr, _ := errors.AsAppError(err)
	assert.Equal(t, 91, appErr.Metadata()["retry_after"])
	f.logs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	f.certs.AssertNotCalled(t, "FindActiveByCertificateID", mock.Anything, mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RateLimitDecisions.WithLabelValues("denied")))
}

func TestVerifyCertificate_LookupErrorIsGeneric(t *testing.T) {
	f := newFixture()
	f.allow()
	f.certs.On("FindActiveByCertificateID", mock.Anything, "PS2506DS148").
		Return(nil, goerrors.New("dial tcp 10.0.0.5:5432: connection refused"))
	f.logs.On("Append", mock.Anything, logWith(constants.ReasonLookupError, "PS2506DS148")).Return(nil).Once()

	_, err := f.svc.VerifyCertificate(context.Background(), request("PS2506DS148"))
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus())
	assert.NotContains(t, appErr.Description(), "10.0.0.5")
	f.logs.AssertExpectations(t)
}

func TestVerifyCertificate_LogWriteFailureIsSwallowed(t *testing.T) {
	f := newFixture()
	f.allow()
	f.certs.On("FindActiveByCertificateID", mock.Anything, "PS2506DS148").Return(activeCertificate(nil), nil)
	f.logs.On("Append", mock.Anything, mock.Anything).Return(goerrors.New("disk full"))

	resp, err := f.svc.VerifyCertificate(context.Background(), request("PS2506DS148"))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.LogWriteFailures))
}

func TestVerifyCertificate_FailOpenProceeds(t *testing.T) {
	f := newFixture()
	f.limiter.On("CheckAndRecord", mock.Anything, constants.DefaultClientAddress, constants.EndpointCertificateVerify).
		Return(domainservice.RateLimitDecision{Allowed: true, FailedOpen: true})
	f.certs.On("FindActiveByCertificateID", mock.Anything, "PS2506DS148").Return(activeCertificate(nil), nil)
	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.VerifyCertificate(context.Background(), &dto.VerifyCertificateRequest{CertificateID: "PS2506DS148"})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.xxx", resp.VerificationDetails.ClientIP)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RateLimitDecisions.WithLabelValues("failed_open")))
}
