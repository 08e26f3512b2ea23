// Package service provides application-level services that orchestrate domain services and repositories
package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/prismstudio/certverify/internal/application/dto"
	"github.com/prismstudio/certverify/internal/domain/models"
	"github.com/prismstudio/certverify/internal/domain/repository"
	domainService "github.com/prismstudio/certverify/internal/domain/service"
	"github.com/prismstudio/certverify/internal/infrastructure/monitoring"
	"github.com/prismstudio/certverify/pkg/certid"
	"github.com/prismstudio/certverify/pkg/constants"
	"github.com/prismstudio/certverify/pkg/errors"
	"github.com/prismstudio/certverify/pkg/logger"
	"github.com/prismstudio/certverify/pkg/utils"
)

// VerificationAppService verifies certificates on behalf of anonymous callers.
type VerificationAppService interface {
	// VerifyCertificate runs rate check, format check, lookup and enrichment in that order,
	// stopping at the first rejecting step. Every attempt that passes the rate check is logged.
	VerifyCertificate(ctx context.Context, req *dto.VerifyCertificateRequest) (*dto.VerifyCertificateResponse, error)
}

// IssuerInfo is echoed in every successful response.
type IssuerInfo struct {
	Name           string
	Website        string
	SupportContact string
}

// DefaultIssuerInfo returns the built-in issuer identity.
func DefaultIssuerInfo() IssuerInfo {
	return IssuerInfo{
		Name:           constants.IssuerName,
		Website:        constants.IssuerWebsite,
		SupportContact: constants.DefaultSupportContact,
	}
}

// verificationAppServiceImpl is the concrete implementation of VerificationAppService
type verificationAppServiceImpl struct {
	limiter  domainService.RateLimiter
	certRepo repository.CertificateRepository
	logRepo  repository.VerificationLogRepository
	hasher   domainService.VerificationHasher
	issuer   IssuerInfo
	now      domainService.Clock
	metrics  *monitoring.Metrics
	logger   logger.Logger
}

// NewVerificationAppService creates a new instance of VerificationAppService
func NewVerificationAppService(
	limiter domainService.RateLimiter,
	certRepo repository.CertificateRepository,
	logRepo repository.VerificationLogRepository,
	hasher domainService.VerificationHasher,
	issuer IssuerInfo,
	clock domainService.Clock,
	metrics *monitoring.Metrics,
	log logger.Logger,
) VerificationAppService {
	if clock == nil {
		clock = time.Now
	}
	return &verificationAppServiceImpl{
		limiter:  limiter,
		certRepo: certRepo,
		logRepo:  logRepo,
		hasher:   hasher,
		issuer:   issuer,
		now:      clock,
		metrics:  metrics,
		logger:   log.WithComponent("verification_service"),
	}
}

// VerifyCertificate implements VerificationAppService
func (s *verificationAppServiceImpl) VerifyCertificate(ctx context.Context, req *dto.VerifyCertificateRequest) (*dto.VerifyCertificateResponse, error) {
	start := s.now()
	ctx, span := otel.Tracer(constants.ServiceName).Start(ctx, "VerificationAppService.VerifyCertificate")
	defer span.End()

	clientIP := req.ClientIP
	if clientIP == "" {
		clientIP = constants.DefaultClientAddress
	}
	span.SetAttributes(attribute.String("certificate_id", req.CertificateID))

	// Step 1: rate check
	decision := s.limiter.CheckAndRecord(ctx, clientIP, constants.EndpointCertificateVerify)
	s.metrics.RecordRateLimitDecision(decision)
	if !decision.Allowed {
		s.logger.Warn(ctx, "Verification rejected by rate limiter",
			logger.String("client_ip", clientIP),
			logger.Int("count", decision.Count),
			logger.Duration("retry_after", decision.RetryAfter),
		)
		span.SetStatus(codes.Error, "rate limited")
		return nil, errors.ErrRateLimitExceeded(constants.EndpointCertificateVerify, decision.RetryAfter)
	}

	// Step 2: format check
	if !certid.IsValidFormat(req.CertificateID) {
		s.recordAttempt(ctx, req, clientIP, constants.ReasonInvalidFormat, start)
		return nil, errors.ErrInvalidCertificateFormat(req.CertificateID)
	}
	certificateID := certid.Normalize(req.CertificateID)

	// Step 3: lookup
	cert, err := s.certRepo.FindActiveByCertificateID(ctx, certificateID)
	if err != nil {
		if errors.IsNotFoundError(err) {
			s.recordAttempt(ctx, req, clientIP, constants.ReasonNotFound, start)
			s.logger.Info(ctx, "Certificate not found",
				logger.String("certificate_id", certificateID),
				logger.String("client_ip", clientIP),
			)
			return nil, errors.ErrCertificateNotFound(certificateID)
		}

		s.logger.Error(ctx, "Certificate lookup failed", err,
			logger.String("certificate_id", certificateID),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		s.recordAttempt(ctx, req, clientIP, constants.ReasonLookupError, start)
		return nil, errors.ErrServerError("certificate lookup failed").WithCause(err)
	}

	// Step 4: enrich
	now := s.now()
	resp := s.buildResponse(cert, clientIP, now)

	// Step 5: log success
	s.recordAttempt(ctx, req, clientIP, constants.ReasonVerified, start)
	s.logger.Info(ctx, "Certificate verified",
		logger.String("certificate_id", cert.CertificateID),
		logger.Bool("is_expired", resp.Certificate.IsExpired),
	)
	return resp, nil
}

// recordAttempt appends a log entry. Write failures are logged and counted, never returned.
func (s *verificationAppServiceImpl) recordAttempt(
	ctx context.Context,
	req *dto.VerifyCertificateRequest,
	clientIP string,
	reason constants.VerificationReason,
	start time.Time,
) {
	s.metrics.RecordVerification(reason, s.now().Sub(start))

	entry := models.NewVerificationLog(req.CertificateID, clientIP, req.UserAgent, reason)
	if err := s.logRepo.Append(ctx, entry); err != nil {
		s.metrics.RecordLogWriteFailure()
		s.logger.Error(ctx, "Failed to write verification log", err,
			logger.String("certificate_id", req.CertificateID),
			logger.String("reason", string(reason)),
		)
	}
}

func (s *verificationAppServiceImpl) buildResponse(cert *models.Certificate, clientIP string, now time.Time) *dto.VerifyCertificateResponse {
	domainCode := cert.DomainCode()
	cohort, _ := certid.CohortLabel(cert.CertificateID)

	skills := cert.Skills
	if skills == nil {
		skills = []string{}
	}

	certDTO := dto.CertificateDTO{
		CertificateID:  cert.CertificateID,
		HolderName:     cert.HolderName,
		StudentID:      cert.StudentID,
		Domain:         certid.DomainName(domainCode),
		DomainCode:     domainCode,
		Cohort:         cohort,
		IssueDate:      utils.FormatDate(cert.IssueDate),
		CompletionDate: utils.FormatDate(cert.CompletionDate),
		Skills:         skills,
		Grade:          cert.Grade,
		IsExpired:      cert.IsExpired(now),
	}
	if cert.ValidUntil != nil {
		certDTO.ValidUntil = utils.StringPtr(utils.FormatDate(*cert.ValidUntil))
		certDTO.DaysUntilExpiry = utils.IntPtr(utils.CeilDays(cert.ValidUntil.Sub(now)))
	}

	timestamp := dto.FormatTimestamp(now)
	return &dto.VerifyCertificateResponse{
		Success:     true,
		Certificate: certDTO,
		VerificationDetails: dto.VerificationDetailsDTO{
			VerifiedAt:       timestamp,
			VerificationHash: s.hasher.Hash(cert, now),
			ClientIP:         utils.MaskIPAddress(clientIP),
			Method:           constants.VerificationMethod,
			Status:           string(constants.ReasonVerified),
		},
		Issuer: dto.IssuerDTO{
			Name:           s.issuer.Name,
			Website:        s.issuer.Website,
			SupportContact: s.issuer.SupportContact,
		},
		Timestamp: timestamp,
	}
}

//Personal.AI order the ending
