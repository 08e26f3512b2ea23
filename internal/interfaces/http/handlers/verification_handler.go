package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prismstudio/certverify/internal/application/dto"
	"github.com/prismstudio/certverify/internal/application/service"
	"github.com/prismstudio/certverify/pkg/constants"
	"github.com/prismstudio/certverify/pkg/errors"
	"github.com/prismstudio/certverify/pkg/logger"
	"github.com/prismstudio/certverify/pkg/utils"
)

// VerificationHandler handles HTTP requests for certificate verification.
type VerificationHandler struct {
	verificationService service.VerificationAppService
	renderer            *dto.ErrorRenderer
	logger              logger.Logger
}

// NewVerificationHandler creates a new VerificationHandler.
func NewVerificationHandler(verificationService service.VerificationAppService, renderer *dto.ErrorRenderer, log logger.Logger) *VerificationHandler {
	return &VerificationHandler{
		verificationService: verificationService,
		renderer:            renderer,
		logger:              log.WithComponent("verification_handler"),
	}
}

// VerifyPost handles POST /api/v1/certificates/verify with a JSON body.
// A body that cannot be bound is treated as an empty identifier, which still counts
// against the rate limit and is logged as a format failure.
func (h *VerificationHandler) VerifyPost(c *gin.Context) {
	var req dto.VerifyCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug(c.Request.Context(), "Unreadable verification body", logger.Err(err))
		req = dto.VerifyCertificateRequest{}
	}
	h.verify(c, &req)
}

// VerifyGet handles GET /api/v1/certificates/verify?certificate_id=... (alias id).
func (h *VerificationHandler) VerifyGet(c *gin.Context) {
	id := c.Query("certificate_id")
	if id == "" {
		id = c.Query("id")
	}
	h.verify(c, &dto.VerifyCertificateRequest{CertificateID: id})
}

func (h *VerificationHandler) verify(c *gin.Context, req *dto.VerifyCertificateRequest) {
	req.ClientIP = utils.ResolveClientAddress(
		c.GetHeader(constants.HeaderForwardedFor),
		c.GetHeader(constants.HeaderRealIP),
	)
	req.UserAgent = c.GetHeader(constants.HeaderUserAgent)

	result, err := h.verificationService.VerifyCertificate(c.Request.Context(), req)
	if err != nil {
		if errors.ShouldLogError(err) {
			h.logger.Error(c.Request.Context(), "Verification request failed", err,
				logger.String("client_ip", req.ClientIP),
			)
		}
		h.renderer.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, result)
}

//Personal.AI order the ending
