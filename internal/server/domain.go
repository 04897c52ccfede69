package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	brandingdomain "github.com/smallbiznis/vanity/internal/branding/domain"
	"github.com/smallbiznis/vanity/internal/tenantctx"
	"go.uber.org/zap"
)

// Verification attempts hit external DNS, so they are the one surface worth
// throttling per tenant.
const (
	verifyRatePerSecond = 0.2
	verifyBurst         = 5
)

type setDomainRequest struct {
	Domain string `json:"domain"`
}

type setDomainResponse struct {
	Domain        string    `json:"domain"`
	DomainStatus  string    `json:"domain_status"`
	RecordType    string    `json:"record_type"`
	ExpectedHost  string    `json:"expected_host"`
	ExpectedValue string    `json:"expected_value"`
	Token         string    `json:"token"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// SetDomain binds a custom domain to the tenant and returns the DNS record
// the tenant must publish before verification can succeed.
func (s *Server) SetDomain(c *gin.Context) {
	tenantID, ok := tenantctx.TenantIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req setDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	verification, err := s.domainSvc.SetDomain(c.Request.Context(), tenantID, req.Domain)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, setDomainResponse{
		Domain:        verification.Domain,
		DomainStatus:  string(brandingdomain.DomainStatusPending),
		RecordType:    verification.RecordType,
		ExpectedHost:  verification.ExpectedHost,
		ExpectedValue: verification.ExpectedValue,
		Token:         verification.Token,
		ExpiresAt:     verification.ExpiresAt,
	})
}

// VerifyDomain runs one DNS verification attempt for the tenant's pending
// domain and reports the resulting state.
func (s *Server) VerifyDomain(c *gin.Context) {
	tenantID, ok := tenantctx.TenantIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	result, err := s.verifyLimiter.Allow(
		c.Request.Context(),
		"vanity:verify-rate:"+tenantID.String(),
		verifyRatePerSecond,
		verifyBurst,
	)
	if err != nil {
		// Limiter outage must not take verification down with it.
		s.log.Warn("verify rate limiter unavailable", zap.Error(err))
	} else if !result.Allowed {
		AbortWithError(c, ErrTooManyRequest)
		return
	}

	verifyResult, err := s.domainSvc.VerifyDomain(c.Request.Context(), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, verifyResult)
}

// ClearDomain unbinds the tenant's custom domain. Idempotent.
func (s *Server) ClearDomain(c *gin.Context) {
	tenantID, ok := tenantctx.TenantIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if err := s.domainSvc.ClearDomain(c.Request.Context(), tenantID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
