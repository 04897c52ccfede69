package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	brandingdomain "github.com/smallbiznis/vanity/internal/branding/domain"
	"github.com/smallbiznis/vanity/internal/tenantctx"
)

type updateBrandingRequest struct {
	Enabled           *bool          `json:"enabled"`
	BrandName         *string        `json:"brand_name"`
	FooterText        *string        `json:"footer_text"`
	SupportEmail      *string        `json:"support_email"`
	PrivacyPolicyURL  *string        `json:"privacy_policy_url"`
	TermsOfServiceURL *string        `json:"terms_of_service_url"`
	PrimaryColor      *string        `json:"primary_color"`
	SecondaryColor    *string        `json:"secondary_color"`
	LogoURL           *string        `json:"logo_url"`
	FaviconURL        *string        `json:"favicon_url"`
	HideBranding      *bool          `json:"hide_branding"`
	Metadata          map[string]any `json:"metadata"`

	// Domain changes ride along on the config update but run through the
	// lifecycle service: a non-empty value binds, an empty string clears.
	CustomDomain *string `json:"custom_domain"`
}

// GetBranding returns the tenant's full branding config, domain state included.
func (s *Server) GetBranding(c *gin.Context) {
	tenantID, ok := tenantctx.TenantIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	cfg, err := s.brandingSvc.Get(c.Request.Context(), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, cfg)
}

// UpdateBranding applies a partial update to the tenant's branding config,
// creating it on first write.
func (s *Server) UpdateBranding(c *gin.Context) {
	tenantID, ok := tenantctx.TenantIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req updateBrandingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if req.CustomDomain != nil {
		if *req.CustomDomain == "" {
			if err := s.domainSvc.ClearDomain(c.Request.Context(), tenantID); err != nil {
				AbortWithError(c, err)
				return
			}
		} else {
			if _, err := s.domainSvc.SetDomain(c.Request.Context(), tenantID, *req.CustomDomain); err != nil {
				AbortWithError(c, err)
				return
			}
		}
	}

	cfg, err := s.brandingSvc.Update(c.Request.Context(), tenantID, brandingdomain.UpdateRequest{
		Enabled:           req.Enabled,
		BrandName:         req.BrandName,
		FooterText:        req.FooterText,
		SupportEmail:      req.SupportEmail,
		PrivacyPolicyURL:  req.PrivacyPolicyURL,
		TermsOfServiceURL: req.TermsOfServiceURL,
		PrimaryColor:      req.PrimaryColor,
		SecondaryColor:    req.SecondaryColor,
		LogoURL:           req.LogoURL,
		FaviconURL:        req.FaviconURL,
		HideBranding:      req.HideBranding,
		Metadata:          req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, cfg)
}

// DeleteBranding removes the tenant's branding config entirely.
func (s *Server) DeleteBranding(c *gin.Context) {
	tenantID, ok := tenantctx.TenantIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if err := s.brandingSvc.Delete(c.Request.Context(), tenantID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
