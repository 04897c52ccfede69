package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	brandingdomain "github.com/smallbiznis/vanity/internal/branding/domain"
	"github.com/smallbiznis/vanity/internal/tenantctx"
)

// themeResponse is the public, unauthenticated subset of a branding config.
// Internal fields (tenant identity, domain lifecycle, metadata) never leave
// the authenticated surface.
type themeResponse struct {
	BrandName         string `json:"brand_name"`
	HeaderText        string `json:"header_text"`
	FooterText        string `json:"footer_text"`
	SupportEmail      string `json:"support_email"`
	PrivacyPolicyURL  string `json:"privacy_policy_url"`
	TermsOfServiceURL string `json:"terms_of_service_url"`
	PrimaryColor      string `json:"primary_color"`
	SecondaryColor    string `json:"secondary_color"`
	LogoURL           string `json:"logo_url"`
	FaviconURL        string `json:"favicon_url"`
	HideBranding      bool   `json:"hide_branding"`
	Custom            bool   `json:"custom"`
}

// GetTheme serves the theme for the request host. Unbranded hosts and
// resolution failures both land here with no resolved config and get the
// default theme, so the page always renders.
func (s *Server) GetTheme(c *gin.Context) {
	resolved, ok := tenantctx.ResolvedFromContext(c.Request.Context())
	if !ok || resolved.Config == nil || !resolved.Config.Enabled {
		c.JSON(http.StatusOK, defaultTheme())
		return
	}

	c.JSON(http.StatusOK, themeFromConfig(resolved.Config))
}

func themeFromConfig(cfg *brandingdomain.BrandingConfig) themeResponse {
	return themeResponse{
		BrandName:         cfg.BrandName,
		HeaderText:        cfg.BrandName,
		FooterText:        cfg.FooterText,
		SupportEmail:      cfg.SupportEmail,
		PrivacyPolicyURL:  cfg.PrivacyPolicyURL,
		TermsOfServiceURL: cfg.TermsOfServiceURL,
		PrimaryColor:      cfg.PrimaryColor,
		SecondaryColor:    cfg.SecondaryColor,
		LogoURL:           cfg.LogoURL,
		FaviconURL:        cfg.FaviconURL,
		HideBranding:      cfg.HideBranding,
		Custom:            true,
	}
}

func defaultTheme() themeResponse {
	return themeResponse{Custom: false}
}
