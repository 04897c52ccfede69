// Package domain contains persistence models for the branding service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// DomainStatus tracks where a tenant's custom domain sits in its lifecycle.
type DomainStatus string

const (
	DomainStatusNone    DomainStatus = "NONE"
	DomainStatusPending DomainStatus = "PENDING"
	DomainStatusActive  DomainStatus = "ACTIVE"
	DomainStatusFailed  DomainStatus = "FAILED"
)

// BrandingConfig holds one tenant's white-label configuration. At most one
// row exists per tenant; custom_domain is globally unique across tenants and
// always stored in normalized form.
type BrandingConfig struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID snowflake.ID `gorm:"not null;uniqueIndex:ux_branding_configs_tenant" json:"tenant_id"`
	Enabled  bool         `gorm:"not null;default:false" json:"enabled"`

	BrandName         string `gorm:"type:text" json:"brand_name"`
	FooterText        string `gorm:"type:text" json:"footer_text"`
	SupportEmail      string `gorm:"type:text" json:"support_email"`
	PrivacyPolicyURL  string `gorm:"type:text" json:"privacy_policy_url"`
	TermsOfServiceURL string `gorm:"type:text" json:"terms_of_service_url"`

	PrimaryColor   string `gorm:"type:text" json:"primary_color"`
	SecondaryColor string `gorm:"type:text" json:"secondary_color"`

	// Opaque references to externally stored assets; never fetched here.
	LogoURL    string `gorm:"type:text" json:"logo_url"`
	FaviconURL string `gorm:"type:text" json:"favicon_url"`

	CustomDomain *string      `gorm:"type:text;uniqueIndex:ux_branding_configs_domain" json:"custom_domain"`
	DomainStatus DomainStatus `gorm:"type:text;not null;default:'NONE'" json:"domain_status"`

	HideBranding bool              `gorm:"not null;default:false" json:"hide_branding"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (BrandingConfig) TableName() string { return "branding_configs" }

// Domain returns the bound custom domain, or "" when none is set.
func (c *BrandingConfig) Domain() string {
	if c == nil || c.CustomDomain == nil {
		return ""
	}
	return *c.CustomDomain
}
