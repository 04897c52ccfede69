package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Service manages a tenant's branding config.
type Service interface {
	// Get returns the tenant's full config, including domain status.
	Get(ctx context.Context, tenantID snowflake.ID) (*BrandingConfig, error)
	// Update applies the fields present in the patch, creating the config on
	// first write. Domain transitions are owned by the custom-domain
	// lifecycle service and are not accepted here.
	Update(ctx context.Context, tenantID snowflake.ID, patch UpdateRequest) (*BrandingConfig, error)
	// Delete removes the tenant's config and evicts all cache entries keyed
	// to it.
	Delete(ctx context.Context, tenantID snowflake.ID) error
}

// UpdateRequest carries a partial update; nil fields are left untouched.
type UpdateRequest struct {
	Enabled           *bool
	BrandName         *string
	FooterText        *string
	SupportEmail      *string
	PrivacyPolicyURL  *string
	TermsOfServiceURL *string
	PrimaryColor      *string
	SecondaryColor    *string
	LogoURL           *string
	FaviconURL        *string
	HideBranding      *bool
	Metadata          map[string]any
}

var (
	ErrInvalidTenant         = errors.New("invalid_tenant")
	ErrInvalidPrimaryColor   = errors.New("invalid_primary_color")
	ErrInvalidSecondaryColor = errors.New("invalid_secondary_color")
	ErrNotFound              = errors.New("not_found")
	// ErrDomainTaken means another tenant already holds the custom domain.
	ErrDomainTaken = errors.New("domain_taken")
)
