package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Repository is the persistence contract for branding configs.
type Repository interface {
	// FindByTenant returns the tenant's config regardless of enabled state,
	// or nil when the tenant has none.
	FindByTenant(ctx context.Context, tenantID snowflake.ID) (*BrandingConfig, error)
	// FindByDomain returns the enabled config bound to the normalized domain,
	// or nil. Disabled tenants never resolve by domain.
	FindByDomain(ctx context.Context, domain string) (*BrandingConfig, error)
	// Upsert writes the record, keyed on tenant_id. On conflict only the named
	// columns are assigned, so concurrent writers touching disjoint fields do
	// not clobber each other; no columns means write everything. A
	// custom_domain held by another tenant surfaces as ErrDomainTaken.
	Upsert(ctx context.Context, cfg *BrandingConfig, columns ...string) error
	// Delete removes the tenant's config. Deleting a missing row is not an error.
	Delete(ctx context.Context, tenantID snowflake.ID) error
}

// ResolverInvalidator evicts resolver cache entries after a store mutation.
// Implemented by the branding resolver cache; every successful write or
// delete must invalidate both the tenant key and any affected domain keys
// before the operation returns.
type ResolverInvalidator interface {
	InvalidateTenant(tenantID snowflake.ID)
	InvalidateDomain(domain string)
}
