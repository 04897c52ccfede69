package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Repository is the persistence contract for verification records.
type Repository interface {
	// FindByTenant returns the tenant's verification record, or nil.
	FindByTenant(ctx context.Context, tenantID snowflake.ID) (*DomainVerification, error)
	// Save upserts the record, keyed on tenant_id.
	Save(ctx context.Context, v *DomainVerification) error
	// Delete removes the tenant's record. Missing rows are not an error.
	Delete(ctx context.Context, tenantID snowflake.ID) error
}
