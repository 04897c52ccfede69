package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var ErrInvalidAPIKey = errors.New("invalid_api_key")

// Repository is the persistence contract for tenants and their API keys.
type Repository interface {
	// FindByID returns the tenant, or nil when it does not exist.
	FindByID(ctx context.Context, id snowflake.ID) (*Tenant, error)
	// FindBySlug returns the tenant with the given slug, or nil.
	FindBySlug(ctx context.Context, slug string) (*Tenant, error)
	// Create inserts a new tenant.
	Create(ctx context.Context, t *Tenant) error

	// FindTenantByKeyHash resolves an API key hash to its active tenant.
	// Returns ErrInvalidAPIKey for unknown, inactive or expired keys.
	FindTenantByKeyHash(ctx context.Context, hash string, now time.Time) (*Tenant, error)
	// CreateAPIKey inserts a new key record.
	CreateAPIKey(ctx context.Context, k *APIKey) error
}
