// Package seed bootstraps a default tenant so local and self-hosted
// deployments are usable without manual provisioning.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	tenantdomain "github.com/smallbiznis/vanity/internal/tenant/domain"
	"gorm.io/gorm"
)

const (
	defaultTenantName = "Main"
	defaultTenantSlug = "main"
	// Development credential only; rotate before exposing the service.
	defaultAPIKey     = "vanity_dev_key"
	defaultAPIKeyName = "bootstrap"
)

// EnsureDefaultTenant seeds the default tenant and its bootstrap API key.
// Idempotent: re-running against a seeded database changes nothing.
func EnsureDefaultTenant(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tenant, err := ensureTenantTx(ctx, tx, node)
		if err != nil {
			return err
		}
		return ensureAPIKeyTx(ctx, tx, node, tenant.ID)
	})
}

func ensureTenantTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (tenantdomain.Tenant, error) {
	var tenant tenantdomain.Tenant
	err := tx.WithContext(ctx).Where("slug = ?", defaultTenantSlug).First(&tenant).Error
	if err == nil {
		return tenant, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return tenant, err
	}
	now := time.Now().UTC()
	tenant = tenantdomain.Tenant{
		ID:        node.Generate(),
		Name:      defaultTenantName,
		Slug:      defaultTenantSlug,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&tenant).Error; err != nil {
		return tenant, err
	}
	return tenant, nil
}

func ensureAPIKeyTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, tenantID snowflake.ID) error {
	hash := tenantdomain.HashAPIKey(defaultAPIKey)

	var key tenantdomain.APIKey
	err := tx.WithContext(ctx).Where("key_hash = ?", hash).First(&key).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	key = tenantdomain.APIKey{
		ID:        node.Generate(),
		TenantID:  tenantID,
		Name:      defaultAPIKeyName,
		KeyHash:   hash,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	return tx.WithContext(ctx).Create(&key).Error
}
