package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/vanity/internal/customdomain/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.DomainVerification{}))
	return conn
}

func record(id, tenantID int64, d string) *domain.DomainVerification {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	return &domain.DomainVerification{
		ID:            snowflake.ID(id),
		TenantID:      snowflake.ID(tenantID),
		Domain:        d,
		Token:         fmt.Sprintf("tok-%d", id),
		RecordType:    domain.RecordTypeCNAME,
		ExpectedHost:  d,
		ExpectedValue: fmt.Sprintf("%d.branding-proxy.smallbiznis.dev", tenantID),
		RequestedAt:   now,
		ExpiresAt:     now.Add(72 * time.Hour),
	}
}

func TestSaveReplacesPerTenant(t *testing.T) {
	conn := newTestDB(t, "verifications_save")
	repo := NewRepository(conn)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, record(1, 10, "shop.acme.com")))
	require.NoError(t, repo.Save(ctx, record(2, 10, "store.acme.com")))

	got, err := repo.FindByTenant(ctx, snowflake.ID(10))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "store.acme.com", got.Domain)
	assert.Equal(t, "tok-2", got.Token)

	var count int64
	require.NoError(t, conn.Model(&domain.DomainVerification{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "one challenge per tenant")
}

func TestFindMissingTenant(t *testing.T) {
	conn := newTestDB(t, "verifications_missing")
	repo := NewRepository(conn)

	got, err := repo.FindByTenant(context.Background(), snowflake.ID(404))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteIsIdempotent(t *testing.T) {
	conn := newTestDB(t, "verifications_delete")
	repo := NewRepository(conn)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, record(1, 10, "shop.acme.com")))
	require.NoError(t, repo.Delete(ctx, snowflake.ID(10)))
	require.NoError(t, repo.Delete(ctx, snowflake.ID(10)))

	got, err := repo.FindByTenant(ctx, snowflake.ID(10))
	require.NoError(t, err)
	assert.Nil(t, got)
}
