package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vanity/internal/branding/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type repoStub struct {
	byTenant    map[snowflake.ID]*domain.BrandingConfig
	lastColumns []string
	upserts     int
}

func newRepoStub() *repoStub {
	return &repoStub{byTenant: map[snowflake.ID]*domain.BrandingConfig{}}
}

func (s *repoStub) FindByTenant(ctx context.Context, tenantID snowflake.ID) (*domain.BrandingConfig, error) {
	cfg, ok := s.byTenant[tenantID]
	if !ok {
		return nil, nil
	}
	clone := *cfg
	return &clone, nil
}

func (s *repoStub) FindByDomain(ctx context.Context, d string) (*domain.BrandingConfig, error) {
	for _, cfg := range s.byTenant {
		if cfg.Enabled && cfg.Domain() == d {
			clone := *cfg
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *repoStub) Upsert(ctx context.Context, cfg *domain.BrandingConfig, columns ...string) error {
	s.upserts++
	s.lastColumns = columns
	clone := *cfg
	s.byTenant[cfg.TenantID] = &clone
	return nil
}

func (s *repoStub) Delete(ctx context.Context, tenantID snowflake.ID) error {
	delete(s.byTenant, tenantID)
	return nil
}

type invalidatorStub struct {
	tenants []snowflake.ID
	domains []string
}

func (i *invalidatorStub) InvalidateTenant(tenantID snowflake.ID) {
	i.tenants = append(i.tenants, tenantID)
}

func (i *invalidatorStub) InvalidateDomain(d string) {
	i.domains = append(i.domains, d)
}

type fixture struct {
	svc   domain.Service
	repo  *repoStub
	inval *invalidatorStub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	f := &fixture{
		repo:  newRepoStub(),
		inval: &invalidatorStub{},
	}
	f.svc = New(Params{
		Log:         zap.NewNop(),
		GenID:       node,
		Repo:        f.repo,
		Invalidator: f.inval,
	})
	return f
}

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }

func TestUpdateRejectsMalformedColors(t *testing.T) {
	f := newFixture(t)

	for _, raw := range []string{"#zz0000", "ff5500", "#ff55", "#ff5500aa", "red"} {
		_, err := f.svc.Update(context.Background(), snowflake.ID(42), domain.UpdateRequest{
			PrimaryColor: strptr(raw),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidPrimaryColor, "input %q", raw)
	}

	_, err := f.svc.Update(context.Background(), snowflake.ID(42), domain.UpdateRequest{
		SecondaryColor: strptr("#zz0000"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSecondaryColor)

	assert.Zero(t, f.repo.upserts, "a rejected patch must not reach the store")
}

func TestUpdateAcceptsShortAndLongHex(t *testing.T) {
	f := newFixture(t)

	cfg, err := f.svc.Update(context.Background(), snowflake.ID(42), domain.UpdateRequest{
		PrimaryColor:   strptr("#f50"),
		SecondaryColor: strptr("#112233"),
	})
	require.NoError(t, err)
	assert.Equal(t, "#f50", cfg.PrimaryColor)
	assert.Equal(t, "#112233", cfg.SecondaryColor)
}

func TestUpdateLazilyCreatesConfig(t *testing.T) {
	f := newFixture(t)

	cfg, err := f.svc.Update(context.Background(), snowflake.ID(42), domain.UpdateRequest{
		BrandName: strptr("Acme"),
	})
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.NotZero(t, cfg.ID)
	assert.Equal(t, snowflake.ID(42), cfg.TenantID)
	assert.False(t, cfg.Enabled, "branding starts disabled until explicitly enabled")
	assert.Equal(t, domain.DomainStatusNone, cfg.DomainStatus)
	assert.Nil(t, cfg.CustomDomain)
	assert.Equal(t, "Acme", cfg.BrandName)
}

func TestUpdateAppliesOnlyPatchedFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Update(context.Background(), snowflake.ID(42), domain.UpdateRequest{
		Enabled:      boolptr(true),
		BrandName:    strptr("Acme"),
		PrimaryColor: strptr("#ff5500"),
	})
	require.NoError(t, err)

	cfg, err := f.svc.Update(context.Background(), snowflake.ID(42), domain.UpdateRequest{
		FooterText: strptr("All rights reserved"),
	})
	require.NoError(t, err)

	assert.Equal(t, "All rights reserved", cfg.FooterText)
	assert.Equal(t, "Acme", cfg.BrandName)
	assert.Equal(t, "#ff5500", cfg.PrimaryColor)
	assert.True(t, cfg.Enabled)
}

func TestUpdateScopesWriteToPatchedColumns(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Update(context.Background(), snowflake.ID(42), domain.UpdateRequest{
		BrandName:    strptr("Acme"),
		HideBranding: boolptr(true),
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"brand_name", "hide_branding", "updated_at"}, f.repo.lastColumns)
	assert.NotContains(t, f.repo.lastColumns, "custom_domain")
	assert.NotContains(t, f.repo.lastColumns, "domain_status")
}

func TestUpdateInvalidatesBothCacheKeys(t *testing.T) {
	f := newFixture(t)
	f.repo.byTenant[snowflake.ID(42)] = &domain.BrandingConfig{
		ID:           snowflake.ID(1),
		TenantID:     snowflake.ID(42),
		Enabled:      true,
		CustomDomain: strptr("shop.acme.com"),
		DomainStatus: domain.DomainStatusActive,
	}

	_, err := f.svc.Update(context.Background(), snowflake.ID(42), domain.UpdateRequest{
		BrandName: strptr("Acme"),
	})
	require.NoError(t, err)

	assert.Contains(t, f.inval.tenants, snowflake.ID(42))
	assert.Contains(t, f.inval.domains, "shop.acme.com")
}

func TestUpdateRejectsZeroTenant(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Update(context.Background(), snowflake.ID(0), domain.UpdateRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidTenant)
}

func TestGetMissingConfig(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Get(context.Background(), snowflake.ID(42))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Get(context.Background(), snowflake.ID(0))
	assert.ErrorIs(t, err, domain.ErrInvalidTenant)
}

func TestDeleteEvictsDomainKey(t *testing.T) {
	f := newFixture(t)
	f.repo.byTenant[snowflake.ID(42)] = &domain.BrandingConfig{
		ID:           snowflake.ID(1),
		TenantID:     snowflake.ID(42),
		Enabled:      true,
		CustomDomain: strptr("shop.acme.com"),
		DomainStatus: domain.DomainStatusActive,
	}

	require.NoError(t, f.svc.Delete(context.Background(), snowflake.ID(42)))

	assert.Contains(t, f.inval.tenants, snowflake.ID(42))
	assert.Contains(t, f.inval.domains, "shop.acme.com")
	assert.Empty(t, f.repo.byTenant)

	err := f.svc.Delete(context.Background(), snowflake.ID(42))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
