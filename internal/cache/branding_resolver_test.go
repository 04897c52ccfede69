package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	brandingdomain "github.com/smallbiznis/vanity/internal/branding/domain"
	"github.com/smallbiznis/vanity/internal/clock"
	"github.com/smallbiznis/vanity/internal/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type repoStub struct {
	mu            sync.Mutex
	byDomain      map[string]*brandingdomain.BrandingConfig
	byTenant      map[snowflake.ID]*brandingdomain.BrandingConfig
	domainCalls   atomic.Int64
	tenantCalls   atomic.Int64
	err           error
	releaseDomain chan struct{}
}

func newRepoStub() *repoStub {
	return &repoStub{
		byDomain: make(map[string]*brandingdomain.BrandingConfig),
		byTenant: make(map[snowflake.ID]*brandingdomain.BrandingConfig),
	}
}

func (r *repoStub) put(cfg *brandingdomain.BrandingConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTenant[cfg.TenantID] = cfg
	if cfg.Enabled && cfg.Domain() != "" {
		r.byDomain[cfg.Domain()] = cfg
	}
}

func (r *repoStub) FindByDomain(ctx context.Context, domain string) (*brandingdomain.BrandingConfig, error) {
	r.domainCalls.Add(1)
	if r.releaseDomain != nil {
		<-r.releaseDomain
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byDomain[domain], nil
}

func (r *repoStub) FindByTenant(ctx context.Context, tenantID snowflake.ID) (*brandingdomain.BrandingConfig, error) {
	r.tenantCalls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byTenant[tenantID], nil
}

func (r *repoStub) Upsert(ctx context.Context, cfg *brandingdomain.BrandingConfig, columns ...string) error {
	return nil
}

func (r *repoStub) Delete(ctx context.Context, tenantID snowflake.ID) error { return nil }

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

func enabledConfig(t *testing.T, node *snowflake.Node, domain string) *brandingdomain.BrandingConfig {
	t.Helper()
	return &brandingdomain.BrandingConfig{
		ID:           node.Generate(),
		TenantID:     node.Generate(),
		Enabled:      true,
		BrandName:    "Acme",
		CustomDomain: &domain,
		DomainStatus: brandingdomain.DomainStatusActive,
	}
}

func newResolver(repo brandingdomain.Repository, clk clock.Clock, ttl time.Duration) BrandingResolver {
	return NewBrandingResolver(Params{
		Cfg:   config.Config{ResolverTTL: ttl},
		Clock: clk,
		Repo:  repo,
		Log:   zap.NewNop(),
	})
}

func TestResolveByDomainPrimesBothKeys(t *testing.T) {
	node := mustNode(t)
	repo := newRepoStub()
	cfg := enabledConfig(t, node, "shop.example.com")
	repo.put(cfg)

	resolver := newResolver(repo, clock.NewSystemClock(), time.Minute)
	ctx := context.Background()

	got, err := resolver.ResolveByDomain(ctx, "shop.example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, cfg.TenantID, got.TenantID)
	require.EqualValues(t, 1, repo.domainCalls.Load())

	// The tenant keyspace was primed by the domain load.
	got, err = resolver.ResolveByTenant(ctx, cfg.TenantID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.EqualValues(t, 0, repo.tenantCalls.Load())
}

func TestResolveByTenantPrimesDomainKey(t *testing.T) {
	node := mustNode(t)
	repo := newRepoStub()
	cfg := enabledConfig(t, node, "shop.example.com")
	repo.put(cfg)

	resolver := newResolver(repo, clock.NewSystemClock(), time.Minute)
	ctx := context.Background()

	_, err := resolver.ResolveByTenant(ctx, cfg.TenantID)
	require.NoError(t, err)
	require.EqualValues(t, 1, repo.tenantCalls.Load())

	_, err = resolver.ResolveByDomain(ctx, "shop.example.com")
	require.NoError(t, err)
	require.EqualValues(t, 0, repo.domainCalls.Load())
}

func TestResolveByDomainNormalizesInput(t *testing.T) {
	node := mustNode(t)
	repo := newRepoStub()
	cfg := enabledConfig(t, node, "shop.example.com")
	repo.put(cfg)

	resolver := newResolver(repo, clock.NewSystemClock(), time.Minute)

	got, err := resolver.ResolveByDomain(context.Background(), "HTTPS://Shop.Example.com:443/theme")
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestDisabledConfigNotServedByDomain(t *testing.T) {
	node := mustNode(t)
	repo := newRepoStub()
	domain := "shop.example.com"
	cfg := &brandingdomain.BrandingConfig{
		ID:           node.Generate(),
		TenantID:     node.Generate(),
		Enabled:      false,
		CustomDomain: &domain,
		DomainStatus: brandingdomain.DomainStatusActive,
	}
	repo.put(cfg)

	resolver := newResolver(repo, clock.NewSystemClock(), time.Minute)
	ctx := context.Background()

	// The owner still resolves by tenant id.
	got, err := resolver.ResolveByTenant(ctx, cfg.TenantID)
	require.NoError(t, err)
	require.NotNil(t, got)

	// Public resolution by domain finds nothing, and the tenant-primed entry
	// must not have leaked into the domain keyspace.
	got, err = resolver.ResolveByDomain(ctx, domain)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestEntryExpiresAfterTTL(t *testing.T) {
	node := mustNode(t)
	repo := newRepoStub()
	cfg := enabledConfig(t, node, "shop.example.com")
	repo.put(cfg)

	clk := clock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	resolver := newResolver(repo, clk, 5*time.Minute)
	ctx := context.Background()

	_, err := resolver.ResolveByDomain(ctx, "shop.example.com")
	require.NoError(t, err)
	require.EqualValues(t, 1, repo.domainCalls.Load())

	clk.Advance(4 * time.Minute)
	_, err = resolver.ResolveByDomain(ctx, "shop.example.com")
	require.NoError(t, err)
	require.EqualValues(t, 1, repo.domainCalls.Load(), "entry still fresh")

	clk.Advance(2 * time.Minute)
	_, err = resolver.ResolveByDomain(ctx, "shop.example.com")
	require.NoError(t, err)
	require.EqualValues(t, 2, repo.domainCalls.Load(), "expired entry must reload")
}

func TestInvalidateEvictsImmediately(t *testing.T) {
	node := mustNode(t)
	repo := newRepoStub()
	cfg := enabledConfig(t, node, "shop.example.com")
	repo.put(cfg)

	resolver := newResolver(repo, clock.NewSystemClock(), time.Minute)
	ctx := context.Background()

	_, err := resolver.ResolveByDomain(ctx, "shop.example.com")
	require.NoError(t, err)

	// Simulate the store mutation: rebind the domain, then invalidate.
	updated := enabledConfig(t, node, "shop.example.com")
	updated.BrandName = "Acme v2"
	repo.put(updated)
	resolver.InvalidateDomain("shop.example.com")
	resolver.InvalidateTenant(cfg.TenantID)

	got, err := resolver.ResolveByDomain(ctx, "shop.example.com")
	require.NoError(t, err)
	require.Equal(t, "Acme v2", got.BrandName)
}

func TestConcurrentMissesSingleFlight(t *testing.T) {
	node := mustNode(t)
	repo := newRepoStub()
	cfg := enabledConfig(t, node, "shop.example.com")
	repo.put(cfg)
	repo.releaseDomain = make(chan struct{})

	resolver := newResolver(repo, clock.NewSystemClock(), time.Minute)
	ctx := context.Background()

	const waiters = 25
	var wg sync.WaitGroup
	results := make(chan *brandingdomain.BrandingConfig, waiters)
	errs := make(chan error, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := resolver.ResolveByDomain(ctx, "shop.example.com")
			errs <- err
			results <- got
		}()
	}

	// Let the goroutines pile up behind the in-flight load, then release it.
	time.Sleep(50 * time.Millisecond)
	close(repo.releaseDomain)
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, repo.domainCalls.Load(), "concurrent misses must coalesce into one load")
	for got := range results {
		require.NotNil(t, got)
		require.Equal(t, cfg.TenantID, got.TenantID)
	}
}

func TestSharedLoadSurvivesCallerCancellation(t *testing.T) {
	node := mustNode(t)
	repo := newRepoStub()
	cfg := enabledConfig(t, node, "shop.example.com")
	repo.put(cfg)

	resolver := newResolver(repo, clock.NewSystemClock(), time.Minute)

	// A coalesced load serves every waiter, so one caller's cancelled
	// request must not poison it for the rest.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := resolver.ResolveByDomain(ctx, "shop.example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, cfg.TenantID, got.TenantID)
}

func TestLoadErrorIsSurfacedNotCached(t *testing.T) {
	repo := newRepoStub()
	repo.err = errors.New("store unavailable")

	resolver := newResolver(repo, clock.NewSystemClock(), time.Minute)
	ctx := context.Background()

	_, err := resolver.ResolveByDomain(ctx, "shop.example.com")
	require.Error(t, err)

	// Recovery: the failure was not cached.
	repo.err = nil
	node := mustNode(t)
	repo.put(enabledConfig(t, node, "shop.example.com"))
	got, err := resolver.ResolveByDomain(ctx, "shop.example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
}
