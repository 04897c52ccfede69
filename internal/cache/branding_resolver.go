package cache

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	brandingdomain "github.com/smallbiznis/vanity/internal/branding/domain"
	"github.com/smallbiznis/vanity/internal/clock"
	"github.com/smallbiznis/vanity/internal/config"
	"github.com/smallbiznis/vanity/internal/hostname"
	obsmetrics "github.com/smallbiznis/vanity/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultResolverTTL = 5 * time.Minute

const (
	keyspaceDomain = "domain"
	keyspaceTenant = "tenant"
)

// BrandingResolver answers the per-request question "whose branding is this?"
// from memory, falling back to the branding store on a miss. Lookups are
// dual-keyed: a config loaded for its domain also primes the tenant entry and
// vice versa, since one record carries both keys.
type BrandingResolver interface {
	ResolveByDomain(ctx context.Context, domain string) (*brandingdomain.BrandingConfig, error)
	ResolveByTenant(ctx context.Context, tenantID snowflake.ID) (*brandingdomain.BrandingConfig, error)
	InvalidateTenant(tenantID snowflake.ID)
	InvalidateDomain(domain string)
}

type Params struct {
	fx.In

	Cfg     config.Config
	Clock   clock.Clock
	Repo    brandingdomain.Repository
	Metrics *obsmetrics.Metrics `optional:"true"`
	Log     *zap.Logger
}

type brandingResolver struct {
	byDomain Cache[string, *brandingdomain.BrandingConfig]
	byTenant Cache[snowflake.ID, *brandingdomain.BrandingConfig]
	group    singleflight.Group
	repo     brandingdomain.Repository
	ttl      time.Duration
	metrics  *obsmetrics.Metrics
	log      *zap.Logger
}

// NewBrandingResolver returns the in-memory read-through resolver cache.
func NewBrandingResolver(p Params) BrandingResolver {
	ttl := p.Cfg.ResolverTTL
	if ttl <= 0 {
		ttl = defaultResolverTTL
	}
	return &brandingResolver{
		byDomain: NewTTLCache[string, *brandingdomain.BrandingConfig](p.Clock),
		byTenant: NewTTLCache[snowflake.ID, *brandingdomain.BrandingConfig](p.Clock),
		repo:     p.Repo,
		ttl:      ttl,
		metrics:  p.Metrics,
		log:      p.Log.Named("branding.resolver"),
	}
}

func (r *brandingResolver) ResolveByDomain(ctx context.Context, domain string) (*brandingdomain.BrandingConfig, error) {
	domain = hostname.Normalize(domain)
	if domain == "" {
		return nil, nil
	}

	if cfg, ok := r.byDomain.Get(domain); ok {
		r.metrics.RecordResolverHit(keyspaceDomain)
		return cfg, nil
	}
	r.metrics.RecordResolverMiss(keyspaceDomain)

	// Coalesce concurrent misses so a burst of first requests to a freshly
	// bound domain costs one store round trip, not N. The load is shared by
	// every coalesced caller, so it must not die with the first caller's ctx.
	loadCtx := context.WithoutCancel(ctx)
	value, err, _ := r.group.Do("domain|"+domain, func() (any, error) {
		if cfg, ok := r.byDomain.Get(domain); ok {
			return cfg, nil
		}
		r.metrics.RecordResolverLoad(keyspaceDomain)
		cfg, err := r.repo.FindByDomain(loadCtx, domain)
		if err != nil {
			r.metrics.RecordResolverError(keyspaceDomain)
			return nil, err
		}
		if cfg != nil {
			r.prime(cfg)
		}
		return cfg, nil
	})
	if err != nil {
		return nil, err
	}
	cfg, _ := value.(*brandingdomain.BrandingConfig)
	return cfg, nil
}

func (r *brandingResolver) ResolveByTenant(ctx context.Context, tenantID snowflake.ID) (*brandingdomain.BrandingConfig, error) {
	if tenantID == 0 {
		return nil, nil
	}

	if cfg, ok := r.byTenant.Get(tenantID); ok {
		r.metrics.RecordResolverHit(keyspaceTenant)
		return cfg, nil
	}
	r.metrics.RecordResolverMiss(keyspaceTenant)

	loadCtx := context.WithoutCancel(ctx)
	value, err, _ := r.group.Do("tenant|"+tenantID.String(), func() (any, error) {
		if cfg, ok := r.byTenant.Get(tenantID); ok {
			return cfg, nil
		}
		r.metrics.RecordResolverLoad(keyspaceTenant)
		cfg, err := r.repo.FindByTenant(loadCtx, tenantID)
		if err != nil {
			r.metrics.RecordResolverError(keyspaceTenant)
			return nil, err
		}
		if cfg != nil {
			r.prime(cfg)
		}
		return cfg, nil
	})
	if err != nil {
		return nil, err
	}
	cfg, _ := value.(*brandingdomain.BrandingConfig)
	return cfg, nil
}

// prime populates both maps from a single store result. The domain keyspace
// only ever serves enabled configs, matching FindByDomain semantics.
func (r *brandingResolver) prime(cfg *brandingdomain.BrandingConfig) {
	r.byTenant.Set(cfg.TenantID, cfg, r.ttl)
	if cfg.Enabled && cfg.Domain() != "" {
		r.byDomain.Set(cfg.Domain(), cfg, r.ttl)
	}
}

func (r *brandingResolver) InvalidateTenant(tenantID snowflake.ID) {
	r.byTenant.Delete(tenantID)
}

func (r *brandingResolver) InvalidateDomain(domain string) {
	domain = hostname.Normalize(domain)
	if domain == "" {
		return
	}
	r.byDomain.Delete(domain)
}
