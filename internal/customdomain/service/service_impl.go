package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	brandingdomain "github.com/smallbiznis/vanity/internal/branding/domain"
	"github.com/smallbiznis/vanity/internal/clock"
	"github.com/smallbiznis/vanity/internal/config"
	"github.com/smallbiznis/vanity/internal/customdomain/dns"
	"github.com/smallbiznis/vanity/internal/customdomain/domain"
	"github.com/smallbiznis/vanity/internal/customdomain/tls"
	"github.com/smallbiznis/vanity/internal/hostname"
	obsmetrics "github.com/smallbiznis/vanity/internal/observability/metrics"
	"github.com/smallbiznis/vanity/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const verifyLockTTL = 30 * time.Second

type Params struct {
	fx.In

	Cfg           config.Config
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Branding      brandingdomain.Repository
	Verifications domain.Repository
	DNS           dns.Checker
	TLS           tls.Provisioner
	Invalidator   brandingdomain.ResolverInvalidator
	Metrics       *obsmetrics.Metrics `optional:"true"`
	Locker        *ratelimit.Locker   `optional:"true"`
}

type Service struct {
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	branding      brandingdomain.Repository
	verifications domain.Repository
	dns           dns.Checker
	tls           tls.Provisioner
	invalidator   brandingdomain.ResolverInvalidator
	metrics       *obsmetrics.Metrics
	locker        *ratelimit.Locker

	proxyZone     string
	window        time.Duration
	verifyTimeout time.Duration
}

func New(p Params) domain.Service {
	return &Service{
		log:           p.Log.Named("customdomain.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		branding:      p.Branding,
		verifications: p.Verifications,
		dns:           p.DNS,
		tls:           p.TLS,
		invalidator:   p.Invalidator,
		metrics:       p.Metrics,
		locker:        p.Locker,
		proxyZone:     p.Cfg.BrandingProxyZone,
		window:        p.Cfg.VerificationWindow,
		verifyTimeout: p.Cfg.VerifyTimeout,
	}
}

func (s *Service) SetDomain(ctx context.Context, tenantID snowflake.ID, rawDomain string) (*domain.DomainVerification, error) {
	if tenantID == 0 {
		return nil, brandingdomain.ErrInvalidTenant
	}
	if strings.TrimSpace(rawDomain) == "" {
		return nil, domain.ErrInvalidDomain
	}
	normalized := hostname.Normalize(rawDomain)
	if normalized == "" || !strings.Contains(normalized, ".") {
		return nil, domain.ErrInvalidDomain
	}

	cfg, err := s.branding.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if cfg == nil {
		// First write for this tenant; branding stays inert until enabled.
		cfg = &brandingdomain.BrandingConfig{
			ID:        s.genID.Generate(),
			TenantID:  tenantID,
			Enabled:   false,
			CreatedAt: now,
		}
	}
	oldDomain := cfg.Domain()

	cfg.CustomDomain = &normalized
	cfg.DomainStatus = brandingdomain.DomainStatusPending
	cfg.UpdatedAt = now

	// The store's unique index arbitrates concurrent claims: exactly one
	// tenant wins, the rest see ErrDomainTaken. The write only touches the
	// domain fields so cosmetic updates in flight are left alone.
	if err := s.branding.Upsert(ctx, cfg, "custom_domain", "domain_status", "updated_at"); err != nil {
		return nil, err
	}

	verification := &domain.DomainVerification{
		ID:            s.genID.Generate(),
		TenantID:      tenantID,
		Domain:        normalized,
		Token:         ulid.Make().String(),
		RecordType:    domain.RecordTypeCNAME,
		ExpectedHost:  normalized,
		ExpectedValue: s.expectedTarget(tenantID),
		RequestedAt:   now,
		ExpiresAt:     now.Add(s.window),
	}
	if err := s.verifications.Save(ctx, verification); err != nil {
		return nil, err
	}

	s.invalidate(tenantID, oldDomain, normalized)
	s.log.Info("custom domain bound",
		zap.String("tenant_id", tenantID.String()),
		zap.String("domain", normalized),
	)
	return verification, nil
}

func (s *Service) VerifyDomain(ctx context.Context, tenantID snowflake.ID) (*domain.VerifyResult, error) {
	if tenantID == 0 {
		return nil, brandingdomain.ErrInvalidTenant
	}

	cfg, err := s.branding.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return &domain.VerifyResult{Status: brandingdomain.DomainStatusNone}, nil
	}
	if cfg.DomainStatus != brandingdomain.DomainStatusPending {
		// Not pending: report the current state, never regress it.
		return s.currentResult(ctx, cfg)
	}

	// Serialize attempts per tenant across instances; a concurrent attempt
	// reads the current state instead of racing the DNS check.
	lockKey := "vanity:verify:" + tenantID.String()
	token, acquired, err := s.locker.TryLock(ctx, lockKey, verifyLockTTL)
	if err != nil {
		s.log.Warn("verification lock unavailable", zap.Error(err))
	} else if !acquired {
		return s.currentResult(ctx, cfg)
	} else {
		defer func() {
			if relErr := s.locker.Release(context.WithoutCancel(ctx), lockKey, token); relErr != nil {
				s.log.Warn("verification lock release failed", zap.Error(relErr))
			}
		}()
	}

	verification, err := s.verifications.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if verification == nil {
		// Lost record (e.g. restored backup); reissue with a fresh window.
		verification = &domain.DomainVerification{
			ID:            s.genID.Generate(),
			TenantID:      tenantID,
			Domain:        cfg.Domain(),
			Token:         ulid.Make().String(),
			RecordType:    domain.RecordTypeCNAME,
			ExpectedHost:  cfg.Domain(),
			ExpectedValue: s.expectedTarget(tenantID),
			RequestedAt:   now,
			ExpiresAt:     now.Add(s.window),
		}
		if err := s.verifications.Save(ctx, verification); err != nil {
			return nil, err
		}
	}

	// The DNS round trip runs without any store or cache lock held; PENDING
	// lives in the store, so the attempt is retryable after a crash.
	checkCtx, cancel := context.WithTimeout(ctx, s.verifyTimeout)
	defer cancel()
	ok, err := s.dns.CheckCNAME(checkCtx, verification.Domain, verification.ExpectedValue)
	if err != nil {
		s.metrics.RecordDomainVerification("error")
		s.log.Warn("dns verification check failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("domain", verification.Domain),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrVerificationUnavailable, err)
	}

	if ok {
		return s.markActive(ctx, cfg, verification)
	}

	if now.After(verification.ExpiresAt) {
		return s.markFailed(ctx, cfg, verification)
	}

	s.metrics.RecordDomainVerification("pending")
	expires := verification.ExpiresAt
	return &domain.VerifyResult{
		Status:    brandingdomain.DomainStatusPending,
		Domain:    verification.Domain,
		ExpiresAt: &expires,
	}, nil
}

func (s *Service) ClearDomain(ctx context.Context, tenantID snowflake.ID) error {
	if tenantID == 0 {
		return brandingdomain.ErrInvalidTenant
	}

	cfg, err := s.branding.FindByTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	if cfg == nil {
		return nil
	}

	oldDomain := cfg.Domain()
	if oldDomain != "" || cfg.DomainStatus != brandingdomain.DomainStatusNone {
		cfg.CustomDomain = nil
		cfg.DomainStatus = brandingdomain.DomainStatusNone
		cfg.UpdatedAt = s.clock.Now()
		if err := s.branding.Upsert(ctx, cfg, "custom_domain", "domain_status", "updated_at"); err != nil {
			return err
		}
	}
	if err := s.verifications.Delete(ctx, tenantID); err != nil {
		return err
	}

	s.invalidate(tenantID, oldDomain, "")
	s.log.Info("custom domain cleared", zap.String("tenant_id", tenantID.String()))
	return nil
}

func (s *Service) markActive(ctx context.Context, cfg *brandingdomain.BrandingConfig, verification *domain.DomainVerification) (*domain.VerifyResult, error) {
	now := s.clock.Now()
	verification.VerifiedAt = &now
	if err := s.verifications.Save(ctx, verification); err != nil {
		return nil, err
	}

	oldDomain := cfg.Domain()
	cfg.DomainStatus = brandingdomain.DomainStatusActive
	cfg.UpdatedAt = now
	if err := s.branding.Upsert(ctx, cfg, "domain_status", "updated_at"); err != nil {
		return nil, err
	}
	s.invalidate(cfg.TenantID, oldDomain, cfg.Domain())

	s.metrics.RecordDomainVerification("active")
	s.log.Info("custom domain verified",
		zap.String("tenant_id", cfg.TenantID.String()),
		zap.String("domain", verification.Domain),
	)

	// Certificate issuance happens out of band; a failure here never blocks
	// the ACTIVE transition.
	go func(domainName string) {
		provCtx, cancel := context.WithTimeout(context.Background(), s.verifyTimeout)
		defer cancel()
		if err := s.tls.Request(provCtx, domainName); err != nil {
			s.log.Warn("tls provisioning trigger failed",
				zap.String("domain", domainName),
				zap.Error(err),
			)
		}
	}(verification.Domain)

	return &domain.VerifyResult{
		Status:     brandingdomain.DomainStatusActive,
		Domain:     verification.Domain,
		VerifiedAt: verification.VerifiedAt,
	}, nil
}

func (s *Service) markFailed(ctx context.Context, cfg *brandingdomain.BrandingConfig, verification *domain.DomainVerification) (*domain.VerifyResult, error) {
	oldDomain := cfg.Domain()
	cfg.DomainStatus = brandingdomain.DomainStatusFailed
	cfg.UpdatedAt = s.clock.Now()
	if err := s.branding.Upsert(ctx, cfg, "domain_status", "updated_at"); err != nil {
		return nil, err
	}
	s.invalidate(cfg.TenantID, oldDomain, cfg.Domain())

	s.metrics.RecordDomainVerification("failed")
	s.log.Info("custom domain verification expired",
		zap.String("tenant_id", cfg.TenantID.String()),
		zap.String("domain", verification.Domain),
	)

	expires := verification.ExpiresAt
	return &domain.VerifyResult{
		Status:    brandingdomain.DomainStatusFailed,
		Domain:    verification.Domain,
		ExpiresAt: &expires,
	}, nil
}

func (s *Service) currentResult(ctx context.Context, cfg *brandingdomain.BrandingConfig) (*domain.VerifyResult, error) {
	result := &domain.VerifyResult{
		Status: cfg.DomainStatus,
		Domain: cfg.Domain(),
	}
	verification, err := s.verifications.FindByTenant(ctx, cfg.TenantID)
	if err != nil {
		return nil, err
	}
	if verification != nil {
		result.VerifiedAt = verification.VerifiedAt
		expires := verification.ExpiresAt
		result.ExpiresAt = &expires
	}
	return result, nil
}

func (s *Service) expectedTarget(tenantID snowflake.ID) string {
	return fmt.Sprintf("%s.%s", tenantID.String(), s.proxyZone)
}

func (s *Service) invalidate(tenantID snowflake.ID, oldDomain, newDomain string) {
	if s.invalidator == nil {
		return
	}
	s.invalidator.InvalidateTenant(tenantID)
	if oldDomain != "" {
		s.invalidator.InvalidateDomain(oldDomain)
	}
	if newDomain != "" && newDomain != oldDomain {
		s.invalidator.InvalidateDomain(newDomain)
	}
}
