package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vanity/internal/branding/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

type Params struct {
	fx.In

	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	Invalidator domain.ResolverInvalidator
}

type Service struct {
	log         *zap.Logger
	repo        domain.Repository
	genID       *snowflake.Node
	invalidator domain.ResolverInvalidator
}

func New(p Params) domain.Service {
	return &Service{
		log:         p.Log.Named("branding.service"),
		repo:        p.Repo,
		genID:       p.GenID,
		invalidator: p.Invalidator,
	}
}

func (s *Service) Get(ctx context.Context, tenantID snowflake.ID) (*domain.BrandingConfig, error) {
	if tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}
	cfg, err := s.repo.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, domain.ErrNotFound
	}
	return cfg, nil
}

func (s *Service) Update(ctx context.Context, tenantID snowflake.ID, patch domain.UpdateRequest) (*domain.BrandingConfig, error) {
	if tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}
	if err := validateColors(patch); err != nil {
		return nil, err
	}

	cfg, err := s.repo.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if cfg == nil {
		// Lazy create on first write, branding inert until enabled.
		cfg = &domain.BrandingConfig{
			ID:           s.genID.Generate(),
			TenantID:     tenantID,
			Enabled:      false,
			DomainStatus: domain.DomainStatusNone,
			CreatedAt:    now,
		}
	}
	oldDomain := cfg.Domain()

	columns := applyPatch(cfg, patch)
	// An unbound config always reads NONE, whatever state it was saved in.
	if cfg.CustomDomain == nil {
		cfg.DomainStatus = domain.DomainStatusNone
	}
	cfg.UpdatedAt = now
	columns = append(columns, "updated_at")

	// The write is scoped to the patched columns so a cosmetic update racing
	// a domain lifecycle transition cannot write stale domain fields back.
	if err := s.repo.Upsert(ctx, cfg, columns...); err != nil {
		return nil, err
	}

	s.invalidate(tenantID, oldDomain, cfg.Domain())
	return cfg, nil
}

func (s *Service) Delete(ctx context.Context, tenantID snowflake.ID) error {
	if tenantID == 0 {
		return domain.ErrInvalidTenant
	}

	cfg, err := s.repo.FindByTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	if cfg == nil {
		return domain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, tenantID); err != nil {
		return err
	}

	s.invalidate(tenantID, cfg.Domain(), "")
	s.log.Info("branding config deleted", zap.String("tenant_id", tenantID.String()))
	return nil
}

// invalidate evicts the tenant key plus any domain key the write touched.
// Callers must never observe the store updated while the cache still serves
// the previous binding.
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

func validateColors(patch domain.UpdateRequest) error {
	if patch.PrimaryColor != nil && *patch.PrimaryColor != "" && !hexColorPattern.MatchString(*patch.PrimaryColor) {
		return domain.ErrInvalidPrimaryColor
	}
	if patch.SecondaryColor != nil && *patch.SecondaryColor != "" && !hexColorPattern.MatchString(*patch.SecondaryColor) {
		return domain.ErrInvalidSecondaryColor
	}
	return nil
}

// applyPatch copies the set fields onto cfg and reports which columns the
// patch actually touched. Domain fields are never among them; those belong to
// the lifecycle service.
func applyPatch(cfg *domain.BrandingConfig, patch domain.UpdateRequest) []string {
	columns := make([]string, 0, 12)
	if patch.Enabled != nil {
		cfg.Enabled = *patch.Enabled
		columns = append(columns, "enabled")
	}
	if patch.BrandName != nil {
		cfg.BrandName = strings.TrimSpace(*patch.BrandName)
		columns = append(columns, "brand_name")
	}
	if patch.FooterText != nil {
		cfg.FooterText = strings.TrimSpace(*patch.FooterText)
		columns = append(columns, "footer_text")
	}
	if patch.SupportEmail != nil {
		cfg.SupportEmail = strings.TrimSpace(*patch.SupportEmail)
		columns = append(columns, "support_email")
	}
	if patch.PrivacyPolicyURL != nil {
		cfg.PrivacyPolicyURL = strings.TrimSpace(*patch.PrivacyPolicyURL)
		columns = append(columns, "privacy_policy_url")
	}
	if patch.TermsOfServiceURL != nil {
		cfg.TermsOfServiceURL = strings.TrimSpace(*patch.TermsOfServiceURL)
		columns = append(columns, "terms_of_service_url")
	}
	if patch.PrimaryColor != nil {
		cfg.PrimaryColor = *patch.PrimaryColor
		columns = append(columns, "primary_color")
	}
	if patch.SecondaryColor != nil {
		cfg.SecondaryColor = *patch.SecondaryColor
		columns = append(columns, "secondary_color")
	}
	if patch.LogoURL != nil {
		cfg.LogoURL = strings.TrimSpace(*patch.LogoURL)
		columns = append(columns, "logo_url")
	}
	if patch.FaviconURL != nil {
		cfg.FaviconURL = strings.TrimSpace(*patch.FaviconURL)
		columns = append(columns, "favicon_url")
	}
	if patch.HideBranding != nil {
		cfg.HideBranding = *patch.HideBranding
		columns = append(columns, "hide_branding")
	}
	if patch.Metadata != nil {
		cfg.Metadata = datatypes.JSONMap(patch.Metadata)
		columns = append(columns, "metadata")
	}
	return columns
}
