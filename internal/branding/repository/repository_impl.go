package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vanity/internal/branding/domain"
	"github.com/smallbiznis/vanity/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) domain.Repository {
	return &repository{db: conn}
}

func (r *repository) FindByTenant(ctx context.Context, tenantID snowflake.ID) (*domain.BrandingConfig, error) {
	var cfg domain.BrandingConfig
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, db.Unavailable(err)
	}
	return &cfg, nil
}

func (r *repository) FindByDomain(ctx context.Context, domainName string) (*domain.BrandingConfig, error) {
	if domainName == "" {
		return nil, nil
	}
	var cfg domain.BrandingConfig
	err := r.db.WithContext(ctx).
		Where("custom_domain = ? AND enabled = ?", domainName, true).
		First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, db.Unavailable(err)
	}
	return &cfg, nil
}

// allUpsertColumns is the fallback when a caller does not scope its write.
var allUpsertColumns = []string{
	"enabled",
	"brand_name",
	"footer_text",
	"support_email",
	"privacy_policy_url",
	"terms_of_service_url",
	"primary_color",
	"secondary_color",
	"logo_url",
	"favicon_url",
	"custom_domain",
	"domain_status",
	"hide_branding",
	"metadata",
	"updated_at",
}

func (r *repository) Upsert(ctx context.Context, cfg *domain.BrandingConfig, columns ...string) error {
	if len(columns) == 0 {
		columns = allUpsertColumns
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}},
			DoUpdates: clause.AssignmentColumns(columns),
		}).
		Create(cfg).Error
	if db.IsDuplicateKeyErr(err) {
		// The tenant_id conflict is absorbed by the upsert clause, so a
		// surviving duplicate-key error is the custom_domain unique index.
		return domain.ErrDomainTaken
	}
	return db.Unavailable(err)
}

func (r *repository) Delete(ctx context.Context, tenantID snowflake.ID) error {
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&domain.BrandingConfig{}).Error
	return db.Unavailable(err)
}
