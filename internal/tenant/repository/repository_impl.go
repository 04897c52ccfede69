package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vanity/internal/tenant/domain"
	"github.com/smallbiznis/vanity/pkg/db"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) domain.Repository {
	return &repository{db: conn}
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.Tenant, error) {
	var t domain.Tenant
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, db.Unavailable(err)
	}
	return &t, nil
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	var t domain.Tenant
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, db.Unavailable(err)
	}
	return &t, nil
}

func (r *repository) Create(ctx context.Context, t *domain.Tenant) error {
	return db.Unavailable(r.db.WithContext(ctx).Create(t).Error)
}

func (r *repository) FindTenantByKeyHash(ctx context.Context, hash string, now time.Time) (*domain.Tenant, error) {
	var key domain.APIKey
	err := r.db.WithContext(ctx).
		Where("key_hash = ? AND is_active = ?", hash, true).
		First(&key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvalidAPIKey
	}
	if err != nil {
		return nil, db.Unavailable(err)
	}
	if key.ExpiresAt != nil && now.After(*key.ExpiresAt) {
		return nil, domain.ErrInvalidAPIKey
	}

	tenant, err := r.FindByID(ctx, key.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil || !tenant.IsActive {
		return nil, domain.ErrInvalidAPIKey
	}

	// Best effort; auth must not fail on a bookkeeping write.
	_ = r.db.WithContext(ctx).
		Model(&domain.APIKey{}).
		Where("id = ?", key.ID).
		Update("last_used_at", now).Error

	return tenant, nil
}

func (r *repository) CreateAPIKey(ctx context.Context, k *domain.APIKey) error {
	return db.Unavailable(r.db.WithContext(ctx).Create(k).Error)
}
