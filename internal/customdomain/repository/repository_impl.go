package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vanity/internal/customdomain/domain"
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

func (r *repository) FindByTenant(ctx context.Context, tenantID snowflake.ID) (*domain.DomainVerification, error) {
	var v domain.DomainVerification
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, db.Unavailable(err)
	}
	return &v, nil
}

func (r *repository) Save(ctx context.Context, v *domain.DomainVerification) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"domain",
				"token",
				"record_type",
				"expected_host",
				"expected_value",
				"requested_at",
				"verified_at",
				"expires_at",
			}),
		}).
		Create(v).Error
	return db.Unavailable(err)
}

func (r *repository) Delete(ctx context.Context, tenantID snowflake.ID) error {
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&domain.DomainVerification{}).Error
	return db.Unavailable(err)
}
