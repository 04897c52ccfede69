package migration

import (
	brandingdomain "github.com/smallbiznis/vanity/internal/branding/domain"
	"github.com/smallbiznis/vanity/internal/config"
	customdomaindomain "github.com/smallbiznis/vanity/internal/customdomain/domain"
	"github.com/smallbiznis/vanity/internal/seed"
	tenantdomain "github.com/smallbiznis/vanity/internal/tenant/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Non-postgres targets (sqlite dev and test runs, mysql) take the
			// gorm schema path; the SQL migrations are postgres-dialect.
			if err := conn.AutoMigrate(
				&tenantdomain.Tenant{},
				&tenantdomain.APIKey{},
				&brandingdomain.BrandingConfig{},
				&customdomaindomain.DomainVerification{},
			); err != nil {
				return err
			}
		}

		if cfg.SeedDefaultTenant {
			return seed.EnsureDefaultTenant(conn)
		}
		return nil
	}),
)
