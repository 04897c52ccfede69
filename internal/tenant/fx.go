package tenant

import (
	"github.com/smallbiznis/vanity/internal/tenant/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("tenant.service",
	fx.Provide(
		repository.NewRepository,
	),
)
