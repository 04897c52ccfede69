package cache

import (
	brandingdomain "github.com/smallbiznis/vanity/internal/branding/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("branding.resolver",
	fx.Provide(
		NewBrandingResolver,
		func(r BrandingResolver) brandingdomain.ResolverInvalidator { return r },
	),
)
