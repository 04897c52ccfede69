package branding

import (
	"github.com/smallbiznis/vanity/internal/branding/repository"
	"github.com/smallbiznis/vanity/internal/branding/service"
	"go.uber.org/fx"
)

var Module = fx.Module("branding.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.New),
)
