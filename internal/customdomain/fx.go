package customdomain

import (
	"github.com/smallbiznis/vanity/internal/customdomain/dns"
	"github.com/smallbiznis/vanity/internal/customdomain/repository"
	"github.com/smallbiznis/vanity/internal/customdomain/service"
	"github.com/smallbiznis/vanity/internal/customdomain/tls"
	"go.uber.org/fx"
)

var Module = fx.Module("customdomain.service",
	fx.Provide(
		repository.NewRepository,
		dns.NewChecker,
		tls.NewLogProvisioner,
		service.New,
	),
)
