package property

import (
	"github.com/smallbiznis/benchstay/internal/property/repository"
	"github.com/smallbiznis/benchstay/internal/property/service"
	"go.uber.org/fx"
)

var Module = fx.Module("property.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
