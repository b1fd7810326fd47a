package market

import (
	"github.com/smallbiznis/benchstay/internal/market/repository"
	"github.com/smallbiznis/benchstay/internal/market/service"
	"go.uber.org/fx"
)

var Module = fx.Module("market.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(service.AsRecalculator),
)
