package dailyrecord

import (
	"github.com/smallbiznis/benchstay/internal/dailyrecord/repository"
	"github.com/smallbiznis/benchstay/internal/dailyrecord/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dailyrecord.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
