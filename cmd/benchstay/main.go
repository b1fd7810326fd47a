package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/benchstay/internal/audit"
	"github.com/smallbiznis/benchstay/internal/clock"
	"github.com/smallbiznis/benchstay/internal/config"
	"github.com/smallbiznis/benchstay/internal/dailyrecord"
	"github.com/smallbiznis/benchstay/internal/importer"
	"github.com/smallbiznis/benchstay/internal/market"
	"github.com/smallbiznis/benchstay/internal/migration"
	"github.com/smallbiznis/benchstay/internal/observability"
	"github.com/smallbiznis/benchstay/internal/property"
	"github.com/smallbiznis/benchstay/internal/providers"
	"github.com/smallbiznis/benchstay/internal/ratelimit"
	"github.com/smallbiznis/benchstay/internal/report"
	"github.com/smallbiznis/benchstay/internal/reportcache"
	"github.com/smallbiznis/benchstay/internal/scheduler"
	"github.com/smallbiznis/benchstay/internal/server"
	"github.com/smallbiznis/benchstay/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		fx.Provide(clock.New),
		db.Module,
		migration.Module,
		reportcache.Module,
		ratelimit.Module,

		// Domains
		audit.Module,
		property.Module,
		dailyrecord.Module,
		market.Module,
		importer.Module,
		providers.Module,
		report.Module,

		scheduler.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
