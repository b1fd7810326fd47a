package migration

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/benchstay/internal/clock"
	"github.com/smallbiznis/benchstay/internal/config"
	"github.com/smallbiznis/benchstay/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, node *snowflake.Node, clk clock.Clock, log *zap.Logger) error {
		if err := Run(conn, cfg.DBType); err != nil {
			return err
		}
		if !cfg.Bootstrap.EnsureDefaultHotel {
			return nil
		}
		hotel, err := seed.EnsureDefaultHotel(context.Background(), conn, node, clk, cfg.Bootstrap)
		if err != nil {
			return err
		}
		log.Info("default hotel ready", zap.Int64("hotel_id", hotel.ID.Int64()), zap.String("name", hotel.Name))
		return nil
	}),
)
