package reportcache

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/benchstay/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewClient connects to Redis when REDIS_ADDR is set and returns nil otherwise.
func NewClient(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Info("redis not configured, report cache and reconcile lock disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("redis ping failed", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client
}

var Module = fx.Module("reportcache",
	fx.Provide(NewClient),
	fx.Provide(New),
)
