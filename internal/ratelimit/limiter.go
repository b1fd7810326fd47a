package ratelimit

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/benchstay/internal/config"
	"go.uber.org/zap"
)

const keyHotelHeavy = "benchstay:ratelimit:%s:%d"

// Limiter throttles expensive per-hotel operations such as imports, manual
// recalculation and exports. A nil Limiter allows everything.
type Limiter struct {
	bucket *TokenBucket
	log    *zap.Logger
	rate   float64
	burst  int
}

// NewLimiter returns nil when rate limiting is disabled or Redis is not configured.
func NewLimiter(cfg config.Config, client *redis.Client, log *zap.Logger) *Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	if client == nil {
		log.Info("rate limiting enabled but redis not configured, requests are not throttled")
		return nil
	}
	if cfg.RateLimit.Rate <= 0 || cfg.RateLimit.Burst <= 0 {
		log.Warn("rate limit rate and burst must be positive, requests are not throttled",
			zap.Float64("rate", cfg.RateLimit.Rate),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		return nil
	}
	return &Limiter{
		bucket: NewTokenBucket(client),
		log:    log,
		rate:   cfg.RateLimit.Rate,
		burst:  cfg.RateLimit.Burst,
	}
}

func (l *Limiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Allow takes one token from the hotel's bucket for the named operation.
// Redis failures fail open.
func (l *Limiter) Allow(ctx context.Context, operation string, hotelID int64) *Result {
	if !l.Enabled() {
		return &Result{Allowed: true}
	}
	res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyHotelHeavy, operation, hotelID), l.rate, l.burst)
	if err != nil {
		l.log.Warn("rate limit check failed",
			zap.String("operation", operation),
			zap.Int64("hotel_id", hotelID),
			zap.Error(err),
		)
		return &Result{Allowed: true}
	}
	return res
}
