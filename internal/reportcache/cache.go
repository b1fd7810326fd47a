// Package reportcache keeps rendered report payloads in Redis.
// A Cache without a client is a no-op, so callers never branch on configuration.
package reportcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/benchstay/internal/config"
	"github.com/smallbiznis/benchstay/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyPrefix = "benchstay:report"

type Params struct {
	fx.In

	Client    *redis.Client `optional:"true"`
	Reporting *config.ReportingConfigHolder
	Metrics   *metrics.Metrics `optional:"true"`
	Log       *zap.Logger
}

type Cache struct {
	client    *redis.Client
	reporting *config.ReportingConfigHolder
	metrics   *metrics.Metrics
	log       *zap.Logger
}

func New(p Params) *Cache {
	return &Cache{
		client:    p.Client,
		reporting: p.Reporting,
		metrics:   p.Metrics,
		log:       p.Log.Named("reportcache"),
	}
}

// Key identifies one cached report for a hotel and date range.
type Key struct {
	HotelID snowflake.ID
	Report  string
	Start   string
	End     string
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%d:%s:%s:%s", keyPrefix, k.HotelID, k.Report, k.Start, k.End)
}

func hotelPattern(hotelID snowflake.ID) string {
	return fmt.Sprintf("%s:%d:*", keyPrefix, hotelID)
}

func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil && c.ttl() > 0
}

func (c *Cache) ttl() time.Duration {
	if c.reporting == nil {
		return 0
	}
	return c.reporting.Get().CacheTTL
}

// Get decodes the cached value into dst and reports whether it was found.
func (c *Cache) Get(ctx context.Context, key Key, dst any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	raw, err := c.client.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		c.metrics.RecordCacheLookup(ctx, key.Report, false)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	c.metrics.RecordCacheLookup(ctx, key.Report, true)
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key Key, value any) error {
	if !c.Enabled() {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key.String(), raw, c.ttl()).Err()
}

// InvalidateHotel drops every cached report of one hotel.
func (c *Cache) InvalidateHotel(ctx context.Context, hotelID snowflake.ID) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.deleteMatching(ctx, hotelPattern(hotelID))
}

// Clear drops every cached report.
func (c *Cache) Clear(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.deleteMatching(ctx, keyPrefix+":*")
}

func (c *Cache) deleteMatching(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 200).Iterator()
	batch := make([]string, 0, 200)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.client.Del(ctx, batch...).Err()
	}
	return nil
}

// Remember returns the cached value for key or computes, stores and returns it.
// Cache failures are logged and never fail the request.
func Remember[T any](ctx context.Context, c *Cache, key Key, compute func() (T, error)) (T, error) {
	var cached T
	if c.Enabled() {
		found, err := c.Get(ctx, key, &cached)
		if err != nil {
			c.log.Warn("report cache read failed", zap.String("key", key.String()), zap.Error(err))
		} else if found {
			return cached, nil
		}
	}

	value, err := compute()
	if err != nil {
		return value, err
	}
	if c.Enabled() {
		if err := c.Set(ctx, key, value); err != nil {
			c.log.Warn("report cache write failed", zap.String("key", key.String()), zap.Error(err))
		}
	}
	return value, nil
}
