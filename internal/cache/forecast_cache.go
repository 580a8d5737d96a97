package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/supply-agent-go/internal/config"
	"github.com/andresuchdata/supply-agent-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	forecastKeyPrefix = "forecast"
	scanBatchSize     = 100
)

// ForecastCache stores computed demand forecasts keyed by SKU and horizon.
// Forecasts start "today", so keys also carry the computation date and
// naturally roll over at midnight.
type ForecastCache interface {
	Get(ctx context.Context, sku string, daysAhead int) (*domain.DemandForecast, bool, error)
	Set(ctx context.Context, sku string, daysAhead int, forecast *domain.DemandForecast) error
	InvalidateSKU(ctx context.Context, sku string) error
	InvalidateAll(ctx context.Context) error
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopForecastCache struct{}

func NewForecastCache(cfg config.CacheConfig) (ForecastCache, error) {
	if !cfg.Enabled {
		return &noopForecastCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisForecastCache{client: client, ttl: ttl}, nil
}

func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

func (c *redisForecastCache) Get(ctx context.Context, sku string, daysAhead int) (*domain.DemandForecast, bool, error) {
	payload, err := c.client.Get(ctx, buildForecastKey(sku, daysAhead)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("forecast cache get failed: %w", err)
	}

	var forecast domain.DemandForecast
	if err := json.Unmarshal(payload, &forecast); err != nil {
		return nil, false, fmt.Errorf("forecast cache decode failed: %w", err)
	}

	return &forecast, true, nil
}

func (c *redisForecastCache) Set(ctx context.Context, sku string, daysAhead int, forecast *domain.DemandForecast) error {
	payload, err := json.Marshal(forecast)
	if err != nil {
		return fmt.Errorf("forecast cache encode failed: %w", err)
	}

	if err := c.client.Set(ctx, buildForecastKey(sku, daysAhead), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("forecast cache set failed: %w", err)
	}

	return nil
}

func (c *redisForecastCache) InvalidateSKU(ctx context.Context, sku string) error {
	return c.deleteByPattern(ctx, fmt.Sprintf("%s:%s:*", forecastKeyPrefix, sku))
}

func (c *redisForecastCache) InvalidateAll(ctx context.Context) error {
	return c.deleteByPattern(ctx, forecastKeyPrefix+":*")
}

func (c *redisForecastCache) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("forecast cache scan failed: %w", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("forecast cache delete failed: %w", err)
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func buildForecastKey(sku string, daysAhead int) string {
	return fmt.Sprintf("%s:%s:%d:%s", forecastKeyPrefix, sku, daysAhead, time.Now().Format("2006-01-02"))
}

func (noopForecastCache) Get(context.Context, string, int) (*domain.DemandForecast, bool, error) {
	return nil, false, nil
}

func (noopForecastCache) Set(context.Context, string, int, *domain.DemandForecast) error {
	return nil
}

func (noopForecastCache) InvalidateSKU(context.Context, string) error { return nil }

func (noopForecastCache) InvalidateAll(context.Context) error { return nil }
