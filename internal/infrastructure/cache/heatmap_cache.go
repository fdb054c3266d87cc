// Package cache provides the Redis-backed cache for heatmap projections. The
// heatmap is cheap to rebuild, so the cache is best-effort: any Redis failure
// degrades to a rebuild, never to a request error.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trackops/riskregistry/internal/config"
	"github.com/trackops/riskregistry/internal/domain/models"
	"github.com/trackops/riskregistry/pkg/logger"
)

const heatmapKeyPrefix = "riskregistry:heatmap:"

// HeatmapCache stores built heatmaps keyed by theme filter.
type HeatmapCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewRedisClient opens a Redis connection from config and verifies it.
func NewRedisClient(cfg *config.RedisConfig, log logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Error(context.Background(), "Redis ping failed", err, logger.String("address", cfg.Address))
		return nil, err
	}
	log.Info(context.Background(), "Redis connection established", logger.String("address", cfg.Address))
	return client, nil
}

// NewHeatmapCache creates a heatmap cache with the configured TTL.
func NewHeatmapCache(client *redis.Client, cfg *config.RedisConfig, log logger.Logger) *HeatmapCache {
	return &HeatmapCache{
		client: client,
		ttl:    time.Duration(cfg.HeatmapTTLSecs) * time.Second,
		logger: log,
	}
}

func key(themeID string) string {
	if themeID == "" {
		return heatmapKeyPrefix + "all"
	}
	return heatmapKeyPrefix + "theme:" + themeID
}

// Get returns the cached heatmap for the theme filter, or (nil, nil) on a miss.
func (c *HeatmapCache) Get(ctx context.Context, themeID string) (*models.Heatmap, error) {
	raw, err := c.client.Get(ctx, key(themeID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var hm models.Heatmap
	if err := json.Unmarshal(raw, &hm); err != nil {
		// Corrupt entry: treat as a miss and let the caller overwrite it.
		c.logger.Warn(ctx, "Discarding unreadable heatmap cache entry", logger.String("theme_id", themeID))
		return nil, nil
	}
	return &hm, nil
}

// Set stores the heatmap for the theme filter.
func (c *HeatmapCache) Set(ctx context.Context, themeID string, hm *models.Heatmap) error {
	raw, err := json.Marshal(hm)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(themeID), raw, c.ttl).Err()
}

// Invalidate drops the whole-register entry and the given theme's entry. Called
// after any mutation that can change scores or the active population.
func (c *HeatmapCache) Invalidate(ctx context.Context, themeID string) error {
	keys := []string{key("")}
	if themeID != "" {
		keys = append(keys, key(themeID))
	}
	return c.client.Del(ctx, keys...).Err()
}

// InvalidateAll drops every heatmap entry.
func (c *HeatmapCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, heatmapKeyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
