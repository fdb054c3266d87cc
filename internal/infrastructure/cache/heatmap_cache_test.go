package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackops/riskregistry/internal/config"
	"github.com/trackops/riskregistry/internal/domain/models"
	"github.com/trackops/riskregistry/internal/infrastructure/cache"
	"github.com/trackops/riskregistry/pkg/constants"
	"github.com/trackops/riskregistry/pkg/logger"
)

func newTestCache(t *testing.T) (*cache.HeatmapCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cfg := &config.RedisConfig{Address: mr.Addr(), HeatmapTTLSecs: 30}
	return cache.NewHeatmapCache(client, cfg, logger.NewNoopLogger()), mr
}

func sampleHeatmap() *models.Heatmap {
	return &models.Heatmap{
		Cells: []models.HeatmapCell{
			{Impact: 1, Probability: 1, Score: 1, Risks: []models.RiskSummary{
				{RefNo: "R-001", Name: "blank risk", Score: 0, RAG: constants.RAGGreen},
			}},
		},
		TotalRisks: 1,
	}
}

func TestHeatmapCache_MissThenHit(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	got, err := c.Get(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, "", sampleHeatmap()))

	got, err = c.Get(ctx, "")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.TotalRisks)
	require.Len(t, got.Cells, 1)
	assert.Equal(t, "R-001", got.Cells[0].Risks[0].RefNo)
}

func TestHeatmapCache_ThemeKeysAreIndependent(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "theme-a", sampleHeatmap()))

	got, err := c.Get(ctx, "theme-b")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = c.Get(ctx, "theme-a")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestHeatmapCache_InvalidateDropsThemeAndGlobal(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "", sampleHeatmap()))
	require.NoError(t, c.Set(ctx, "theme-a", sampleHeatmap()))
	require.NoError(t, c.Set(ctx, "theme-b", sampleHeatmap()))

	require.NoError(t, c.Invalidate(ctx, "theme-a"))

	got, err := c.Get(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = c.Get(ctx, "theme-a")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Untouched theme entry survives until its own invalidation.
	got, err = c.Get(ctx, "theme-b")
	require.NoError(t, err)
	assert.NotNil(t, got)

	require.NoError(t, c.InvalidateAll(ctx))
	got, err = c.Get(ctx, "theme-b")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestHeatmapCache_ExpiresWithTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "", sampleHeatmap()))
	mr.FastForward(31 * time.Second)

	got, err := c.Get(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, got)
}
