package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/trackops/riskregistry/internal/application/dto"
	appservice "github.com/trackops/riskregistry/internal/application/service"
	"github.com/trackops/riskregistry/internal/config"
	"github.com/trackops/riskregistry/internal/domain/repository"
	domainservice "github.com/trackops/riskregistry/internal/domain/service"
	"github.com/trackops/riskregistry/internal/infrastructure/cache"
	"github.com/trackops/riskregistry/internal/infrastructure/persistence/postgres"
	"github.com/trackops/riskregistry/pkg/logger"
)

// testEnv wires the full application stack onto an in-memory SQLite database.
// Metrics are left nil; the services tolerate that. The Redis heatmap cache is
// nil unless the env was built with newCachedTestEnv.
type testEnv struct {
	db       *gorm.DB
	risks    *appservice.RiskAppService
	taxonomy *appservice.TaxonomyAppService
	controls *appservice.ControlAppService
	actions  *appservice.ActionAppService

	riskRepo     repository.RiskRepository
	controlRepo  repository.ControlRepository
	taxonomyRepo repository.TaxonomyRepository
	actionRepo   repository.ActionRepository

	txManager repository.TxManager
	rescorer  *appservice.Rescorer
	log       logger.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return buildTestEnv(t, nil)
}

// newCachedTestEnv backs the heatmap cache with an in-process Redis so tests
// can observe invalidation from the mutation paths.
func newCachedTestEnv(t *testing.T) (*testEnv, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cfg := &config.RedisConfig{Address: mr.Addr(), HeatmapTTLSecs: 300}
	hc := cache.NewHeatmapCache(client, cfg, logger.NewNoopLogger())
	return buildTestEnv(t, hc), mr
}

func buildTestEnv(t *testing.T, heatmapCache *cache.HeatmapCache) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, postgres.AutoMigrate(db))

	log := logger.NewNoopLogger()
	riskRepo := postgres.NewRiskRepository(db, log)
	controlRepo := postgres.NewControlRepository(db, log)
	taxonomyRepo := postgres.NewTaxonomyRepository(db, log)
	actionRepo := postgres.NewActionRepository(db, log)
	txManager := postgres.NewTxManager(db)

	scoring := domainservice.NewScoringService()
	heatmap := domainservice.NewHeatmapService()
	appetites := appservice.NewAppetiteCache(time.Minute)
	rescorer := appservice.NewRescorer(riskRepo, controlRepo, taxonomyRepo, scoring, appetites, nil, log)

	cfg := config.ScoringConfig{RecalcWorkers: 2}

	return &testEnv{
		db:           db,
		risks:        appservice.NewRiskAppService(txManager, riskRepo, controlRepo, taxonomyRepo, actionRepo, rescorer, heatmap, heatmapCache, nil, log, cfg),
		taxonomy:     appservice.NewTaxonomyAppService(txManager, taxonomyRepo, riskRepo, rescorer, heatmapCache, log),
		controls:     appservice.NewControlAppService(txManager, controlRepo, riskRepo, rescorer, heatmapCache, log),
		actions:      appservice.NewActionAppService(txManager, actionRepo, riskRepo, log),
		riskRepo:     riskRepo,
		controlRepo:  controlRepo,
		taxonomyRepo: taxonomyRepo,
		actionRepo:   actionRepo,
		txManager:    txManager,
		rescorer:     rescorer,
		log:          log,
	}
}

// seedTaxonomy creates a theme with the given appetite plus one category under
// it and returns the category ID.
func (e *testEnv) seedTaxonomy(t *testing.T, appetite int) string {
	t.Helper()
	ctx := context.Background()

	theme, err := e.taxonomy.CreateTheme(ctx, &dto.ThemeCreateRequest{
		Code:          "OP",
		Name:          "Operational",
		BoardAppetite: appetite,
	})
	require.NoError(t, err)

	category, err := e.taxonomy.CreateCategory(ctx, &dto.CategoryCreateRequest{
		ThemeID: theme.ID,
		Code:    "OP-01",
		Name:    "Process failure",
	})
	require.NoError(t, err)
	return category.ID
}

func (e *testEnv) seedRisk(t *testing.T, categoryID string, refNo string, impact, probability int) *dto.RiskResponse {
	t.Helper()
	risk, err := e.risks.Create(context.Background(), &dto.RiskCreateRequest{
		RefNo:               refNo,
		CategoryID:          categoryID,
		Name:                "Risk " + refNo,
		FinancialImpact:     intPtr(impact),
		InherentProbability: intPtr(probability),
	})
	require.NoError(t, err)
	return risk
}

func intPtr(v int) *int { return &v }
