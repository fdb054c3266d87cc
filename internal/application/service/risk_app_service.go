package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/trackops/riskregistry/internal/application/dto"
	"github.com/trackops/riskregistry/internal/config"
	"github.com/trackops/riskregistry/internal/domain/models"
	"github.com/trackops/riskregistry/internal/domain/repository"
	domainservice "github.com/trackops/riskregistry/internal/domain/service"
	"github.com/trackops/riskregistry/internal/infrastructure/cache"
	"github.com/trackops/riskregistry/internal/infrastructure/monitoring"
	"github.com/trackops/riskregistry/pkg/constants"
	apperrors "github.com/trackops/riskregistry/pkg/errors"
	"github.com/trackops/riskregistry/pkg/logger"
	"github.com/trackops/riskregistry/pkg/utils"
)

// RiskAppService orchestrates the risk register use cases: CRUD with synchronous
// rescoring, the bulk recalculation sweep and the heatmap projection.
// RiskAppService 编排风险登记的用例：带同步评分的增删改查、批量重算与热力图投影。
type RiskAppService struct {
	txManager    repository.TxManager
	riskRepo     repository.RiskRepository
	controlRepo  repository.ControlRepository
	taxonomyRepo repository.TaxonomyRepository
	actionRepo   repository.ActionRepository
	rescorer     *Rescorer
	heatmap      domainservice.HeatmapService
	heatmapCache *cache.HeatmapCache
	metrics      *monitoring.Metrics
	logger       logger.Logger
	cfg          config.ScoringConfig
}

// NewRiskAppService wires the risk application service. heatmapCache and
// metrics may be nil in tests.
func NewRiskAppService(
	txManager repository.TxManager,
	riskRepo repository.RiskRepository,
	controlRepo repository.ControlRepository,
	taxonomyRepo repository.TaxonomyRepository,
	actionRepo repository.ActionRepository,
	rescorer *Rescorer,
	heatmap domainservice.HeatmapService,
	heatmapCache *cache.HeatmapCache,
	metrics *monitoring.Metrics,
	log logger.Logger,
	cfg config.ScoringConfig,
) *RiskAppService {
	return &RiskAppService{
		txManager:    txManager,
		riskRepo:     riskRepo,
		controlRepo:  controlRepo,
		taxonomyRepo: taxonomyRepo,
		actionRepo:   actionRepo,
		rescorer:     rescorer,
		heatmap:      heatmap,
		heatmapCache: heatmapCache,
		metrics:      metrics,
		logger:       log.WithComponent("risk_service"),
		cfg:          cfg,
	}
}

// Create validates the request, stores the risk and computes its derived fields
// in one transaction. The response already carries the scores.
func (s *RiskAppService) Create(ctx context.Context, req *dto.RiskCreateRequest) (*dto.RiskResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	risk := &models.Risk{
		ID:                  uuid.NewString(),
		RefNo:               req.RefNo,
		CategoryID:          req.CategoryID,
		Name:                req.Name,
		Description:         req.Description,
		FinancialImpact:     req.FinancialImpact,
		RegulatoryImpact:    req.RegulatoryImpact,
		ReputationalImpact:  req.ReputationalImpact,
		InherentProbability: req.InherentProbability,
		OwnerID:             req.OwnerID,
		ResponsiblePartyID:  req.ResponsiblePartyID,
		Tier:                constants.RiskTier(req.Tier),
		IsActive:            true,
	}

	var themeID string
	err := s.txManager.InTx(ctx, func(txCtx context.Context) error {
		category, err := s.taxonomyRepo.FindCategoryByID(txCtx, req.CategoryID)
		if err != nil {
			return err
		}
		themeID = category.ThemeID

		if existing, err := s.riskRepo.FindByRefNo(txCtx, req.RefNo); err == nil && existing != nil {
			return apperrors.ErrConflict("ref_no already in use: " + req.RefNo)
		} else if err != nil {
			if regErr, ok := apperrors.AsRegistryError(err); !ok || regErr.Code() != constants.ErrCodeNotFound {
				return err
			}
		}

		if err := s.riskRepo.Create(txCtx, risk); err != nil {
			return err
		}
		return s.rescorer.Rescore(txCtx, risk, TriggerCreate)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateHeatmap(ctx, themeID)
	s.logger.Info(ctx, "Risk created",
		logger.String("risk_id", risk.ID),
		logger.String("ref_no", risk.RefNo),
	)
	return dto.FromRisk(risk), nil
}

// Update replaces the risk's input fields and rescores it in one transaction.
// RefNo is immutable and absent from the request.
func (s *RiskAppService) Update(ctx context.Context, id string, req *dto.RiskUpdateRequest) (*dto.RiskResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	var risk *models.Risk
	var themeID string
	categoryChanged := false
	err := s.txManager.InTx(ctx, func(txCtx context.Context) error {
		var err error
		risk, err = s.riskRepo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}

		category, err := s.taxonomyRepo.FindCategoryByID(txCtx, req.CategoryID)
		if err != nil {
			return err
		}
		themeID = category.ThemeID
		categoryChanged = risk.CategoryID != req.CategoryID

		risk.CategoryID = req.CategoryID
		risk.Name = req.Name
		risk.Description = req.Description
		risk.FinancialImpact = req.FinancialImpact
		risk.RegulatoryImpact = req.RegulatoryImpact
		risk.ReputationalImpact = req.ReputationalImpact
		risk.InherentProbability = req.InherentProbability
		risk.OwnerID = req.OwnerID
		risk.ResponsiblePartyID = req.ResponsiblePartyID
		risk.Tier = constants.RiskTier(req.Tier)
		if req.IsActive != nil {
			risk.IsActive = *req.IsActive
		}

		return s.rescorer.Rescore(txCtx, risk, TriggerUpdate)
	})
	if err != nil {
		return nil, err
	}

	if categoryChanged {
		// The previous category may sit under another theme whose cached
		// projection still contains this risk; drop every entry rather than
		// resolving the old theme.
		s.invalidateAllHeatmaps(ctx)
	} else {
		s.invalidateHeatmap(ctx, themeID)
	}
	return dto.FromRisk(risk), nil
}

// Get retrieves a risk by ID.
func (s *RiskAppService) Get(ctx context.Context, id string) (*dto.RiskResponse, error) {
	risk, err := s.riskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.FromRisk(risk), nil
}

// List returns a filtered, paginated page of risks.
func (s *RiskAppService) List(ctx context.Context, query *dto.RiskListQuery) (*dto.RiskListResponse, error) {
	filter := repository.RiskFilter{
		CategoryID: query.CategoryID,
		ThemeID:    query.ThemeID,
		ActiveOnly: query.ActiveOnly,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	if query.ResidualRAG != "" {
		rag, err := constants.ParseRAGStatus(query.ResidualRAG)
		if err != nil {
			return nil, apperrors.ErrValidation(err.Error())
		}
		filter.ResidualRAG = rag
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = constants.DefaultPageSize
	}
	if filter.PageSize > constants.MaxPageSize {
		filter.PageSize = constants.MaxPageSize
	}

	risks, total, err := s.riskRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]dto.RiskResponse, 0, len(risks))
	for i := range risks {
		items = append(items, *dto.FromRisk(&risks[i]))
	}
	return &dto.RiskListResponse{
		Items:      items,
		Pagination: dto.NewPagination(filter.Page, filter.PageSize, total),
	}, nil
}

// Delete removes a risk together with its control pairings and actions. Risks
// have no dependents that outlive them, so unlike themes and categories there
// is no dependent-count guard here.
func (s *RiskAppService) Delete(ctx context.Context, id string) error {
	err := s.txManager.InTx(ctx, func(txCtx context.Context) error {
		if _, err := s.riskRepo.FindByIDForUpdate(txCtx, id); err != nil {
			return err
		}
		if err := s.controlRepo.DeleteAttachmentsByRisk(txCtx, id); err != nil {
			return err
		}
		if err := s.actionRepo.DeleteByRisk(txCtx, id); err != nil {
			return err
		}
		return s.riskRepo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	s.invalidateAllHeatmaps(ctx)
	s.logger.Info(ctx, "Risk deleted", logger.String("risk_id", id))
	return nil
}

// RecalculateAll rescores every risk in the register. Each risk gets its own
// short transaction so a sweep never holds long locks; concurrency is bounded
// by scoring.recalc_workers. Risks deleted mid-sweep are skipped, not errors.
func (s *RiskAppService) RecalculateAll(ctx context.Context) (*dto.RecalculateResponse, error) {
	start := time.Now()

	var ids []string
	err := s.riskRepo.IterateBatches(ctx, constants.RecalcBatchSize, func(risks []models.Risk) error {
		for i := range risks {
			ids = append(ids, risks[i].ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	workers := s.cfg.RecalcWorkers
	if workers < 1 {
		workers = 1
	}

	var processed atomic.Int64
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			err := s.txManager.InTx(gCtx, func(txCtx context.Context) error {
				_, err := s.rescorer.RescoreByID(txCtx, id, TriggerRecalc)
				return err
			})
			if err != nil {
				if regErr, ok := apperrors.AsRegistryError(err); ok && regErr.Code() == constants.ErrCodeNotFound {
					return nil
				}
				return err
			}
			processed.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	count := int(processed.Load())
	if s.metrics != nil {
		s.metrics.RecordRecalc(count, time.Since(start))
	}
	s.invalidateAllHeatmaps(ctx)
	s.logger.Info(ctx, "Bulk recalculation finished",
		logger.Int("processed", count),
		logger.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return &dto.RecalculateResponse{Processed: count}, nil
}

// GetHeatmap returns the 5x5 heatmap over active risks, optionally restricted
// to one theme. Served from Redis when fresh; any cache failure degrades to a
// rebuild.
func (s *RiskAppService) GetHeatmap(ctx context.Context, themeID string) (*models.Heatmap, error) {
	if s.heatmapCache != nil {
		cached, err := s.heatmapCache.Get(ctx, themeID)
		if err != nil {
			s.recordHeatmapCache("error")
			s.logger.Warn(ctx, "Heatmap cache read failed", logger.Error(err))
		} else if cached != nil {
			s.recordHeatmapCache("hit")
			return cached, nil
		} else {
			s.recordHeatmapCache("miss")
		}
	}

	risks, err := s.riskRepo.ListActive(ctx, themeID)
	if err != nil {
		return nil, err
	}
	hm := s.heatmap.Build(risks)

	if s.heatmapCache != nil {
		if err := s.heatmapCache.Set(ctx, themeID, hm); err != nil {
			s.logger.Warn(ctx, "Heatmap cache write failed", logger.Error(err))
		}
	}
	return hm, nil
}

func (s *RiskAppService) recordHeatmapCache(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordHeatmapCache(outcome)
	}
}

func (s *RiskAppService) invalidateHeatmap(ctx context.Context, themeID string) {
	if s.heatmapCache == nil {
		return
	}
	if err := s.heatmapCache.Invalidate(ctx, themeID); err != nil {
		s.logger.Warn(ctx, "Heatmap cache invalidation failed", logger.Error(err))
	}
}

func (s *RiskAppService) invalidateAllHeatmaps(ctx context.Context) {
	if s.heatmapCache == nil {
		return
	}
	if err := s.heatmapCache.InvalidateAll(ctx); err != nil {
		s.logger.Warn(ctx, "Heatmap cache invalidation failed", logger.Error(err))
	}
}
