// Package service contains the application services that orchestrate domain
// logic, persistence and caching behind the HTTP layer. Every mutation that can
// change a risk's derived fields runs its store-and-rescore cycle inside one
// transaction.
package service

import (
	"context"

	"github.com/trackops/riskregistry/internal/domain/models"
	"github.com/trackops/riskregistry/internal/domain/repository"
	domainservice "github.com/trackops/riskregistry/internal/domain/service"
	"github.com/trackops/riskregistry/internal/infrastructure/monitoring"
	"github.com/trackops/riskregistry/pkg/logger"
)

// Scoring triggers recorded on the scoring-run metric.
const (
	TriggerCreate        = "create"
	TriggerUpdate        = "update"
	TriggerControlChange = "control_change"
	TriggerAppetite      = "appetite_change"
	TriggerRecalc        = "recalc"
)

// Rescorer loads everything the scoring engine needs for one risk, runs it and
// persists the derived fields. It is shared by the risk, taxonomy and control
// services so every mutation path produces scores the same way.
//
// Callers must invoke it inside a TxManager transaction: the rescore reads the
// risk with a row lock, so concurrent input changes to the same risk serialize
// instead of racing on the derived fields.
type Rescorer struct {
	riskRepo     repository.RiskRepository
	controlRepo  repository.ControlRepository
	taxonomyRepo repository.TaxonomyRepository
	scoring      domainservice.ScoringService
	appetites    *AppetiteCache
	metrics      *monitoring.Metrics
	logger       logger.Logger
}

// NewRescorer wires the rescorer. metrics may be nil in tests.
func NewRescorer(
	riskRepo repository.RiskRepository,
	controlRepo repository.ControlRepository,
	taxonomyRepo repository.TaxonomyRepository,
	scoring domainservice.ScoringService,
	appetites *AppetiteCache,
	metrics *monitoring.Metrics,
	log logger.Logger,
) *Rescorer {
	return &Rescorer{
		riskRepo:     riskRepo,
		controlRepo:  controlRepo,
		taxonomyRepo: taxonomyRepo,
		scoring:      scoring,
		appetites:    appetites,
		metrics:      metrics,
		logger:       log.WithComponent("rescorer"),
	}
}

// Rescore recomputes and persists the derived fields of an already-locked risk.
// The risk's input fields are taken as-is; attached controls and board appetite
// are loaded fresh inside the transaction.
func (r *Rescorer) Rescore(ctx context.Context, risk *models.Risk, trigger string) error {
	controls, err := r.controlRepo.ListAttachmentsByRisk(ctx, risk.ID)
	if err != nil {
		return err
	}

	appetite, err := r.appetiteFor(ctx, risk.CategoryID)
	if err != nil {
		return err
	}

	scores := r.scoring.Score(risk, controls, appetite)
	r.scoring.Apply(risk, scores)

	if err := r.riskRepo.Update(ctx, risk); err != nil {
		return err
	}

	if r.metrics != nil {
		r.metrics.RecordScoringRun(trigger)
	}
	r.logger.Debug(ctx, "Risk rescored",
		logger.String("risk_id", risk.ID),
		logger.String("trigger", trigger),
		logger.Float64("residual_score", scores.ResidualScore),
		logger.String("residual_rag", string(scores.ResidualRAG)),
	)
	return nil
}

// RescoreByID locks the risk row and rescores it. Must run inside a transaction.
func (r *Rescorer) RescoreByID(ctx context.Context, riskID string, trigger string) (*models.Risk, error) {
	risk, err := r.riskRepo.FindByIDForUpdate(ctx, riskID)
	if err != nil {
		return nil, err
	}
	if err := r.Rescore(ctx, risk, trigger); err != nil {
		return nil, err
	}
	return risk, nil
}

// appetiteFor resolves the board appetite for a category through the in-process
// cache. A nil result (dangling link) is cached too and handled downstream by
// the scoring engine's default.
func (r *Rescorer) appetiteFor(ctx context.Context, categoryID string) (*int, error) {
	if appetite, ok := r.appetites.Get(categoryID); ok {
		return appetite, nil
	}
	appetite, err := r.taxonomyRepo.BoardAppetiteByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	r.appetites.Set(categoryID, appetite)
	return appetite, nil
}

// FlushAppetites drops the appetite cache, forcing fresh lookups.
func (r *Rescorer) FlushAppetites() {
	r.appetites.Flush()
}
