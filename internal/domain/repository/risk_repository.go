package repository

import (
	"context"

	"github.com/trackops/riskregistry/internal/domain/models"
	"github.com/trackops/riskregistry/pkg/constants"
)

// RiskFilter narrows and pages risk listings.
type RiskFilter struct {
	CategoryID  string
	ThemeID     string
	ResidualRAG constants.RAGStatus
	ActiveOnly  bool
	Page        int
	PageSize    int
}

// RiskRepository persists Risk records including their derived score fields.
type RiskRepository interface {
	// Create inserts a new risk with its already-computed derived fields.
	Create(ctx context.Context, risk *models.Risk) error

	// Update persists the risk's inputs and derived fields.
	Update(ctx context.Context, risk *models.Risk) error

	// FindByID retrieves a risk by its unique identifier.
	FindByID(ctx context.Context, id string) (*models.Risk, error)

	// FindByIDForUpdate retrieves a risk with a row-level write lock. Must be
	// called inside a TxManager transaction; it serializes concurrent
	// read-modify-write cycles on the same risk.
	FindByIDForUpdate(ctx context.Context, id string) (*models.Risk, error)

	// FindByRefNo retrieves a risk by its human-assigned reference.
	FindByRefNo(ctx context.Context, refNo string) (*models.Risk, error)

	// List returns a page of risks matching the filter plus the total count.
	List(ctx context.Context, filter RiskFilter) ([]models.Risk, int64, error)

	// ListActive returns all active risks, optionally restricted to one theme.
	// Used by the heatmap projection.
	ListActive(ctx context.Context, themeID string) ([]models.Risk, error)

	// ListIDsByTheme returns the IDs of all risks filed under the theme's
	// categories; used to rescore after a board appetite change.
	ListIDsByTheme(ctx context.Context, themeID string) ([]string, error)

	// Delete removes a risk.
	Delete(ctx context.Context, id string) error

	// IterateBatches walks every risk in stable batches of batchSize. Used by
	// the bulk recalculation sweep; no ordering is promised between batches.
	IterateBatches(ctx context.Context, batchSize int, fn func(risks []models.Risk) error) error
}
