package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/trackops/riskregistry/internal/application/dto"
	"github.com/trackops/riskregistry/internal/domain/models"
	"github.com/trackops/riskregistry/internal/domain/repository"
	"github.com/trackops/riskregistry/internal/infrastructure/cache"
	"github.com/trackops/riskregistry/pkg/constants"
	apperrors "github.com/trackops/riskregistry/pkg/errors"
	"github.com/trackops/riskregistry/pkg/logger"
	"github.com/trackops/riskregistry/pkg/utils"
)

// TaxonomyAppService manages the theme/category hierarchy. Changing a theme's
// board appetite synchronously rescores every risk underneath it, so listings
// never show stale appetite statuses.
type TaxonomyAppService struct {
	txManager    repository.TxManager
	taxonomyRepo repository.TaxonomyRepository
	riskRepo     repository.RiskRepository
	rescorer     *Rescorer
	heatmapCache *cache.HeatmapCache
	logger       logger.Logger
}

// NewTaxonomyAppService wires the taxonomy application service. heatmapCache
// may be nil in tests.
func NewTaxonomyAppService(
	txManager repository.TxManager,
	taxonomyRepo repository.TaxonomyRepository,
	riskRepo repository.RiskRepository,
	rescorer *Rescorer,
	heatmapCache *cache.HeatmapCache,
	log logger.Logger,
) *TaxonomyAppService {
	return &TaxonomyAppService{
		txManager:    txManager,
		taxonomyRepo: taxonomyRepo,
		riskRepo:     riskRepo,
		rescorer:     rescorer,
		heatmapCache: heatmapCache,
		logger:       log.WithComponent("taxonomy_service"),
	}
}

// CreateTheme creates a theme. When no display order is given the theme is
// appended after the highest existing order.
func (s *TaxonomyAppService) CreateTheme(ctx context.Context, req *dto.ThemeCreateRequest) (*dto.ThemeResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	theme := &models.RiskTheme{
		ID:            uuid.NewString(),
		Code:          req.Code,
		Name:          req.Name,
		BoardAppetite: req.BoardAppetite,
		IsActive:      true,
	}

	err := s.txManager.InTx(ctx, func(txCtx context.Context) error {
		if existing, err := s.taxonomyRepo.FindThemeByCode(txCtx, req.Code); err == nil && existing != nil {
			return apperrors.ErrConflict("theme code already in use: " + req.Code)
		} else if err != nil {
			if regErr, ok := apperrors.AsRegistryError(err); !ok || regErr.Code() != constants.ErrCodeNotFound {
				return err
			}
		}

		if req.Order != nil {
			theme.DisplayOrder = *req.Order
		} else {
			next, err := s.taxonomyRepo.NextThemeOrder(txCtx)
			if err != nil {
				return err
			}
			theme.DisplayOrder = next
		}
		return s.taxonomyRepo.CreateTheme(txCtx, theme)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "Theme created", logger.String("theme_id", theme.ID), logger.String("code", theme.Code))
	return dto.FromTheme(theme), nil
}

// UpdateTheme updates a theme. A changed board appetite rescores every risk
// filed under the theme in the same transaction, so the appetite and the
// statuses derived from it never diverge.
func (s *TaxonomyAppService) UpdateTheme(ctx context.Context, id string, req *dto.ThemeUpdateRequest) (*dto.ThemeResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	var theme *models.RiskTheme
	var rescored int
	appetiteChanged := false
	err := s.txManager.InTx(ctx, func(txCtx context.Context) error {
		var err error
		theme, err = s.taxonomyRepo.FindThemeByID(txCtx, id)
		if err != nil {
			return err
		}

		appetiteChanged = theme.BoardAppetite != req.BoardAppetite

		theme.Name = req.Name
		theme.BoardAppetite = req.BoardAppetite
		if req.Order != nil {
			theme.DisplayOrder = *req.Order
		}
		if req.IsActive != nil {
			theme.IsActive = *req.IsActive
		}
		if err := s.taxonomyRepo.UpdateTheme(txCtx, theme); err != nil {
			return err
		}

		if !appetiteChanged {
			return nil
		}

		// Cached appetites are stale the moment the theme row changes.
		s.rescorer.FlushAppetites()

		ids, err := s.riskRepo.ListIDsByTheme(txCtx, id)
		if err != nil {
			return err
		}
		for _, riskID := range ids {
			if _, err := s.rescorer.RescoreByID(txCtx, riskID, TriggerAppetite); err != nil {
				return err
			}
		}
		rescored = len(ids)
		return nil
	})
	if appetiteChanged {
		// The in-tx rescores repopulated the cache from the not-yet-committed
		// theme row, and on commit a concurrent rescore may have re-cached the
		// old appetite. Either way the entries are untrustworthy once the
		// transaction is decided.
		s.rescorer.FlushAppetites()
	}
	if err != nil {
		return nil, err
	}

	if rescored > 0 {
		s.invalidateHeatmap(ctx, id)
		s.logger.Info(ctx, "Board appetite changed, risks rescored",
			logger.String("theme_id", id),
			logger.Int("rescored", rescored),
		)
	}
	return dto.FromTheme(theme), nil
}

// DeleteTheme removes a theme unless it still owns categories.
func (s *TaxonomyAppService) DeleteTheme(ctx context.Context, id string) error {
	return s.txManager.InTx(ctx, func(txCtx context.Context) error {
		if _, err := s.taxonomyRepo.FindThemeByID(txCtx, id); err != nil {
			return err
		}
		count, err := s.taxonomyRepo.CountCategoriesByTheme(txCtx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.ErrHasDependents("theme", id, count)
		}
		return s.taxonomyRepo.DeleteTheme(txCtx, id)
	})
}

// GetTheme retrieves a theme by ID.
func (s *TaxonomyAppService) GetTheme(ctx context.Context, id string) (*dto.ThemeResponse, error) {
	theme, err := s.taxonomyRepo.FindThemeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.FromTheme(theme), nil
}

// ListThemes returns all themes in display order.
func (s *TaxonomyAppService) ListThemes(ctx context.Context) ([]dto.ThemeResponse, error) {
	themes, err := s.taxonomyRepo.ListThemes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ThemeResponse, 0, len(themes))
	for i := range themes {
		out = append(out, *dto.FromTheme(&themes[i]))
	}
	return out, nil
}

// CreateCategory creates a category under a theme. Codes are unique only
// within the owning theme.
func (s *TaxonomyAppService) CreateCategory(ctx context.Context, req *dto.CategoryCreateRequest) (*dto.CategoryResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	category := &models.RiskCategory{
		ID:       uuid.NewString(),
		ThemeID:  req.ThemeID,
		Code:     req.Code,
		Name:     req.Name,
		IsActive: true,
	}

	err := s.txManager.InTx(ctx, func(txCtx context.Context) error {
		if _, err := s.taxonomyRepo.FindThemeByID(txCtx, req.ThemeID); err != nil {
			return err
		}

		exists, err := s.taxonomyRepo.CategoryCodeExists(txCtx, req.ThemeID, req.Code)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.ErrConflict("category code already in use within theme: " + req.Code)
		}

		if req.Order != nil {
			category.DisplayOrder = *req.Order
		} else {
			next, err := s.taxonomyRepo.NextCategoryOrder(txCtx, req.ThemeID)
			if err != nil {
				return err
			}
			category.DisplayOrder = next
		}
		return s.taxonomyRepo.CreateCategory(txCtx, category)
	})
	if err != nil {
		return nil, err
	}

	return dto.FromCategory(category), nil
}

// UpdateCategory updates a category's name, order and lifecycle flag. The
// owning theme and the code are immutable.
func (s *TaxonomyAppService) UpdateCategory(ctx context.Context, id string, req *dto.CategoryUpdateRequest) (*dto.CategoryResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	var category *models.RiskCategory
	err := s.txManager.InTx(ctx, func(txCtx context.Context) error {
		var err error
		category, err = s.taxonomyRepo.FindCategoryByID(txCtx, id)
		if err != nil {
			return err
		}
		category.Name = req.Name
		if req.Order != nil {
			category.DisplayOrder = *req.Order
		}
		if req.IsActive != nil {
			category.IsActive = *req.IsActive
		}
		return s.taxonomyRepo.UpdateCategory(txCtx, category)
	})
	if err != nil {
		return nil, err
	}
	return dto.FromCategory(category), nil
}

// DeleteCategory removes a category unless risks are still filed under it.
func (s *TaxonomyAppService) DeleteCategory(ctx context.Context, id string) error {
	return s.txManager.InTx(ctx, func(txCtx context.Context) error {
		if _, err := s.taxonomyRepo.FindCategoryByID(txCtx, id); err != nil {
			return err
		}
		count, err := s.taxonomyRepo.CountRisksByCategory(txCtx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.ErrHasDependents("category", id, count)
		}
		return s.taxonomyRepo.DeleteCategory(txCtx, id)
	})
}

// GetCategory retrieves a category by ID.
func (s *TaxonomyAppService) GetCategory(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	category, err := s.taxonomyRepo.FindCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.FromCategory(category), nil
}

// ListCategories returns a theme's categories in display order.
func (s *TaxonomyAppService) ListCategories(ctx context.Context, themeID string) ([]dto.CategoryResponse, error) {
	categories, err := s.taxonomyRepo.ListCategoriesByTheme(ctx, themeID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, *dto.FromCategory(&categories[i]))
	}
	return out, nil
}

func (s *TaxonomyAppService) invalidateHeatmap(ctx context.Context, themeID string) {
	if s.heatmapCache == nil {
		return
	}
	if err := s.heatmapCache.Invalidate(ctx, themeID); err != nil {
		s.logger.Warn(ctx, "Heatmap cache invalidation failed", logger.Error(err))
	}
}
