package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/trackops/riskregistry/internal/domain/models"
	"github.com/trackops/riskregistry/internal/domain/repository"
	apperrors "github.com/trackops/riskregistry/pkg/errors"
	"github.com/trackops/riskregistry/pkg/logger"
)

// TaxonomyRepoImpl implements TaxonomyRepository on gorm.
type TaxonomyRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewTaxonomyRepository creates a gorm-backed taxonomy repository.
func NewTaxonomyRepository(db *gorm.DB, log logger.Logger) repository.TaxonomyRepository {
	return &TaxonomyRepoImpl{db: db, logger: log}
}

// CreateTheme inserts a new theme.
func (r *TaxonomyRepoImpl) CreateTheme(ctx context.Context, theme *models.RiskTheme) error {
	now := time.Now().UTC()
	theme.CreatedAt = now
	theme.UpdatedAt = now

	if err := conn(ctx, r.db).Create(theme).Error; err != nil {
		r.logger.Error(ctx, "Failed to create theme", err, logger.String("code", theme.Code))
		return apperrors.ErrDatabase(err)
	}
	r.logger.Info(ctx, "Theme created",
		logger.String("theme_id", theme.ID),
		logger.String("code", theme.Code),
		logger.Int("board_appetite", theme.BoardAppetite),
	)
	return nil
}

// UpdateTheme persists changes to a theme.
func (r *TaxonomyRepoImpl) UpdateTheme(ctx context.Context, theme *models.RiskTheme) error {
	theme.UpdatedAt = time.Now().UTC()

	result := conn(ctx, r.db).
		Model(&models.RiskTheme{}).
		Where("id = ?", theme.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(theme)
	if result.Error != nil {
		return apperrors.ErrDatabase(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound("theme", theme.ID)
	}
	return nil
}

// DeleteTheme removes a theme.
func (r *TaxonomyRepoImpl) DeleteTheme(ctx context.Context, id string) error {
	result := conn(ctx, r.db).Where("id = ?", id).Delete(&models.RiskTheme{})
	if result.Error != nil {
		return apperrors.ErrDatabase(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound("theme", id)
	}
	return nil
}

// FindThemeByID retrieves a theme.
func (r *TaxonomyRepoImpl) FindThemeByID(ctx context.Context, id string) (*models.RiskTheme, error) {
	var theme models.RiskTheme
	if err := conn(ctx, r.db).Where("id = ?", id).First(&theme).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound("theme", id)
		}
		return nil, apperrors.ErrDatabase(err)
	}
	return &theme, nil
}

// FindThemeByCode retrieves a theme by its unique code.
func (r *TaxonomyRepoImpl) FindThemeByCode(ctx context.Context, code string) (*models.RiskTheme, error) {
	var theme models.RiskTheme
	if err := conn(ctx, r.db).Where("code = ?", code).First(&theme).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound("theme", code)
		}
		return nil, apperrors.ErrDatabase(err)
	}
	return &theme, nil
}

// ListThemes returns all themes ordered by display order.
func (r *TaxonomyRepoImpl) ListThemes(ctx context.Context) ([]models.RiskTheme, error) {
	var themes []models.RiskTheme
	if err := conn(ctx, r.db).Order("display_order").Find(&themes).Error; err != nil {
		return nil, apperrors.ErrDatabase(err)
	}
	return themes, nil
}

// NextThemeOrder returns max(existing order)+1 across all themes.
func (r *TaxonomyRepoImpl) NextThemeOrder(ctx context.Context) (int, error) {
	var max *int
	err := conn(ctx, r.db).
		Model(&models.RiskTheme{}).
		Select("MAX(display_order)").
		Scan(&max).Error
	if err != nil {
		return 0, apperrors.ErrDatabase(err)
	}
	if max == nil {
		return 1, nil
	}
	return *max + 1, nil
}

// CountCategoriesByTheme returns how many categories a theme owns.
func (r *TaxonomyRepoImpl) CountCategoriesByTheme(ctx context.Context, themeID string) (int64, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&models.RiskCategory{}).
		Where("theme_id = ?", themeID).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.ErrDatabase(err)
	}
	return count, nil
}

// CreateCategory inserts a new category.
func (r *TaxonomyRepoImpl) CreateCategory(ctx context.Context, category *models.RiskCategory) error {
	now := time.Now().UTC()
	category.CreatedAt = now
	category.UpdatedAt = now

	if err := conn(ctx, r.db).Create(category).Error; err != nil {
		r.logger.Error(ctx, "Failed to create category", err,
			logger.String("theme_id", category.ThemeID),
			logger.String("code", category.Code),
		)
		return apperrors.ErrDatabase(err)
	}
	return nil
}

// UpdateCategory persists changes to a category.
func (r *TaxonomyRepoImpl) UpdateCategory(ctx context.Context, category *models.RiskCategory) error {
	category.UpdatedAt = time.Now().UTC()

	result := conn(ctx, r.db).
		Model(&models.RiskCategory{}).
		Where("id = ?", category.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(category)
	if result.Error != nil {
		return apperrors.ErrDatabase(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound("category", category.ID)
	}
	return nil
}

// DeleteCategory removes a category.
func (r *TaxonomyRepoImpl) DeleteCategory(ctx context.Context, id string) error {
	result := conn(ctx, r.db).Where("id = ?", id).Delete(&models.RiskCategory{})
	if result.Error != nil {
		return apperrors.ErrDatabase(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound("category", id)
	}
	return nil
}

// FindCategoryByID retrieves a category.
func (r *TaxonomyRepoImpl) FindCategoryByID(ctx context.Context, id string) (*models.RiskCategory, error) {
	var category models.RiskCategory
	if err := conn(ctx, r.db).Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound("category", id)
		}
		return nil, apperrors.ErrDatabase(err)
	}
	return &category, nil
}

// ListCategoriesByTheme returns a theme's categories ordered by display order.
func (r *TaxonomyRepoImpl) ListCategoriesByTheme(ctx context.Context, themeID string) ([]models.RiskCategory, error) {
	var categories []models.RiskCategory
	err := conn(ctx, r.db).
		Where("theme_id = ?", themeID).
		Order("display_order").
		Find(&categories).Error
	if err != nil {
		return nil, apperrors.ErrDatabase(err)
	}
	return categories, nil
}

// NextCategoryOrder returns max(existing order)+1 within the theme.
func (r *TaxonomyRepoImpl) NextCategoryOrder(ctx context.Context, themeID string) (int, error) {
	var max *int
	err := conn(ctx, r.db).
		Model(&models.RiskCategory{}).
		Where("theme_id = ?", themeID).
		Select("MAX(display_order)").
		Scan(&max).Error
	if err != nil {
		return 0, apperrors.ErrDatabase(err)
	}
	if max == nil {
		return 1, nil
	}
	return *max + 1, nil
}

// CategoryCodeExists reports whether the code is already used inside the theme.
func (r *TaxonomyRepoImpl) CategoryCodeExists(ctx context.Context, themeID string, code string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&models.RiskCategory{}).
		Where("theme_id = ? AND code = ?", themeID, code).
		Count(&count).Error
	if err != nil {
		return false, apperrors.ErrDatabase(err)
	}
	return count > 0, nil
}

// CountRisksByCategory returns how many risks reference the category.
func (r *TaxonomyRepoImpl) CountRisksByCategory(ctx context.Context, categoryID string) (int64, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&models.Risk{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.ErrDatabase(err)
	}
	return count, nil
}

// BoardAppetiteByCategory resolves the owning theme's board appetite. A
// dangling category or theme link yields (nil, nil) so scoring can fall back
// to its default instead of failing.
func (r *TaxonomyRepoImpl) BoardAppetiteByCategory(ctx context.Context, categoryID string) (*int, error) {
	var appetite int
	err := conn(ctx, r.db).
		Model(&models.RiskCategory{}).
		Select("risk_themes.board_appetite").
		Joins("JOIN risk_themes ON risk_themes.id = risk_categories.theme_id").
		Where("risk_categories.id = ?", categoryID).
		First(&appetite).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.ErrDatabase(err)
	}
	return &appetite, nil
}
