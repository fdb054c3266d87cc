package repository

import (
	"context"

	"github.com/trackops/riskregistry/internal/domain/models"
)

// TaxonomyRepository persists the theme/category hierarchy and answers the
// lookups the scoring engine needs (board appetite via category).
type TaxonomyRepository interface {
	// CreateTheme inserts a new theme.
	CreateTheme(ctx context.Context, theme *models.RiskTheme) error

	// UpdateTheme persists changes to a theme.
	UpdateTheme(ctx context.Context, theme *models.RiskTheme) error

	// DeleteTheme removes a theme. Callers must check dependents first.
	DeleteTheme(ctx context.Context, id string) error

	// FindThemeByID retrieves a theme.
	FindThemeByID(ctx context.Context, id string) (*models.RiskTheme, error)

	// FindThemeByCode retrieves a theme by its unique code.
	FindThemeByCode(ctx context.Context, code string) (*models.RiskTheme, error)

	// ListThemes returns all themes ordered by display order.
	ListThemes(ctx context.Context) ([]models.RiskTheme, error)

	// NextThemeOrder returns max(existing order)+1 across all themes.
	NextThemeOrder(ctx context.Context) (int, error)

	// CountCategoriesByTheme returns how many categories a theme owns.
	CountCategoriesByTheme(ctx context.Context, themeID string) (int64, error)

	// CreateCategory inserts a new category.
	CreateCategory(ctx context.Context, category *models.RiskCategory) error

	// UpdateCategory persists changes to a category.
	UpdateCategory(ctx context.Context, category *models.RiskCategory) error

	// DeleteCategory removes a category. Callers must check dependents first.
	DeleteCategory(ctx context.Context, id string) error

	// FindCategoryByID retrieves a category.
	FindCategoryByID(ctx context.Context, id string) (*models.RiskCategory, error)

	// ListCategoriesByTheme returns a theme's categories ordered by display order.
	ListCategoriesByTheme(ctx context.Context, themeID string) ([]models.RiskCategory, error)

	// NextCategoryOrder returns max(existing order)+1 within the theme.
	NextCategoryOrder(ctx context.Context, themeID string) (int, error)

	// CategoryCodeExists reports whether the code is already used inside the theme.
	CategoryCodeExists(ctx context.Context, themeID string, code string) (bool, error)

	// CountRisksByCategory returns how many risks reference the category.
	CountRisksByCategory(ctx context.Context, categoryID string) (int64, error)

	// BoardAppetiteByCategory resolves the owning theme's board appetite for a
	// category. Returns (nil, nil) when the category or theme link is dangling
	// so the scoring engine can fall back to its default.
	BoardAppetiteByCategory(ctx context.Context, categoryID string) (*int, error)
}
