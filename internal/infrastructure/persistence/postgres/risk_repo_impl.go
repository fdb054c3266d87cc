package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trackops/riskregistry/internal/domain/models"
	"github.com/trackops/riskregistry/internal/domain/repository"
	apperrors "github.com/trackops/riskregistry/pkg/errors"
	"github.com/trackops/riskregistry/pkg/logger"
)

// RiskRepoImpl implements RiskRepository on gorm.
type RiskRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewRiskRepository creates a gorm-backed risk repository.
func NewRiskRepository(db *gorm.DB, log logger.Logger) repository.RiskRepository {
	return &RiskRepoImpl{db: db, logger: log}
}

// Create inserts a new risk with its already-computed derived fields.
func (r *RiskRepoImpl) Create(ctx context.Context, risk *models.Risk) error {
	now := time.Now().UTC()
	risk.CreatedAt = now
	risk.UpdatedAt = now

	if err := conn(ctx, r.db).Create(risk).Error; err != nil {
		r.logger.Error(ctx, "Failed to create risk", err, logger.String("ref_no", risk.RefNo))
		return apperrors.ErrDatabase(err)
	}

	r.logger.Info(ctx, "Risk created",
		logger.String("risk_id", risk.ID),
		logger.String("ref_no", risk.RefNo),
		logger.Float64("inherent_score", risk.InherentRiskScore),
	)
	return nil
}

// Update persists the risk's inputs and derived fields in one write.
func (r *RiskRepoImpl) Update(ctx context.Context, risk *models.Risk) error {
	risk.UpdatedAt = time.Now().UTC()

	result := conn(ctx, r.db).
		Model(&models.Risk{}).
		Where("id = ?", risk.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(risk)
	if result.Error != nil {
		r.logger.Error(ctx, "Failed to update risk", result.Error, logger.String("risk_id", risk.ID))
		return apperrors.ErrDatabase(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound("risk", risk.ID)
	}
	return nil
}

// FindByID retrieves a risk by its unique identifier.
func (r *RiskRepoImpl) FindByID(ctx context.Context, id string) (*models.Risk, error) {
	var risk models.Risk
	if err := conn(ctx, r.db).Where("id = ?", id).First(&risk).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound("risk", id)
		}
		return nil, apperrors.ErrDatabase(err)
	}
	return &risk, nil
}

// FindByIDForUpdate retrieves a risk holding a row-level write lock for the
// rest of the surrounding transaction. SQLite serializes writers already, so
// the clause is applied on PostgreSQL only.
func (r *RiskRepoImpl) FindByIDForUpdate(ctx context.Context, id string) (*models.Risk, error) {
	q := conn(ctx, r.db)
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var risk models.Risk
	if err := q.Where("id = ?", id).First(&risk).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound("risk", id)
		}
		return nil, apperrors.ErrDatabase(err)
	}
	return &risk, nil
}

// FindByRefNo retrieves a risk by its human-assigned reference.
func (r *RiskRepoImpl) FindByRefNo(ctx context.Context, refNo string) (*models.Risk, error) {
	var risk models.Risk
	if err := conn(ctx, r.db).Where("ref_no = ?", refNo).First(&risk).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound("risk", refNo)
		}
		return nil, apperrors.ErrDatabase(err)
	}
	return &risk, nil
}

// List returns a page of risks matching the filter plus the total count.
func (r *RiskRepoImpl) List(ctx context.Context, filter repository.RiskFilter) ([]models.Risk, int64, error) {
	q := conn(ctx, r.db).Model(&models.Risk{})

	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.ThemeID != "" {
		q = q.Where("category_id IN (?)",
			r.db.Model(&models.RiskCategory{}).Select("id").Where("theme_id = ?", filter.ThemeID),
		)
	}
	if filter.ResidualRAG != "" {
		q = q.Where("residual_rag = ?", filter.ResidualRAG)
	}
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperrors.ErrDatabase(err)
	}

	var risks []models.Risk
	offset := (filter.Page - 1) * filter.PageSize
	if err := q.Order("ref_no").Offset(offset).Limit(filter.PageSize).Find(&risks).Error; err != nil {
		return nil, 0, apperrors.ErrDatabase(err)
	}
	return risks, total, nil
}

// ListActive returns all active risks, optionally restricted to one theme.
func (r *RiskRepoImpl) ListActive(ctx context.Context, themeID string) ([]models.Risk, error) {
	q := conn(ctx, r.db).Where("is_active = ?", true)
	if themeID != "" {
		q = q.Where("category_id IN (?)",
			r.db.Model(&models.RiskCategory{}).Select("id").Where("theme_id = ?", themeID),
		)
	}

	var risks []models.Risk
	if err := q.Order("ref_no").Find(&risks).Error; err != nil {
		return nil, apperrors.ErrDatabase(err)
	}
	return risks, nil
}

// ListIDsByTheme returns the IDs of all risks filed under the theme.
func (r *RiskRepoImpl) ListIDsByTheme(ctx context.Context, themeID string) ([]string, error) {
	var ids []string
	err := conn(ctx, r.db).
		Model(&models.Risk{}).
		Select("risks.id").
		Joins("JOIN risk_categories ON risk_categories.id = risks.category_id").
		Where("risk_categories.theme_id = ?", themeID).
		Pluck("risks.id", &ids).Error
	if err != nil {
		return nil, apperrors.ErrDatabase(err)
	}
	return ids, nil
}

// Delete removes a risk.
func (r *RiskRepoImpl) Delete(ctx context.Context, id string) error {
	result := conn(ctx, r.db).Where("id = ?", id).Delete(&models.Risk{})
	if result.Error != nil {
		return apperrors.ErrDatabase(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound("risk", id)
	}
	r.logger.Info(ctx, "Risk deleted", logger.String("risk_id", id))
	return nil
}

// IterateBatches walks every risk in stable batches ordered by id.
func (r *RiskRepoImpl) IterateBatches(ctx context.Context, batchSize int, fn func(risks []models.Risk) error) error {
	var batch []models.Risk
	result := conn(ctx, r.db).
		Order("id").
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		})
	if result.Error != nil {
		return apperrors.ErrDatabase(result.Error)
	}
	return nil
}
