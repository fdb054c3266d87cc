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

// ActionRepoImpl implements ActionRepository on gorm.
type ActionRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewActionRepository creates a gorm-backed action repository.
func NewActionRepository(db *gorm.DB, log logger.Logger) repository.ActionRepository {
	return &ActionRepoImpl{db: db, logger: log}
}

func (r *ActionRepoImpl) Create(ctx context.Context, action *models.RiskAction) error {
	now := time.Now().UTC()
	action.CreatedAt = now
	action.UpdatedAt = now

	if err := conn(ctx, r.db).Create(action).Error; err != nil {
		r.logger.Error(ctx, "Failed to create action", err, logger.String("risk_id", action.RiskID))
		return apperrors.ErrDatabase(err)
	}
	return nil
}

func (r *ActionRepoImpl) Update(ctx context.Context, action *models.RiskAction) error {
	action.UpdatedAt = time.Now().UTC()

	result := conn(ctx, r.db).
		Model(&models.RiskAction{}).
		Where("id = ?", action.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(action)
	if result.Error != nil {
		return apperrors.ErrDatabase(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound("action", action.ID)
	}
	return nil
}

func (r *ActionRepoImpl) Delete(ctx context.Context, id string) error {
	result := conn(ctx, r.db).Where("id = ?", id).Delete(&models.RiskAction{})
	if result.Error != nil {
		return apperrors.ErrDatabase(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound("action", id)
	}
	return nil
}

func (r *ActionRepoImpl) DeleteByRisk(ctx context.Context, riskID string) error {
	if err := conn(ctx, r.db).Where("risk_id = ?", riskID).Delete(&models.RiskAction{}).Error; err != nil {
		return apperrors.ErrDatabase(err)
	}
	return nil
}

func (r *ActionRepoImpl) FindByID(ctx context.Context, id string) (*models.RiskAction, error) {
	var action models.RiskAction
	if err := conn(ctx, r.db).Where("id = ?", id).First(&action).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound("action", id)
		}
		return nil, apperrors.ErrDatabase(err)
	}
	return &action, nil
}

func (r *ActionRepoImpl) ListByRisk(ctx context.Context, riskID string) ([]models.RiskAction, error) {
	var actions []models.RiskAction
	err := conn(ctx, r.db).
		Where("risk_id = ?", riskID).
		Order("created_at").
		Find(&actions).Error
	if err != nil {
		return nil, apperrors.ErrDatabase(err)
	}
	return actions, nil
}
