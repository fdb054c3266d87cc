package repository

import (
	"context"

	"github.com/trackops/riskregistry/internal/domain/models"
)

// ActionRepository persists remediation actions tracked against risks.
type ActionRepository interface {
	Create(ctx context.Context, action *models.RiskAction) error
	Update(ctx context.Context, action *models.RiskAction) error
	Delete(ctx context.Context, id string) error
	DeleteByRisk(ctx context.Context, riskID string) error
	FindByID(ctx context.Context, id string) (*models.RiskAction, error)
	ListByRisk(ctx context.Context, riskID string) ([]models.RiskAction, error)
}
