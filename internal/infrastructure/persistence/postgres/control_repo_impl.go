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

// ControlRepoImpl implements ControlRepository on gorm.
type ControlRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewControlRepository creates a gorm-backed control repository.
func NewControlRepository(db *gorm.DB, log logger.Logger) repository.ControlRepository {
	return &ControlRepoImpl{db: db, logger: log}
}

// CreateEntry inserts a control library entry.
func (r *ControlRepoImpl) CreateEntry(ctx context.Context, entry *models.ControlLibrary) error {
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	if err := conn(ctx, r.db).Create(entry).Error; err != nil {
		r.logger.Error(ctx, "Failed to create control library entry", err, logger.String("code", entry.Code))
		return apperrors.ErrDatabase(err)
	}
	return nil
}

// UpdateEntry persists changes to a library entry.
func (r *ControlRepoImpl) UpdateEntry(ctx context.Context, entry *models.ControlLibrary) error {
	entry.UpdatedAt = time.Now().UTC()

	result := conn(ctx, r.db).
		Model(&models.ControlLibrary{}).
		Where("id = ?", entry.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(entry)
	if result.Error != nil {
		return apperrors.ErrDatabase(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound("control", entry.ID)
	}
	return nil
}

// DeleteEntry removes a library entry.
func (r *ControlRepoImpl) DeleteEntry(ctx context.Context, id string) error {
	result := conn(ctx, r.db).Where("id = ?", id).Delete(&models.ControlLibrary{})
	if result.Error != nil {
		return apperrors.ErrDatabase(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound("control", id)
	}
	return nil
}

// FindEntryByID retrieves a library entry.
func (r *ControlRepoImpl) FindEntryByID(ctx context.Context, id string) (*models.ControlLibrary, error) {
	var entry models.ControlLibrary
	if err := conn(ctx, r.db).Where("id = ?", id).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound("control", id)
		}
		return nil, apperrors.ErrDatabase(err)
	}
	return &entry, nil
}

// ListEntries returns all library entries ordered by code.
func (r *ControlRepoImpl) ListEntries(ctx context.Context) ([]models.ControlLibrary, error) {
	var entries []models.ControlLibrary
	if err := conn(ctx, r.db).Order("code").Find(&entries).Error; err != nil {
		return nil, apperrors.ErrDatabase(err)
	}
	return entries, nil
}

// EntryCodeExists reports whether a library entry already uses the code.
func (r *ControlRepoImpl) EntryCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&models.ControlLibrary{}).
		Where("code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, apperrors.ErrDatabase(err)
	}
	return count > 0, nil
}

// CountAttachmentsByControl returns how many pairings reference the entry.
func (r *ControlRepoImpl) CountAttachmentsByControl(ctx context.Context, controlID string) (int64, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&models.RiskControl{}).
		Where("control_id = ?", controlID).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.ErrDatabase(err)
	}
	return count, nil
}

// AttachmentExists reports whether the control is already attached to the risk.
func (r *ControlRepoImpl) AttachmentExists(ctx context.Context, riskID string, controlID string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&models.RiskControl{}).
		Where("risk_id = ? AND control_id = ?", riskID, controlID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.ErrDatabase(err)
	}
	return count > 0, nil
}

// CreateAttachment inserts a risk/control pairing.
func (r *ControlRepoImpl) CreateAttachment(ctx context.Context, attachment *models.RiskControl) error {
	now := time.Now().UTC()
	attachment.CreatedAt = now
	attachment.UpdatedAt = now

	if err := conn(ctx, r.db).Create(attachment).Error; err != nil {
		r.logger.Error(ctx, "Failed to attach control", err,
			logger.String("risk_id", attachment.RiskID),
			logger.String("control_id", attachment.ControlID),
		)
		return apperrors.ErrDatabase(err)
	}
	return nil
}

// UpdateAttachment persists changes to a pairing.
func (r *ControlRepoImpl) UpdateAttachment(ctx context.Context, attachment *models.RiskControl) error {
	attachment.UpdatedAt = time.Now().UTC()

	result := conn(ctx, r.db).
		Model(&models.RiskControl{}).
		Where("id = ?", attachment.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(attachment)
	if result.Error != nil {
		return apperrors.ErrDatabase(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound("risk control", attachment.ID)
	}
	return nil
}

// DeleteAttachment removes a pairing.
func (r *ControlRepoImpl) DeleteAttachment(ctx context.Context, id string) error {
	result := conn(ctx, r.db).Where("id = ?", id).Delete(&models.RiskControl{})
	if result.Error != nil {
		return apperrors.ErrDatabase(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound("risk control", id)
	}
	return nil
}

// DeleteAttachmentsByRisk removes every pairing of a risk.
func (r *ControlRepoImpl) DeleteAttachmentsByRisk(ctx context.Context, riskID string) error {
	if err := conn(ctx, r.db).Where("risk_id = ?", riskID).Delete(&models.RiskControl{}).Error; err != nil {
		return apperrors.ErrDatabase(err)
	}
	return nil
}

// FindAttachmentByID retrieves a pairing.
func (r *ControlRepoImpl) FindAttachmentByID(ctx context.Context, id string) (*models.RiskControl, error) {
	var attachment models.RiskControl
	if err := conn(ctx, r.db).Where("id = ?", id).First(&attachment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound("risk control", id)
		}
		return nil, apperrors.ErrDatabase(err)
	}
	return &attachment, nil
}

// ListAttachmentsByRisk returns all pairings of a risk.
func (r *ControlRepoImpl) ListAttachmentsByRisk(ctx context.Context, riskID string) ([]models.RiskControl, error) {
	var attachments []models.RiskControl
	err := conn(ctx, r.db).
		Where("risk_id = ?", riskID).
		Order("created_at").
		Find(&attachments).Error
	if err != nil {
		return nil, apperrors.ErrDatabase(err)
	}
	return attachments, nil
}
