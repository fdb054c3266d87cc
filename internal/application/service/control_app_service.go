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

// ControlAppService manages the control library and the risk/control pairings.
// Attaching, updating or detaching a control changes the risk's control
// effectiveness, so each of those paths rescores the risk in the same
// transaction as the pairing change.
// ControlAppService 管理控制库与风险/控制配对；配对变更与风险重算在同一事务中完成。
type ControlAppService struct {
	txManager    repository.TxManager
	controlRepo  repository.ControlRepository
	riskRepo     repository.RiskRepository
	rescorer     *Rescorer
	heatmapCache *cache.HeatmapCache
	logger       logger.Logger
}

// NewControlAppService wires the control application service. heatmapCache may
// be nil in tests.
func NewControlAppService(
	txManager repository.TxManager,
	controlRepo repository.ControlRepository,
	riskRepo repository.RiskRepository,
	rescorer *Rescorer,
	heatmapCache *cache.HeatmapCache,
	log logger.Logger,
) *ControlAppService {
	return &ControlAppService{
		txManager:    txManager,
		controlRepo:  controlRepo,
		riskRepo:     riskRepo,
		rescorer:     rescorer,
		heatmapCache: heatmapCache,
		logger:       log.WithComponent("control_service"),
	}
}

// CreateEntry creates a control library entry.
func (s *ControlAppService) CreateEntry(ctx context.Context, req *dto.ControlCreateRequest) (*dto.ControlResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	entry := &models.ControlLibrary{
		ID:          uuid.NewString(),
		Code:        req.Code,
		Name:        req.Name,
		ControlType: req.ControlType,
		Frequency:   req.Frequency,
		IsActive:    true,
	}

	err := s.txManager.InTx(ctx, func(txCtx context.Context) error {
		exists, err := s.controlRepo.EntryCodeExists(txCtx, req.Code)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.ErrConflict("control code already in use: " + req.Code)
		}
		return s.controlRepo.CreateEntry(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}
	return dto.FromControl(entry), nil
}

// UpdateEntry updates a control library entry. The code is immutable.
func (s *ControlAppService) UpdateEntry(ctx context.Context, id string, req *dto.ControlUpdateRequest) (*dto.ControlResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	var entry *models.ControlLibrary
	err := s.txManager.InTx(ctx, func(txCtx context.Context) error {
		var err error
		entry, err = s.controlRepo.FindEntryByID(txCtx, id)
		if err != nil {
			return err
		}
		entry.Name = req.Name
		entry.ControlType = req.ControlType
		entry.Frequency = req.Frequency
		if req.IsActive != nil {
			entry.IsActive = *req.IsActive
		}
		return s.controlRepo.UpdateEntry(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}
	return dto.FromControl(entry), nil
}

// DeleteEntry removes a library entry unless any risk still references it.
func (s *ControlAppService) DeleteEntry(ctx context.Context, id string) error {
	return s.txManager.InTx(ctx, func(txCtx context.Context) error {
		if _, err := s.controlRepo.FindEntryByID(txCtx, id); err != nil {
			return err
		}
		count, err := s.controlRepo.CountAttachmentsByControl(txCtx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.ErrHasDependents("control", id, count)
		}
		return s.controlRepo.DeleteEntry(txCtx, id)
	})
}

// GetEntry retrieves a library entry by ID.
func (s *ControlAppService) GetEntry(ctx context.Context, id string) (*dto.ControlResponse, error) {
	entry, err := s.controlRepo.FindEntryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.FromControl(entry), nil
}

// ListEntries returns the whole control library ordered by code.
func (s *ControlAppService) ListEntries(ctx context.Context) ([]dto.ControlResponse, error) {
	entries, err := s.controlRepo.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ControlResponse, 0, len(entries))
	for i := range entries {
		out = append(out, *dto.FromControl(&entries[i]))
	}
	return out, nil
}

// Attach pairs a control with a risk and rescores the risk atomically. A
// second attachment of the same control to the same risk is rejected with
// DUPLICATE_CONTROL before anything is written, leaving the risk's scores
// untouched.
func (s *ControlAppService) Attach(ctx context.Context, riskID string, req *dto.AttachControlRequest) (*dto.AttachmentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	attachment := &models.RiskControl{
		ID:                   uuid.NewString(),
		RiskID:               riskID,
		ControlID:            req.ControlID,
		ImplementationStatus: constants.ImplementationStatus(req.ImplementationStatus),
		EffectivenessScore:   req.EffectivenessScore,
		LastTestedDate:       req.LastTestedDate,
		NextTestDate:         req.NextTestDate,
	}

	var risk *models.Risk
	err := s.txManager.InTx(ctx, func(txCtx context.Context) error {
		var err error
		risk, err = s.riskRepo.FindByIDForUpdate(txCtx, riskID)
		if err != nil {
			return err
		}
		if _, err := s.controlRepo.FindEntryByID(txCtx, req.ControlID); err != nil {
			return err
		}

		exists, err := s.controlRepo.AttachmentExists(txCtx, riskID, req.ControlID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.ErrDuplicateControl(riskID, req.ControlID)
		}

		if err := s.controlRepo.CreateAttachment(txCtx, attachment); err != nil {
			return err
		}
		return s.rescorer.Rescore(txCtx, risk, TriggerControlChange)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateAllHeatmaps(ctx)
	s.logger.Info(ctx, "Control attached",
		logger.String("risk_id", riskID),
		logger.String("control_id", req.ControlID),
	)
	return dto.FromAttachment(attachment, risk), nil
}

// UpdateAttachment updates a pairing's implementation data and rescores the
// risk atomically.
func (s *ControlAppService) UpdateAttachment(ctx context.Context, id string, req *dto.AttachmentUpdateRequest) (*dto.AttachmentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	var attachment *models.RiskControl
	var risk *models.Risk
	err := s.txManager.InTx(ctx, func(txCtx context.Context) error {
		var err error
		attachment, err = s.controlRepo.FindAttachmentByID(txCtx, id)
		if err != nil {
			return err
		}
		risk, err = s.riskRepo.FindByIDForUpdate(txCtx, attachment.RiskID)
		if err != nil {
			return err
		}

		attachment.ImplementationStatus = constants.ImplementationStatus(req.ImplementationStatus)
		attachment.EffectivenessScore = req.EffectivenessScore
		attachment.LastTestedDate = req.LastTestedDate
		attachment.NextTestDate = req.NextTestDate
		if err := s.controlRepo.UpdateAttachment(txCtx, attachment); err != nil {
			return err
		}
		return s.rescorer.Rescore(txCtx, risk, TriggerControlChange)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateAllHeatmaps(ctx)
	return dto.FromAttachment(attachment, risk), nil
}

// Detach removes a pairing and rescores the risk atomically. The risk's
// residual score rises back toward its inherent score as controls come off.
func (s *ControlAppService) Detach(ctx context.Context, id string) (*dto.RiskResponse, error) {
	var risk *models.Risk
	err := s.txManager.InTx(ctx, func(txCtx context.Context) error {
		attachment, err := s.controlRepo.FindAttachmentByID(txCtx, id)
		if err != nil {
			return err
		}
		risk, err = s.riskRepo.FindByIDForUpdate(txCtx, attachment.RiskID)
		if err != nil {
			return err
		}
		if err := s.controlRepo.DeleteAttachment(txCtx, id); err != nil {
			return err
		}
		return s.rescorer.Rescore(txCtx, risk, TriggerControlChange)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateAllHeatmaps(ctx)
	return dto.FromRisk(risk), nil
}

// ListAttachments returns all pairings of a risk.
func (s *ControlAppService) ListAttachments(ctx context.Context, riskID string) ([]dto.AttachmentResponse, error) {
	if _, err := s.riskRepo.FindByID(ctx, riskID); err != nil {
		return nil, err
	}
	attachments, err := s.controlRepo.ListAttachmentsByRisk(ctx, riskID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		out = append(out, *dto.FromAttachment(&attachments[i], nil))
	}
	return out, nil
}

func (s *ControlAppService) invalidateAllHeatmaps(ctx context.Context) {
	if s.heatmapCache == nil {
		return
	}
	if err := s.heatmapCache.InvalidateAll(ctx); err != nil {
		s.logger.Warn(ctx, "Heatmap cache invalidation failed", logger.Error(err))
	}
}
