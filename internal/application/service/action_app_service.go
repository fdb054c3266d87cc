package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trackops/riskregistry/internal/application/dto"
	"github.com/trackops/riskregistry/internal/domain/models"
	"github.com/trackops/riskregistry/internal/domain/repository"
	"github.com/trackops/riskregistry/pkg/constants"
	"github.com/trackops/riskregistry/pkg/logger"
	"github.com/trackops/riskregistry/pkg/utils"
)

// ActionAppService manages remediation actions. Actions track follow-up work
// against a risk and never feed the scoring engine, so no rescoring happens
// here.
type ActionAppService struct {
	txManager  repository.TxManager
	actionRepo repository.ActionRepository
	riskRepo   repository.RiskRepository
	logger     logger.Logger
}

// NewActionAppService wires the action application service.
func NewActionAppService(
	txManager repository.TxManager,
	actionRepo repository.ActionRepository,
	riskRepo repository.RiskRepository,
	log logger.Logger,
) *ActionAppService {
	return &ActionAppService{
		txManager:  txManager,
		actionRepo: actionRepo,
		riskRepo:   riskRepo,
		logger:     log.WithComponent("action_service"),
	}
}

// Create creates an action against a risk. Status defaults to OPEN.
func (s *ActionAppService) Create(ctx context.Context, riskID string, req *dto.ActionCreateRequest) (*dto.ActionResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	status := constants.ActionOpen
	if req.Status != "" {
		status = constants.ActionStatus(req.Status)
	}

	action := &models.RiskAction{
		ID:          uuid.NewString(),
		RiskID:      riskID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    constants.ActionPriority(req.Priority),
		OwnerID:     req.OwnerID,
		DueDate:     req.DueDate,
	}

	err := s.txManager.InTx(ctx, func(txCtx context.Context) error {
		if _, err := s.riskRepo.FindByID(txCtx, riskID); err != nil {
			return err
		}
		return s.actionRepo.Create(txCtx, action)
	})
	if err != nil {
		return nil, err
	}
	return dto.FromAction(action), nil
}

// Update replaces the action's fields. Completion is recorded the first time
// the status transitions to COMPLETED and cleared if it moves back out.
func (s *ActionAppService) Update(ctx context.Context, id string, req *dto.ActionUpdateRequest) (*dto.ActionResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	var action *models.RiskAction
	err := s.txManager.InTx(ctx, func(txCtx context.Context) error {
		var err error
		action, err = s.actionRepo.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		newStatus := constants.ActionStatus(req.Status)
		if newStatus == constants.ActionCompleted && action.Status != constants.ActionCompleted {
			now := time.Now().UTC()
			action.CompletedAt = &now
		} else if newStatus != constants.ActionCompleted {
			action.CompletedAt = nil
		}

		action.Title = req.Title
		action.Description = req.Description
		action.Status = newStatus
		action.Priority = constants.ActionPriority(req.Priority)
		action.OwnerID = req.OwnerID
		action.DueDate = req.DueDate
		return s.actionRepo.Update(txCtx, action)
	})
	if err != nil {
		return nil, err
	}
	return dto.FromAction(action), nil
}

// Delete removes an action.
func (s *ActionAppService) Delete(ctx context.Context, id string) error {
	return s.txManager.InTx(ctx, func(txCtx context.Context) error {
		return s.actionRepo.Delete(txCtx, id)
	})
}

// Get retrieves an action by ID.
func (s *ActionAppService) Get(ctx context.Context, id string) (*dto.ActionResponse, error) {
	action, err := s.actionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.FromAction(action), nil
}

// ListByRisk returns all actions tracked against a risk.
func (s *ActionAppService) ListByRisk(ctx context.Context, riskID string) ([]dto.ActionResponse, error) {
	if _, err := s.riskRepo.FindByID(ctx, riskID); err != nil {
		return nil, err
	}
	actions, err := s.actionRepo.ListByRisk(ctx, riskID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ActionResponse, 0, len(actions))
	for i := range actions {
		out = append(out, *dto.FromAction(&actions[i]))
	}
	return out, nil
}
