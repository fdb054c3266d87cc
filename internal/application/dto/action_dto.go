package dto

import (
	"time"

	"github.com/trackops/riskregistry/internal/domain/models"
	"github.com/trackops/riskregistry/pkg/constants"
)

// ActionCreateRequest 创建整改行动请求
type ActionCreateRequest struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description"`
	Status      string     `json:"status" validate:"omitempty,oneof=OPEN IN_PROGRESS COMPLETED CANCELLED"`
	Priority    string     `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH CRITICAL"`
	OwnerID     string     `json:"owner_id"`
	DueDate     *time.Time `json:"due_date"`
}

// ActionUpdateRequest 更新整改行动请求
type ActionUpdateRequest struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description"`
	Status      string     `json:"status" validate:"required,oneof=OPEN IN_PROGRESS COMPLETED CANCELLED"`
	Priority    string     `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH CRITICAL"`
	OwnerID     string     `json:"owner_id"`
	DueDate     *time.Time `json:"due_date"`
}

// ActionResponse 整改行动响应
type ActionResponse struct {
	ID          string                   `json:"id"`
	RiskID      string                   `json:"risk_id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Status      constants.ActionStatus   `json:"status"`
	Priority    constants.ActionPriority `json:"priority"`
	OwnerID     string                   `json:"owner_id"`
	DueDate     *time.Time               `json:"due_date"`
	CompletedAt *time.Time               `json:"completed_at"`
	Overdue     bool                     `json:"overdue"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// FromAction 将整改行动模型转换为响应 DTO
func FromAction(a *models.RiskAction) *ActionResponse {
	return &ActionResponse{
		ID:          a.ID,
		RiskID:      a.RiskID,
		Title:       a.Title,
		Description: a.Description,
		Status:      a.Status,
		Priority:    a.Priority,
		OwnerID:     a.OwnerID,
		DueDate:     a.DueDate,
		CompletedAt: a.CompletedAt,
		Overdue:     a.IsOverdue(time.Now().UTC()),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
