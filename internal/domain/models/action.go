package models

import (
	"time"

	"github.com/trackops/riskregistry/pkg/constants"
)

// RiskAction is a remediation task tracked against a risk. Actions are purely
// for follow-up and never feed the scoring engine.
type RiskAction struct {
	ID          string                   `json:"id" gorm:"primaryKey;size:36"`
	RiskID      string                   `json:"risk_id" gorm:"size:36;not null;index"`
	Title       string                   `json:"title" gorm:"size:255;not null"`
	Description string                   `json:"description" gorm:"type:text"`
	Status      constants.ActionStatus   `json:"status" gorm:"size:16;not null"`
	Priority    constants.ActionPriority `json:"priority" gorm:"size:16;not null"`
	OwnerID     string                   `json:"owner_id" gorm:"size:36"`
	DueDate     *time.Time               `json:"due_date"`
	CompletedAt *time.Time               `json:"completed_at"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// TableName sets the table name for RiskAction.
func (RiskAction) TableName() string { return "risk_actions" }

// IsOverdue reports whether the action has passed its due date without completion.
func (a *RiskAction) IsOverdue(now time.Time) bool {
	if a.DueDate == nil || a.CompletedAt != nil {
		return false
	}
	if a.Status == constants.ActionCompleted || a.Status == constants.ActionCancelled {
		return false
	}
	return now.After(*a.DueDate)
}
