// Package models defines the domain models for the risk registry service.
// This file contains the reusable control library and the risk/control pairing.
package models

import (
	"time"

	"github.com/trackops/riskregistry/pkg/constants"
)

// ControlLibrary is a reusable control definition. Read-mostly reference data;
// deletion is blocked while any RiskControl references the entry.
type ControlLibrary struct {
	// ID is the unique identifier of the library entry.
	ID string `json:"id" gorm:"primaryKey;size:36"`

	// Code is a unique short identifier for the control.
	Code string `json:"code" gorm:"uniqueIndex;size:32;not null"`

	// Name is the display name of the control.
	Name string `json:"name" gorm:"size:255;not null"`

	// ControlType classifies the control (preventative, detective, corrective...).
	ControlType string `json:"control_type" gorm:"size:64"`

	// Frequency is how often the control operates (continuous, monthly...).
	Frequency string `json:"frequency" gorm:"size:64"`

	// IsActive is a soft lifecycle flag.
	IsActive bool `json:"is_active" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for ControlLibrary.
func (ControlLibrary) TableName() string { return "control_library" }

// RiskControl pairs a risk with a control library entry and carries the
// per-pairing effectiveness data that feeds residual scoring. A risk may attach
// the same control only once; the application layer enforces the uniqueness.
type RiskControl struct {
	// ID is the unique identifier of the pairing.
	ID string `json:"id" gorm:"primaryKey;size:36"`

	// RiskID references the owning risk.
	RiskID string `json:"risk_id" gorm:"size:36;not null;index"`

	// ControlID references the control library entry.
	ControlID string `json:"control_id" gorm:"size:36;not null;index"`

	// ImplementationStatus tracks rollout progress of the control for this risk.
	ImplementationStatus constants.ImplementationStatus `json:"implementation_status" gorm:"size:16;not null"`

	// EffectivenessScore is the 0-100 reduction strength, nil until assessed.
	// Only non-nil scores feed the scoring engine's average.
	EffectivenessScore *int `json:"effectiveness_score"`

	// LastTestedDate is when the control was last tested against this risk.
	LastTestedDate *time.Time `json:"last_tested_date"`

	// NextTestDate is when the next test is due.
	NextTestDate *time.Time `json:"next_test_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for RiskControl.
func (RiskControl) TableName() string { return "risk_controls" }
