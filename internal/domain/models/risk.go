// Package models defines the domain models for the risk registry service.
// This file contains the Risk entity, the central record of the register.
package models

import (
	"time"

	"github.com/trackops/riskregistry/pkg/constants"
)

// Risk is the central entity of the register. Impact ratings and probability are
// set by a risk owner; the five derived fields are a materialized cache of the
// scoring engine output and are overwritten on every input change.
// Risk 是风险登记册的核心实体；五个派生字段由评分引擎在每次输入变更时重写。
type Risk struct {
	// ID is the unique identifier of the risk.
	ID string `json:"id" gorm:"primaryKey;size:36"`

	// RefNo is the human-assigned unique reference.
	RefNo string `json:"ref_no" gorm:"uniqueIndex;size:32;not null"`

	// CategoryID files the risk under a taxonomy category.
	CategoryID string `json:"category_id" gorm:"size:36;not null;index"`

	// Name is the short title of the risk.
	Name string `json:"name" gorm:"size:255;not null"`

	// Description elaborates on the risk.
	Description string `json:"description" gorm:"type:text"`

	// FinancialImpact is the 1-5 severity along the financial dimension, nil when unset.
	FinancialImpact *int `json:"financial_impact"`

	// RegulatoryImpact is the 1-5 severity along the regulatory dimension, nil when unset.
	RegulatoryImpact *int `json:"regulatory_impact"`

	// ReputationalImpact is the 1-5 severity along the reputational dimension, nil when unset.
	ReputationalImpact *int `json:"reputational_impact"`

	// InherentProbability is the 1-5 likelihood before controls, nil when unset.
	InherentProbability *int `json:"inherent_probability"`

	// InherentRiskScore is derived: impact * probability. Never set by callers.
	InherentRiskScore float64 `json:"inherent_risk_score"`

	// InherentRAG is derived from the inherent score.
	InherentRAG constants.RAGStatus `json:"inherent_rag" gorm:"size:8"`

	// ResidualRiskScore is derived: inherent score reduced by control effectiveness.
	ResidualRiskScore float64 `json:"residual_risk_score"`

	// ResidualRAG is derived from the residual score.
	ResidualRAG constants.RAGStatus `json:"residual_rag" gorm:"size:8"`

	// AppetiteStatus is derived: OK while the residual score sits within the
	// owning theme's board appetite.
	AppetiteStatus constants.AppetiteStatus `json:"appetite_status" gorm:"size:8"`

	// OwnerID references the user directory; opaque to the registry.
	OwnerID string `json:"owner_id" gorm:"size:36"`

	// ResponsiblePartyID references the user directory; opaque to the registry.
	ResponsiblePartyID string `json:"responsible_party_id" gorm:"size:36"`

	// Tier is an independent classification band.
	Tier constants.RiskTier `json:"tier" gorm:"size:8"`

	// IsActive is a soft lifecycle flag; inactive risks are excluded from
	// aggregate statistics and the heatmap.
	IsActive bool `json:"is_active" gorm:"not null;default:true;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for Risk.
func (Risk) TableName() string { return "risks" }

// ImpactScore returns the scoring impact: the maximum of the three impact
// ratings with an unset dimension counting as 0. A fully-unset risk scores 0.
func (r *Risk) ImpactScore() int {
	max := 0
	for _, v := range []*int{r.FinancialImpact, r.RegulatoryImpact, r.ReputationalImpact} {
		if v != nil && *v > max {
			max = *v
		}
	}
	return max
}

// Probability returns the inherent probability with a floor of 1; an unset
// probability must never zero out the score.
func (r *Risk) Probability() int {
	if r.InherentProbability == nil || *r.InherentProbability < 1 {
		return 1
	}
	return *r.InherentProbability
}

// HeatmapImpact returns the impact used for heatmap placement. Unlike ImpactScore,
// missing ratings default to 1 here so every risk lands on the 1-5 axis. The two
// defaults intentionally differ; see the heatmap service.
func (r *Risk) HeatmapImpact() int {
	if s := r.ImpactScore(); s >= 1 {
		return s
	}
	return 1
}
