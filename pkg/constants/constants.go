// Package constants defines shared constants and closed categorical types for the
// risk registry service. Enum values are parsed and rejected at the API boundary,
// never deep inside business logic.
package constants

import "fmt"

// ================================================================================
// Service Identity
// ================================================================================

const (
	// ServiceName is the canonical service identifier used in logs, traces and metrics.
	ServiceName = "riskregistry"

	// APIVersion is the current REST API version prefix.
	APIVersion = "v1"
)

// ================================================================================
// RAG Classification
// ================================================================================

// RAGStatus represents the red/amber/green/blue classification of a risk score.
// RAGStatus 表示风险评分的红/黄/绿/蓝分级。
type RAGStatus string

const (
	// RAGBlue marks a risk that has been closed or parked. It is never produced by
	// score classification, only by lifecycle flows.
	RAGBlue RAGStatus = "BLUE"

	// RAGGreen marks scores at or below the green threshold.
	RAGGreen RAGStatus = "GREEN"

	// RAGAmber marks scores above green, at or below the amber threshold.
	RAGAmber RAGStatus = "AMBER"

	// RAGRed marks scores above the amber threshold.
	RAGRed RAGStatus = "RED"
)

// ParseRAGStatus validates a raw string against the closed RAG set.
func ParseRAGStatus(s string) (RAGStatus, error) {
	switch RAGStatus(s) {
	case RAGBlue, RAGGreen, RAGAmber, RAGRed:
		return RAGStatus(s), nil
	}
	return "", fmt.Errorf("unrecognized RAG status: %q", s)
}

// RAG classification thresholds. A score of exactly 4 is GREEN and a score of
// exactly 9 is AMBER; the bands are (-inf,4], (4,9], (9,+inf).
const (
	RAGGreenCeiling = 4.0
	RAGAmberCeiling = 9.0
)

// ================================================================================
// Appetite
// ================================================================================

// AppetiteStatus indicates whether a risk's residual score sits within the board
// appetite set on its theme.
type AppetiteStatus string

const (
	// AppetiteOK means residual score <= board appetite.
	AppetiteOK AppetiteStatus = "OK"

	// AppetiteOutside means residual score > board appetite.
	AppetiteOutside AppetiteStatus = "OUTSIDE"
)

// DefaultBoardAppetite is applied when a risk's category or theme link is missing.
const DefaultBoardAppetite = 3

// ================================================================================
// Risk Tier
// ================================================================================

// RiskTier is an independent classification band assigned to a risk.
type RiskTier string

const (
	TierOne   RiskTier = "TIER_1"
	TierTwo   RiskTier = "TIER_2"
	TierThree RiskTier = "TIER_3"
)

// ParseRiskTier validates a raw string against the closed tier set.
func ParseRiskTier(s string) (RiskTier, error) {
	switch RiskTier(s) {
	case TierOne, TierTwo, TierThree:
		return RiskTier(s), nil
	}
	return "", fmt.Errorf("unrecognized risk tier: %q", s)
}

// ================================================================================
// Control Implementation
// ================================================================================

// ImplementationStatus tracks how far a control attached to a risk has progressed.
// ImplementationStatus 跟踪附加到风险的控制措施的实施进度。
type ImplementationStatus string

const (
	ImplementationPlanned    ImplementationStatus = "PLANNED"
	ImplementationInProgress ImplementationStatus = "IN_PROGRESS"
	ImplementationDone       ImplementationStatus = "IMPLEMENTED"
)

// ParseImplementationStatus validates a raw string against the closed set.
func ParseImplementationStatus(s string) (ImplementationStatus, error) {
	switch ImplementationStatus(s) {
	case ImplementationPlanned, ImplementationInProgress, ImplementationDone:
		return ImplementationStatus(s), nil
	}
	return "", fmt.Errorf("unrecognized implementation status: %q", s)
}

// Effectiveness score bounds for a risk/control pairing.
const (
	EffectivenessMin = 0
	EffectivenessMax = 100
)

// ================================================================================
// Remediation Actions
// ================================================================================

// ActionStatus is the lifecycle state of a remediation action.
type ActionStatus string

const (
	ActionOpen       ActionStatus = "OPEN"
	ActionInProgress ActionStatus = "IN_PROGRESS"
	ActionCompleted  ActionStatus = "COMPLETED"
	ActionCancelled  ActionStatus = "CANCELLED"
)

// ParseActionStatus validates a raw string against the closed set.
func ParseActionStatus(s string) (ActionStatus, error) {
	switch ActionStatus(s) {
	case ActionOpen, ActionInProgress, ActionCompleted, ActionCancelled:
		return ActionStatus(s), nil
	}
	return "", fmt.Errorf("unrecognized action status: %q", s)
}

// ActionPriority ranks remediation actions for follow-up.
type ActionPriority string

const (
	PriorityLow      ActionPriority = "LOW"
	PriorityMedium   ActionPriority = "MEDIUM"
	PriorityHigh     ActionPriority = "HIGH"
	PriorityCritical ActionPriority = "CRITICAL"
)

// ParseActionPriority validates a raw string against the closed set.
func ParseActionPriority(s string) (ActionPriority, error) {
	switch ActionPriority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return ActionPriority(s), nil
	}
	return "", fmt.Errorf("unrecognized action priority: %q", s)
}

// ================================================================================
// Rating Bounds
// ================================================================================

// Impact and probability ratings are small integers on a fixed 1-5 axis.
const (
	RatingMin = 1
	RatingMax = 5
)

// HeatmapAxisSize is the side length of the impact x probability grid.
const HeatmapAxisSize = 5

// ================================================================================
// Error Codes
// ================================================================================

// ErrorCode identifies a domain error category carried on structured errors.
type ErrorCode string

const (
	// ErrCodeValidation is returned when request input fails validation, before
	// any scoring or persistence occurs.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"

	// ErrCodeDuplicateControl is returned when a control is attached to a risk twice.
	ErrCodeDuplicateControl ErrorCode = "DUPLICATE_CONTROL"

	// ErrCodeHasDependents is returned when deleting a theme, category or control
	// library entry that still owns children.
	ErrCodeHasDependents ErrorCode = "HAS_DEPENDENTS"

	// ErrCodeNotFound is returned when a referenced entity does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeConflict is returned on uniqueness violations (ref_no, theme code).
	ErrCodeConflict ErrorCode = "CONFLICT"

	// ErrCodeInternal is returned for unexpected infrastructure failures.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// ================================================================================
// Logging
// ================================================================================

// LogLevel represents the severity level of log messages.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// ================================================================================
// Pagination
// ================================================================================

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// RecalcBatchSize bounds memory during the bulk recalculation sweep.
const RecalcBatchSize = 200
