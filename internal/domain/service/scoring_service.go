// Package service contains the pure domain services of the risk registry: the
// scoring engine and the heatmap builder. Both operate on already-loaded data
// and perform no I/O.
package service

import (
	"github.com/trackops/riskregistry/internal/domain/models"
	"github.com/trackops/riskregistry/pkg/constants"
)

// ScoreSet is the derived state produced by one scoring run. The five fields are
// a pure function of the risk's inputs, its attached controls and the owning
// theme's board appetite.
type ScoreSet struct {
	InherentScore  float64
	InherentRAG    constants.RAGStatus
	ResidualScore  float64
	ResidualRAG    constants.RAGStatus
	AppetiteStatus constants.AppetiteStatus
}

// ScoringService computes the derived score fields for a risk. The computation
// is deterministic and total: it cannot fail for a validated risk, and calling
// it twice with unchanged inputs yields identical output.
type ScoringService interface {
	// Score produces the derived fields from the risk's current inputs, its
	// attached controls and the owning theme's board appetite. A nil
	// boardAppetite (dangling category or theme reference) falls back to the
	// default rather than raising an error.
	Score(risk *models.Risk, controls []models.RiskControl, boardAppetite *int) ScoreSet

	// Apply stamps a computed ScoreSet onto the risk record, overwriting any
	// prior derived values.
	Apply(risk *models.Risk, scores ScoreSet)
}

type scoringService struct{}

// NewScoringService creates the scoring engine.
func NewScoringService() ScoringService {
	return &scoringService{}
}

// Score implements the scoring algorithm:
//
//	impact    = max(financial, regulatory, reputational), unset dimension -> 0
//	inherent  = impact * probability (probability floor 1)
//	reduction = mean(non-nil effectiveness scores) / 100, or 0 with none recorded
//	residual  = inherent * (1 - reduction)
//	appetite  = OK iff residual <= board appetite (default 3 when unlinked)
func (s *scoringService) Score(risk *models.Risk, controls []models.RiskControl, boardAppetite *int) ScoreSet {
	impact := risk.ImpactScore()
	probability := risk.Probability()

	inherent := float64(impact * probability)
	reduction := ControlEffectiveness(controls) / 100.0
	residual := inherent * (1.0 - reduction)

	appetite := constants.DefaultBoardAppetite
	if boardAppetite != nil {
		appetite = *boardAppetite
	}

	status := constants.AppetiteOK
	if residual > float64(appetite) {
		status = constants.AppetiteOutside
	}

	return ScoreSet{
		InherentScore:  inherent,
		InherentRAG:    ClassifyRAG(inherent),
		ResidualScore:  residual,
		ResidualRAG:    ClassifyRAG(residual),
		AppetiteStatus: status,
	}
}

// Apply overwrites the risk's derived fields with the computed set.
func (s *scoringService) Apply(risk *models.Risk, scores ScoreSet) {
	risk.InherentRiskScore = scores.InherentScore
	risk.InherentRAG = scores.InherentRAG
	risk.ResidualRiskScore = scores.ResidualScore
	risk.ResidualRAG = scores.ResidualRAG
	risk.AppetiteStatus = scores.AppetiteStatus
}

// ClassifyRAG maps a score onto the fixed thresholds: <=4 GREEN, <=9 AMBER,
// above RED. BLUE is a valid status but is never produced here; it is only set
// by lifecycle flows such as closing a risk.
func ClassifyRAG(score float64) constants.RAGStatus {
	switch {
	case score <= constants.RAGGreenCeiling:
		return constants.RAGGreen
	case score <= constants.RAGAmberCeiling:
		return constants.RAGAmber
	default:
		return constants.RAGRed
	}
}

// ControlEffectiveness returns the arithmetic mean of the recorded (non-nil)
// effectiveness scores, or 0 when none are recorded. The average of an empty
// set is undefined, so the empty case is handled explicitly rather than falling
// out of the arithmetic.
func ControlEffectiveness(controls []models.RiskControl) float64 {
	sum := 0
	n := 0
	for _, c := range controls {
		if c.EffectivenessScore == nil {
			continue
		}
		sum += *c.EffectivenessScore
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
