package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trackops/riskregistry/internal/domain/models"
	"github.com/trackops/riskregistry/internal/domain/service"
	"github.com/trackops/riskregistry/pkg/constants"
)

func intPtr(v int) *int { return &v }

func newRisk(financial, regulatory, reputational, probability *int) *models.Risk {
	return &models.Risk{
		ID:                  "risk-1",
		RefNo:               "R-001",
		Name:                "test risk",
		FinancialImpact:     financial,
		RegulatoryImpact:    regulatory,
		ReputationalImpact:  reputational,
		InherentProbability: probability,
		IsActive:            true,
	}
}

func controlsWith(scores ...*int) []models.RiskControl {
	out := make([]models.RiskControl, 0, len(scores))
	for i, s := range scores {
		out = append(out, models.RiskControl{
			ID:                   "rc",
			RiskID:               "risk-1",
			ControlID:            string(rune('a' + i)),
			ImplementationStatus: constants.ImplementationDone,
			EffectivenessScore:   s,
		})
	}
	return out
}

func TestClassifyRAG_Boundaries(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  constants.RAGStatus
	}{
		{"zero", 0, constants.RAGGreen},
		{"exactly green ceiling", 4, constants.RAGGreen},
		{"just above green ceiling", 4.0001, constants.RAGAmber},
		{"five", 5, constants.RAGAmber},
		{"exactly amber ceiling", 9, constants.RAGAmber},
		{"just above amber ceiling", 9.0001, constants.RAGRed},
		{"ten", 10, constants.RAGRed},
		{"max", 25, constants.RAGRed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.ClassifyRAG(tt.score))
		})
	}
}

func TestClassifyRAG_NeverProducesBlue(t *testing.T) {
	for score := 0.0; score <= 25.0; score += 0.5 {
		assert.NotEqual(t, constants.RAGBlue, service.ClassifyRAG(score))
	}
}

func TestControlEffectiveness(t *testing.T) {
	tests := []struct {
		name     string
		controls []models.RiskControl
		want     float64
	}{
		{"no controls", nil, 0},
		{"single scored control", controlsWith(intPtr(60)), 60},
		{"mean of two scores", controlsWith(intPtr(40), intPtr(80)), 60},
		{"nil scores skipped", controlsWith(intPtr(50), nil, nil), 50},
		{"all scores nil", controlsWith(nil, nil), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.ControlEffectiveness(tt.controls))
		})
	}
}

// Scenario: financial=5, regulatory=3, reputational=2, probability=4, no
// controls, appetite=3. Impact takes the max dimension.
func TestScore_UncontrolledRisk(t *testing.T) {
	svc := service.NewScoringService()
	risk := newRisk(intPtr(5), intPtr(3), intPtr(2), intPtr(4))
	appetite := 3

	got := svc.Score(risk, nil, &appetite)

	assert.Equal(t, 20.0, got.InherentScore)
	assert.Equal(t, constants.RAGRed, got.InherentRAG)
	assert.Equal(t, 20.0, got.ResidualScore)
	assert.Equal(t, constants.RAGRed, got.ResidualRAG)
	assert.Equal(t, constants.AppetiteOutside, got.AppetiteStatus)
}

// Same risk with one control at 60% effectiveness: residual drops to 8.0 which
// is AMBER but still outside a board appetite of 3.
func TestScore_ControlledRisk(t *testing.T) {
	svc := service.NewScoringService()
	risk := newRisk(intPtr(5), intPtr(3), intPtr(2), intPtr(4))
	appetite := 3

	got := svc.Score(risk, controlsWith(intPtr(60)), &appetite)

	assert.Equal(t, 20.0, got.InherentScore)
	assert.InDelta(t, 8.0, got.ResidualScore, 1e-9)
	assert.Equal(t, constants.RAGAmber, got.ResidualRAG)
	assert.Equal(t, constants.AppetiteOutside, got.AppetiteStatus)
}

// A fully blank risk scores 0: impact defaults to 0, probability to 1.
func TestScore_BlankRisk(t *testing.T) {
	svc := service.NewScoringService()
	risk := newRisk(nil, nil, nil, nil)
	appetite := 3

	got := svc.Score(risk, nil, &appetite)

	assert.Equal(t, 0.0, got.InherentScore)
	assert.Equal(t, constants.RAGGreen, got.InherentRAG)
	assert.Equal(t, 0.0, got.ResidualScore)
	assert.Equal(t, constants.RAGGreen, got.ResidualRAG)
	assert.Equal(t, constants.AppetiteOK, got.AppetiteStatus)
}

// A dangling category/theme link falls back to the default appetite of 3
// instead of raising an error.
func TestScore_MissingAppetiteUsesDefault(t *testing.T) {
	svc := service.NewScoringService()
	risk := newRisk(intPtr(2), nil, nil, intPtr(2))

	got := svc.Score(risk, nil, nil)

	assert.Equal(t, 4.0, got.ResidualScore)
	assert.Equal(t, constants.AppetiteOutside, got.AppetiteStatus)

	risk2 := newRisk(intPtr(1), nil, nil, intPtr(3))
	got2 := svc.Score(risk2, nil, nil)
	assert.Equal(t, 3.0, got2.ResidualScore)
	assert.Equal(t, constants.AppetiteOK, got2.AppetiteStatus)
}

// Residual equal to the appetite is OK; one unit above is OUTSIDE.
func TestScore_AppetiteBoundary(t *testing.T) {
	svc := service.NewScoringService()
	appetite := 4

	atBoundary := newRisk(intPtr(2), nil, nil, intPtr(2))
	got := svc.Score(atBoundary, nil, &appetite)
	assert.Equal(t, 4.0, got.ResidualScore)
	assert.Equal(t, constants.AppetiteOK, got.AppetiteStatus)

	above := newRisk(intPtr(5), nil, nil, intPtr(1))
	got = svc.Score(above, nil, &appetite)
	assert.Equal(t, 5.0, got.ResidualScore)
	assert.Equal(t, constants.AppetiteOutside, got.AppetiteStatus)
}

func TestScore_Deterministic(t *testing.T) {
	svc := service.NewScoringService()
	risk := newRisk(intPtr(4), intPtr(2), nil, intPtr(3))
	controls := controlsWith(intPtr(30), nil, intPtr(70))
	appetite := 2

	first := svc.Score(risk, controls, &appetite)
	second := svc.Score(risk, controls, &appetite)

	assert.Equal(t, first, second)
}

// Raising any single impact dimension or the probability never lowers the
// inherent score.
func TestScore_Monotonic(t *testing.T) {
	svc := service.NewScoringService()

	base := newRisk(intPtr(3), intPtr(2), intPtr(1), intPtr(3))
	baseScore := svc.Score(base, nil, nil).InherentScore

	for dim := 0; dim < 3; dim++ {
		for v := 1; v <= 5; v++ {
			r := newRisk(intPtr(3), intPtr(2), intPtr(1), intPtr(3))
			switch dim {
			case 0:
				r.FinancialImpact = intPtr(3 + (v % 3))
			case 1:
				r.RegulatoryImpact = intPtr(2 + (v % 4))
			case 2:
				r.ReputationalImpact = intPtr(1 + (v % 5))
			}
			assert.GreaterOrEqual(t, svc.Score(r, nil, nil).InherentScore, baseScore)
		}
	}

	for p := 3; p <= 5; p++ {
		r := newRisk(intPtr(3), intPtr(2), intPtr(1), intPtr(p))
		assert.GreaterOrEqual(t, svc.Score(r, nil, nil).InherentScore, baseScore)
	}
}

// Residual never exceeds inherent, and equals it when no effectiveness scores
// are recorded.
func TestScore_ResidualBoundedByInherent(t *testing.T) {
	svc := service.NewScoringService()

	unscored := newRisk(intPtr(4), nil, nil, intPtr(4))
	got := svc.Score(unscored, controlsWith(nil, nil), nil)
	assert.Equal(t, got.InherentScore, got.ResidualScore)

	for _, eff := range []int{0, 10, 50, 99, 100} {
		r := newRisk(intPtr(4), nil, nil, intPtr(4))
		s := svc.Score(r, controlsWith(intPtr(eff)), nil)
		assert.LessOrEqual(t, s.ResidualScore, s.InherentScore)
	}
}

func TestApply_OverwritesDerivedFields(t *testing.T) {
	svc := service.NewScoringService()
	risk := newRisk(intPtr(5), nil, nil, intPtr(5))
	risk.InherentRiskScore = 1
	risk.InherentRAG = constants.RAGBlue
	risk.ResidualRiskScore = 1
	risk.ResidualRAG = constants.RAGBlue
	risk.AppetiteStatus = constants.AppetiteOK

	svc.Apply(risk, svc.Score(risk, nil, nil))

	assert.Equal(t, 25.0, risk.InherentRiskScore)
	assert.Equal(t, constants.RAGRed, risk.InherentRAG)
	assert.Equal(t, 25.0, risk.ResidualRiskScore)
	assert.Equal(t, constants.RAGRed, risk.ResidualRAG)
	assert.Equal(t, constants.AppetiteOutside, risk.AppetiteStatus)
}
