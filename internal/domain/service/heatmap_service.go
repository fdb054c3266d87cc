package service

import (
	"github.com/trackops/riskregistry/internal/domain/models"
	"github.com/trackops/riskregistry/pkg/constants"
)

// HeatmapService projects a risk population onto the fixed 5x5 impact x
// probability grid. The projection is read-only and safe to rebuild per request.
type HeatmapService interface {
	// Build places every risk in the slice into its grid cell. Callers are
	// expected to pass only active risks; no filtering happens here.
	Build(risks []models.Risk) *models.Heatmap
}

type heatmapService struct{}

// NewHeatmapService creates the heatmap builder.
func NewHeatmapService() HeatmapService {
	return &heatmapService{}
}

// Build constructs the 25 cells in row-major order (impact ascending, then
// probability) and appends a summary of each risk into its cell.
//
// Cell placement deliberately defaults missing impact ratings to 1 rather than
// the scoring engine's 0: every risk must land somewhere on the 1-5 axis, never
// off-grid at 0. The summary's score and RAG still carry the stored inherent
// values, so a fully-blank risk sits in cell (1,1) with score 0.
func (h *heatmapService) Build(risks []models.Risk) *models.Heatmap {
	const n = constants.HeatmapAxisSize

	cells := make([]models.HeatmapCell, 0, n*n)
	index := make(map[[2]int]int, n*n)
	for impact := 1; impact <= n; impact++ {
		for probability := 1; probability <= n; probability++ {
			index[[2]int{impact, probability}] = len(cells)
			cells = append(cells, models.HeatmapCell{
				Impact:      impact,
				Probability: probability,
				Score:       impact * probability,
				Risks:       []models.RiskSummary{},
			})
		}
	}

	for i := range risks {
		r := &risks[i]
		cell := index[[2]int{r.HeatmapImpact(), r.Probability()}]
		cells[cell].Risks = append(cells[cell].Risks, models.RiskSummary{
			RefNo: r.RefNo,
			Name:  r.Name,
			Score: r.InherentRiskScore,
			RAG:   r.InherentRAG,
		})
	}

	return &models.Heatmap{
		Cells:      cells,
		TotalRisks: len(risks),
	}
}
