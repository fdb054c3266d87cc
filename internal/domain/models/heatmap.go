package models

import "github.com/trackops/riskregistry/pkg/constants"

// RiskSummary is the slim projection of a risk placed into a heatmap cell.
type RiskSummary struct {
	RefNo string              `json:"ref_no"`
	Name  string              `json:"name"`
	Score float64             `json:"score"`
	RAG   constants.RAGStatus `json:"rag"`
}

// HeatmapCell is one cell of the fixed 5x5 impact x probability grid.
type HeatmapCell struct {
	Impact      int           `json:"impact"`
	Probability int           `json:"probability"`
	Score       int           `json:"score"`
	Risks       []RiskSummary `json:"risks"`
}

// Heatmap is the full projection of the active-risk population onto the grid.
// It is a read-only view; building it never mutates stored data.
type Heatmap struct {
	Cells      []HeatmapCell `json:"cells"`
	TotalRisks int           `json:"total_risks"`
}
