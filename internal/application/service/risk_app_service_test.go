package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackops/riskregistry/internal/application/dto"
	"github.com/trackops/riskregistry/internal/domain/models"
	"github.com/trackops/riskregistry/pkg/constants"
	apperrors "github.com/trackops/riskregistry/pkg/errors"
)

func TestRiskCreate_ComputesScoresOnWrite(t *testing.T) {
	env := newTestEnv(t)
	categoryID := env.seedTaxonomy(t, 3)

	risk, err := env.risks.Create(context.Background(), &dto.RiskCreateRequest{
		RefNo:               "R-001",
		CategoryID:          categoryID,
		Name:                "Vendor outage",
		FinancialImpact:     intPtr(4),
		RegulatoryImpact:    intPtr(2),
		ReputationalImpact:  intPtr(3),
		InherentProbability: intPtr(5),
	})
	require.NoError(t, err)

	assert.Equal(t, 20.0, risk.InherentRiskScore)
	assert.Equal(t, constants.RAGRed, risk.InherentRAG)
	assert.Equal(t, 20.0, risk.ResidualRiskScore)
	assert.Equal(t, constants.RAGRed, risk.ResidualRAG)
	assert.Equal(t, constants.AppetiteOutside, risk.AppetiteStatus)

	// The derived fields are persisted, not just returned.
	stored, err := env.riskRepo.FindByID(context.Background(), risk.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, stored.InherentRiskScore)
	assert.Equal(t, constants.AppetiteOutside, stored.AppetiteStatus)
}

func TestRiskCreate_BlankRiskScoresZero(t *testing.T) {
	env := newTestEnv(t)
	categoryID := env.seedTaxonomy(t, 3)

	risk, err := env.risks.Create(context.Background(), &dto.RiskCreateRequest{
		RefNo:      "R-002",
		CategoryID: categoryID,
		Name:       "Unassessed risk",
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, risk.InherentRiskScore)
	assert.Equal(t, constants.RAGGreen, risk.InherentRAG)
	assert.Equal(t, constants.AppetiteOK, risk.AppetiteStatus)
}

func TestRiskCreate_RejectsDuplicateRefNo(t *testing.T) {
	env := newTestEnv(t)
	categoryID := env.seedTaxonomy(t, 3)
	env.seedRisk(t, categoryID, "R-001", 2, 2)

	_, err := env.risks.Create(context.Background(), &dto.RiskCreateRequest{
		RefNo:      "R-001",
		CategoryID: categoryID,
		Name:       "Second risk with same ref",
	})
	require.Error(t, err)
	regErr, ok := apperrors.AsRegistryError(err)
	require.True(t, ok)
	assert.Equal(t, constants.ErrCodeConflict, regErr.Code())
}

func TestRiskCreate_RejectsUnknownCategory(t *testing.T) {
	env := newTestEnv(t)
	env.seedTaxonomy(t, 3)

	_, err := env.risks.Create(context.Background(), &dto.RiskCreateRequest{
		RefNo:      "R-404",
		CategoryID: "no-such-category",
		Name:       "Orphan",
	})
	require.Error(t, err)
	regErr, ok := apperrors.AsRegistryError(err)
	require.True(t, ok)
	assert.Equal(t, constants.ErrCodeNotFound, regErr.Code())
}

func TestRiskCreate_RejectsOutOfRangeRating(t *testing.T) {
	env := newTestEnv(t)
	categoryID := env.seedTaxonomy(t, 3)

	_, err := env.risks.Create(context.Background(), &dto.RiskCreateRequest{
		RefNo:           "R-003",
		CategoryID:      categoryID,
		Name:            "Bad rating",
		FinancialImpact: intPtr(6),
	})
	require.Error(t, err)
	regErr, ok := apperrors.AsRegistryError(err)
	require.True(t, ok)
	assert.Equal(t, constants.ErrCodeValidation, regErr.Code())
}

func TestRiskUpdate_RescoresSynchronously(t *testing.T) {
	env := newTestEnv(t)
	categoryID := env.seedTaxonomy(t, 3)
	created := env.seedRisk(t, categoryID, "R-001", 4, 5)
	require.Equal(t, 20.0, created.InherentRiskScore)

	updated, err := env.risks.Update(context.Background(), created.ID, &dto.RiskUpdateRequest{
		CategoryID:          categoryID,
		Name:                created.Name,
		FinancialImpact:     intPtr(2),
		InherentProbability: intPtr(1),
	})
	require.NoError(t, err)

	assert.Equal(t, 2.0, updated.InherentRiskScore)
	assert.Equal(t, constants.RAGGreen, updated.InherentRAG)
	assert.Equal(t, constants.AppetiteOK, updated.AppetiteStatus)
}

func TestRiskList_FiltersAndPaginates(t *testing.T) {
	env := newTestEnv(t)
	categoryID := env.seedTaxonomy(t, 3)
	env.seedRisk(t, categoryID, "R-001", 5, 5) // residual 25, RED
	env.seedRisk(t, categoryID, "R-002", 4, 5) // residual 20, RED
	env.seedRisk(t, categoryID, "R-003", 2, 2) // residual 4, GREEN

	page, err := env.risks.List(context.Background(), &dto.RiskListQuery{
		ResidualRAG: "RED",
		Page:        1,
		PageSize:    1,
	})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, int64(2), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
}

func TestRiskDelete_RemovesPairingsAndActions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	categoryID := env.seedTaxonomy(t, 3)
	risk := env.seedRisk(t, categoryID, "R-001", 3, 3)

	entry, err := env.controls.CreateEntry(ctx, &dto.ControlCreateRequest{Code: "C-01", Name: "Reconciliation"})
	require.NoError(t, err)
	_, err = env.controls.Attach(ctx, risk.ID, &dto.AttachControlRequest{
		ControlID:            entry.ID,
		ImplementationStatus: "IMPLEMENTED",
		EffectivenessScore:   intPtr(50),
	})
	require.NoError(t, err)

	_, err = env.actions.Create(ctx, risk.ID, &dto.ActionCreateRequest{Title: "Follow up", Priority: "HIGH"})
	require.NoError(t, err)

	require.NoError(t, env.risks.Delete(ctx, risk.ID))

	_, err = env.riskRepo.FindByID(ctx, risk.ID)
	require.Error(t, err)

	attachments, err := env.controlRepo.ListAttachmentsByRisk(ctx, risk.ID)
	require.NoError(t, err)
	assert.Empty(t, attachments)

	actions, err := env.actionRepo.ListByRisk(ctx, risk.ID)
	require.NoError(t, err)
	assert.Empty(t, actions)

	// The library entry survives; only the pairing is removed.
	_, err = env.controlRepo.FindEntryByID(ctx, entry.ID)
	require.NoError(t, err)
}

func TestRecalculateAll_RepairsDriftedScores(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	categoryID := env.seedTaxonomy(t, 3)
	r1 := env.seedRisk(t, categoryID, "R-001", 4, 5)
	r2 := env.seedRisk(t, categoryID, "R-002", 2, 2)
	env.seedRisk(t, categoryID, "R-003", 1, 1)

	// Corrupt stored derived fields behind the service's back.
	require.NoError(t, env.db.Model(&models.Risk{}).
		Where("id IN ?", []string{r1.ID, r2.ID}).
		Updates(map[string]interface{}{
			"inherent_risk_score": 999.0,
			"residual_rag":        string(constants.RAGBlue),
		}).Error)

	resp, err := env.risks.RecalculateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Processed)

	repaired, err := env.riskRepo.FindByID(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, repaired.InherentRiskScore)
	assert.Equal(t, constants.RAGRed, repaired.ResidualRAG)
}

func TestGetHeatmap_PlacesOnlyActiveRisks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	categoryID := env.seedTaxonomy(t, 3)
	active := env.seedRisk(t, categoryID, "R-001", 5, 4)
	parked := env.seedRisk(t, categoryID, "R-002", 3, 3)

	inactive := false
	_, err := env.risks.Update(ctx, parked.ID, &dto.RiskUpdateRequest{
		CategoryID:          categoryID,
		Name:                parked.Name,
		FinancialImpact:     intPtr(3),
		InherentProbability: intPtr(3),
		IsActive:            &inactive,
	})
	require.NoError(t, err)

	hm, err := env.risks.GetHeatmap(ctx, "")
	require.NoError(t, err)
	require.Len(t, hm.Cells, 25)
	assert.Equal(t, 1, hm.TotalRisks)

	for _, cell := range hm.Cells {
		if cell.Impact == 5 && cell.Probability == 4 {
			require.Len(t, cell.Risks, 1)
			assert.Equal(t, active.RefNo, cell.Risks[0].RefNo)
		} else {
			assert.Empty(t, cell.Risks)
		}
	}
}

func TestRiskUpdate_CategoryMoveRefreshesBothThemeHeatmaps(t *testing.T) {
	env, mr := newCachedTestEnv(t)
	ctx := context.Background()

	themeA, err := env.taxonomy.CreateTheme(ctx, &dto.ThemeCreateRequest{Code: "OP", Name: "Operational", BoardAppetite: 5})
	require.NoError(t, err)
	categoryA, err := env.taxonomy.CreateCategory(ctx, &dto.CategoryCreateRequest{ThemeID: themeA.ID, Code: "OP-01", Name: "Process failure"})
	require.NoError(t, err)
	themeB, err := env.taxonomy.CreateTheme(ctx, &dto.ThemeCreateRequest{Code: "TE", Name: "Technology", BoardAppetite: 5})
	require.NoError(t, err)
	categoryB, err := env.taxonomy.CreateCategory(ctx, &dto.CategoryCreateRequest{ThemeID: themeB.ID, Code: "TE-01", Name: "System outage"})
	require.NoError(t, err)

	risk := env.seedRisk(t, categoryA.ID, "R-100", 4, 5)

	// Warm the per-theme projections so moving the risk has entries to drop.
	hmA, err := env.risks.GetHeatmap(ctx, themeA.ID)
	require.NoError(t, err)
	require.Equal(t, 1, hmA.TotalRisks)
	hmB, err := env.risks.GetHeatmap(ctx, themeB.ID)
	require.NoError(t, err)
	require.Equal(t, 0, hmB.TotalRisks)
	require.True(t, mr.Exists("riskregistry:heatmap:theme:"+themeA.ID))

	_, err = env.risks.Update(ctx, risk.ID, &dto.RiskUpdateRequest{
		CategoryID:          categoryB.ID,
		Name:                risk.Name,
		FinancialImpact:     intPtr(4),
		InherentProbability: intPtr(5),
	})
	require.NoError(t, err)

	hmA, err = env.risks.GetHeatmap(ctx, themeA.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, hmA.TotalRisks)
	hmB, err = env.risks.GetHeatmap(ctx, themeB.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, hmB.TotalRisks)
}
