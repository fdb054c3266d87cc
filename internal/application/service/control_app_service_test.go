package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackops/riskregistry/internal/application/dto"
	"github.com/trackops/riskregistry/pkg/constants"
	apperrors "github.com/trackops/riskregistry/pkg/errors"
)

func seedControl(t *testing.T, env *testEnv, code string) *dto.ControlResponse {
	t.Helper()
	entry, err := env.controls.CreateEntry(context.Background(), &dto.ControlCreateRequest{
		Code: code,
		Name: "Control " + code,
	})
	require.NoError(t, err)
	return entry
}

func TestAttach_RescoresRiskInSameTransaction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	categoryID := env.seedTaxonomy(t, 3)
	risk := env.seedRisk(t, categoryID, "R-001", 4, 5) // inherent 20
	entry := seedControl(t, env, "C-01")

	resp, err := env.controls.Attach(ctx, risk.ID, &dto.AttachControlRequest{
		ControlID:            entry.ID,
		ImplementationStatus: "IMPLEMENTED",
		EffectivenessScore:   intPtr(60),
	})
	require.NoError(t, err)

	// 20 * (1 - 0.60) = 8.0
	require.NotNil(t, resp.Risk)
	assert.Equal(t, 20.0, resp.Risk.InherentRiskScore)
	assert.Equal(t, 8.0, resp.Risk.ResidualRiskScore)
	assert.Equal(t, constants.RAGAmber, resp.Risk.ResidualRAG)
	assert.Equal(t, constants.AppetiteOutside, resp.Risk.AppetiteStatus)
}

func TestAttach_DuplicateControlLeavesScoresUnchanged(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	categoryID := env.seedTaxonomy(t, 3)
	risk := env.seedRisk(t, categoryID, "R-001", 4, 5)
	entry := seedControl(t, env, "C-01")

	_, err := env.controls.Attach(ctx, risk.ID, &dto.AttachControlRequest{
		ControlID:            entry.ID,
		ImplementationStatus: "IMPLEMENTED",
		EffectivenessScore:   intPtr(60),
	})
	require.NoError(t, err)

	before, err := env.riskRepo.FindByID(ctx, risk.ID)
	require.NoError(t, err)

	_, err = env.controls.Attach(ctx, risk.ID, &dto.AttachControlRequest{
		ControlID:            entry.ID,
		ImplementationStatus: "PLANNED",
		EffectivenessScore:   intPtr(90),
	})
	require.Error(t, err)
	regErr, ok := apperrors.AsRegistryError(err)
	require.True(t, ok)
	assert.Equal(t, constants.ErrCodeDuplicateControl, regErr.Code())

	after, err := env.riskRepo.FindByID(ctx, risk.ID)
	require.NoError(t, err)
	assert.Equal(t, before.ResidualRiskScore, after.ResidualRiskScore)
	assert.Equal(t, before.UpdatedAt.UTC(), after.UpdatedAt.UTC())

	attachments, err := env.controlRepo.ListAttachmentsByRisk(ctx, risk.ID)
	require.NoError(t, err)
	assert.Len(t, attachments, 1)
}

func TestAttach_UnassessedControlsAreSkippedInAverage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	categoryID := env.seedTaxonomy(t, 3)
	risk := env.seedRisk(t, categoryID, "R-001", 4, 5) // inherent 20
	assessed := seedControl(t, env, "C-01")
	unassessed := seedControl(t, env, "C-02")

	_, err := env.controls.Attach(ctx, risk.ID, &dto.AttachControlRequest{
		ControlID:            assessed.ID,
		ImplementationStatus: "IMPLEMENTED",
		EffectivenessScore:   intPtr(50),
	})
	require.NoError(t, err)

	resp, err := env.controls.Attach(ctx, risk.ID, &dto.AttachControlRequest{
		ControlID:            unassessed.ID,
		ImplementationStatus: "PLANNED",
	})
	require.NoError(t, err)

	// Mean over assessed scores only: 50, not 25.
	assert.Equal(t, 10.0, resp.Risk.ResidualRiskScore)
}

func TestUpdateAttachment_RescoresRisk(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	categoryID := env.seedTaxonomy(t, 3)
	risk := env.seedRisk(t, categoryID, "R-001", 4, 5)
	entry := seedControl(t, env, "C-01")

	attached, err := env.controls.Attach(ctx, risk.ID, &dto.AttachControlRequest{
		ControlID:            entry.ID,
		ImplementationStatus: "PLANNED",
	})
	require.NoError(t, err)
	assert.Equal(t, 20.0, attached.Risk.ResidualRiskScore)

	updated, err := env.controls.UpdateAttachment(ctx, attached.ID, &dto.AttachmentUpdateRequest{
		ImplementationStatus: "IMPLEMENTED",
		EffectivenessScore:   intPtr(75),
	})
	require.NoError(t, err)
	assert.Equal(t, 5.0, updated.Risk.ResidualRiskScore)
	assert.Equal(t, constants.RAGAmber, updated.Risk.ResidualRAG)
}

func TestDetach_RestoresResidualTowardInherent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	categoryID := env.seedTaxonomy(t, 3)
	risk := env.seedRisk(t, categoryID, "R-001", 4, 5)
	entry := seedControl(t, env, "C-01")

	attached, err := env.controls.Attach(ctx, risk.ID, &dto.AttachControlRequest{
		ControlID:            entry.ID,
		ImplementationStatus: "IMPLEMENTED",
		EffectivenessScore:   intPtr(60),
	})
	require.NoError(t, err)
	require.Equal(t, 8.0, attached.Risk.ResidualRiskScore)

	detached, err := env.controls.Detach(ctx, attached.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, detached.ResidualRiskScore)
	assert.Equal(t, constants.RAGRed, detached.ResidualRAG)
}

func TestDeleteEntry_BlockedWhileAttached(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	categoryID := env.seedTaxonomy(t, 3)
	risk := env.seedRisk(t, categoryID, "R-001", 3, 3)
	entry := seedControl(t, env, "C-01")

	attached, err := env.controls.Attach(ctx, risk.ID, &dto.AttachControlRequest{
		ControlID:            entry.ID,
		ImplementationStatus: "IMPLEMENTED",
		EffectivenessScore:   intPtr(40),
	})
	require.NoError(t, err)

	err = env.controls.DeleteEntry(ctx, entry.ID)
	require.Error(t, err)
	regErr, ok := apperrors.AsRegistryError(err)
	require.True(t, ok)
	assert.Equal(t, constants.ErrCodeHasDependents, regErr.Code())

	// Detaching frees the entry for deletion.
	_, err = env.controls.Detach(ctx, attached.ID)
	require.NoError(t, err)
	require.NoError(t, env.controls.DeleteEntry(ctx, entry.ID))
}

func TestCreateEntry_RejectsDuplicateCode(t *testing.T) {
	env := newTestEnv(t)
	seedControl(t, env, "C-01")

	_, err := env.controls.CreateEntry(context.Background(), &dto.ControlCreateRequest{
		Code: "C-01",
		Name: "Duplicate",
	})
	require.Error(t, err)
	regErr, ok := apperrors.AsRegistryError(err)
	require.True(t, ok)
	assert.Equal(t, constants.ErrCodeConflict, regErr.Code())
}
