package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackops/riskregistry/internal/application/dto"
	appservice "github.com/trackops/riskregistry/internal/application/service"
	"github.com/trackops/riskregistry/internal/domain/repository"
	"github.com/trackops/riskregistry/pkg/constants"
	apperrors "github.com/trackops/riskregistry/pkg/errors"
)

// brokenCommitTxManager runs the unit of work against the real database but
// fails the transaction at commit time, forcing a rollback of everything the
// callback wrote.
type brokenCommitTxManager struct {
	inner repository.TxManager
	err   error
}

func (m *brokenCommitTxManager) InTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	_ = m.inner.InTx(ctx, func(txCtx context.Context) error {
		if err := fn(txCtx); err != nil {
			return err
		}
		return m.err
	})
	return m.err
}

func TestThemeCreate_AssignsNextDisplayOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.taxonomy.CreateTheme(ctx, &dto.ThemeCreateRequest{
		Code: "OP", Name: "Operational", BoardAppetite: 3,
	})
	require.NoError(t, err)

	second, err := env.taxonomy.CreateTheme(ctx, &dto.ThemeCreateRequest{
		Code: "FIN", Name: "Financial", BoardAppetite: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, first.Order+1, second.Order)
}

func TestThemeCreate_RejectsDuplicateCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.taxonomy.CreateTheme(ctx, &dto.ThemeCreateRequest{
		Code: "OP", Name: "Operational", BoardAppetite: 3,
	})
	require.NoError(t, err)

	_, err = env.taxonomy.CreateTheme(ctx, &dto.ThemeCreateRequest{
		Code: "OP", Name: "Operational again", BoardAppetite: 4,
	})
	require.Error(t, err)
	regErr, ok := apperrors.AsRegistryError(err)
	require.True(t, ok)
	assert.Equal(t, constants.ErrCodeConflict, regErr.Code())
}

func TestThemeAppetiteChange_RescoresRisksUnderTheme(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	theme, err := env.taxonomy.CreateTheme(ctx, &dto.ThemeCreateRequest{
		Code: "OP", Name: "Operational", BoardAppetite: 5,
	})
	require.NoError(t, err)
	category, err := env.taxonomy.CreateCategory(ctx, &dto.CategoryCreateRequest{
		ThemeID: theme.ID, Code: "OP-01", Name: "Process failure",
	})
	require.NoError(t, err)

	// Residual 4 sits inside an appetite of 5.
	risk := env.seedRisk(t, category.ID, "R-001", 2, 2)
	require.Equal(t, constants.AppetiteOK, risk.AppetiteStatus)

	_, err = env.taxonomy.UpdateTheme(ctx, theme.ID, &dto.ThemeUpdateRequest{
		Name:          theme.Name,
		BoardAppetite: 3,
	})
	require.NoError(t, err)

	rescored, err := env.riskRepo.FindByID(ctx, risk.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.AppetiteOutside, rescored.AppetiteStatus)
	assert.Equal(t, 4.0, rescored.ResidualRiskScore)
}

func TestThemeUpdate_WithoutAppetiteChangeLeavesScoresAlone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	theme, err := env.taxonomy.CreateTheme(ctx, &dto.ThemeCreateRequest{
		Code: "OP", Name: "Operational", BoardAppetite: 3,
	})
	require.NoError(t, err)
	category, err := env.taxonomy.CreateCategory(ctx, &dto.CategoryCreateRequest{
		ThemeID: theme.ID, Code: "OP-01", Name: "Process failure",
	})
	require.NoError(t, err)
	risk := env.seedRisk(t, category.ID, "R-001", 2, 2)

	_, err = env.taxonomy.UpdateTheme(ctx, theme.ID, &dto.ThemeUpdateRequest{
		Name:          "Operational (renamed)",
		BoardAppetite: 3,
	})
	require.NoError(t, err)

	after, err := env.riskRepo.FindByID(ctx, risk.ID)
	require.NoError(t, err)
	assert.Equal(t, risk.UpdatedAt.UTC(), after.UpdatedAt.UTC())
}

func TestThemeDelete_BlockedWhileOwningCategories(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	theme, err := env.taxonomy.CreateTheme(ctx, &dto.ThemeCreateRequest{
		Code: "OP", Name: "Operational", BoardAppetite: 3,
	})
	require.NoError(t, err)
	category, err := env.taxonomy.CreateCategory(ctx, &dto.CategoryCreateRequest{
		ThemeID: theme.ID, Code: "OP-01", Name: "Process failure",
	})
	require.NoError(t, err)

	err = env.taxonomy.DeleteTheme(ctx, theme.ID)
	require.Error(t, err)
	regErr, ok := apperrors.AsRegistryError(err)
	require.True(t, ok)
	assert.Equal(t, constants.ErrCodeHasDependents, regErr.Code())

	// Removing the category unblocks the theme.
	require.NoError(t, env.taxonomy.DeleteCategory(ctx, category.ID))
	require.NoError(t, env.taxonomy.DeleteTheme(ctx, theme.ID))
}

func TestCategoryDelete_BlockedWhileRisksFiled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	categoryID := env.seedTaxonomy(t, 3)
	env.seedRisk(t, categoryID, "R-001", 2, 2)

	err := env.taxonomy.DeleteCategory(ctx, categoryID)
	require.Error(t, err)
	regErr, ok := apperrors.AsRegistryError(err)
	require.True(t, ok)
	assert.Equal(t, constants.ErrCodeHasDependents, regErr.Code())
}

func TestCategoryCode_UniqueOnlyWithinTheme(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	op, err := env.taxonomy.CreateTheme(ctx, &dto.ThemeCreateRequest{
		Code: "OP", Name: "Operational", BoardAppetite: 3,
	})
	require.NoError(t, err)
	fin, err := env.taxonomy.CreateTheme(ctx, &dto.ThemeCreateRequest{
		Code: "FIN", Name: "Financial", BoardAppetite: 2,
	})
	require.NoError(t, err)

	_, err = env.taxonomy.CreateCategory(ctx, &dto.CategoryCreateRequest{
		ThemeID: op.ID, Code: "CAT-01", Name: "First",
	})
	require.NoError(t, err)

	// Same code in another theme is fine.
	_, err = env.taxonomy.CreateCategory(ctx, &dto.CategoryCreateRequest{
		ThemeID: fin.ID, Code: "CAT-01", Name: "Reused elsewhere",
	})
	require.NoError(t, err)

	// Same code in the same theme is not.
	_, err = env.taxonomy.CreateCategory(ctx, &dto.CategoryCreateRequest{
		ThemeID: op.ID, Code: "CAT-01", Name: "Duplicate",
	})
	require.Error(t, err)
	regErr, ok := apperrors.AsRegistryError(err)
	require.True(t, ok)
	assert.Equal(t, constants.ErrCodeConflict, regErr.Code())
}

func TestThemeAppetiteChange_FailedCommitKeepsCommittedAppetite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	theme, err := env.taxonomy.CreateTheme(ctx, &dto.ThemeCreateRequest{Code: "OP", Name: "Operational", BoardAppetite: 5})
	require.NoError(t, err)
	category, err := env.taxonomy.CreateCategory(ctx, &dto.CategoryCreateRequest{ThemeID: theme.ID, Code: "OP-01", Name: "Process failure"})
	require.NoError(t, err)

	risk := env.seedRisk(t, category.ID, "R-001", 2, 2)
	require.Equal(t, constants.AppetiteOK, risk.AppetiteStatus)

	commitErr := errors.New("commit refused")
	flaky := appservice.NewTaxonomyAppService(
		&brokenCommitTxManager{inner: env.txManager, err: commitErr},
		env.taxonomyRepo, env.riskRepo, env.rescorer, nil, env.log,
	)
	_, err = flaky.UpdateTheme(ctx, theme.ID, &dto.ThemeUpdateRequest{
		Name:          theme.Name,
		BoardAppetite: 3,
	})
	require.ErrorIs(t, err, commitErr)

	// The rollback must undo both the theme row and the in-flight rescores.
	stored, err := env.taxonomyRepo.FindThemeByID(ctx, theme.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.BoardAppetite)

	unchanged, err := env.riskRepo.FindByID(ctx, risk.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.AppetiteOK, unchanged.AppetiteStatus)

	// A later rescore has to resolve the committed appetite, not whatever the
	// rolled-back transaction read.
	rescored, err := env.risks.Update(ctx, risk.ID, &dto.RiskUpdateRequest{
		CategoryID:          category.ID,
		Name:                risk.Name,
		FinancialImpact:     intPtr(2),
		InherentProbability: intPtr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, constants.AppetiteOK, rescored.AppetiteStatus)
}
