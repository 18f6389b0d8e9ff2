package production_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/material"
	"github.com/andrescamacho/industry-go/internal/domain/production"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
	"github.com/andrescamacho/industry-go/test/helpers"
)

func TestReact_AlchemyWithReprocessingAndFeedback(t *testing.T) {
	// Arrange
	catalog := helpers.NewFixtureCatalog(t)
	ctx := helpers.NewReactionContext(t, catalog)
	engine := production.NewEngine(0)

	// Act
	tree, err := engine.React(ctx, helpers.AlchemyReaction, 720, true, true, 1)

	// Assert
	require.NoError(t, err)
	root := tree.MustNode(tree.Root())
	assert.Equal(t, map[int64]float64{helpers.Platinum: 72000, helpers.Technetium: 7200}, root.Input.ToMap())
	assert.Equal(t, map[int64]float64{helpers.PlatinumTechnite: 14400}, root.Output.ToMap())
	assert.Equal(t, 720*3600.0, root.Seconds)
	assert.True(t, root.Reprocessed)
	assert.True(t, root.Feedback)
	assert.Empty(t, root.Children())
	assert.Equal(t, helpers.ReactionLine, root.AssemblyLineID)
}

func TestReact_FeedbackRemovesExactlyTheCancelledAmount(t *testing.T) {
	catalog := helpers.NewFixtureCatalog(t)
	ctx := helpers.NewReactionContext(t, catalog)
	engine := production.NewEngine(0)

	withFeedback, err := engine.React(ctx, helpers.AlchemyReaction, 720, true, true, 0)
	require.NoError(t, err)
	withoutFeedback, err := engine.React(ctx, helpers.AlchemyReaction, 720, true, false, 0)
	require.NoError(t, err)

	fed := withFeedback.MustNode(withFeedback.Root())
	raw := withoutFeedback.MustNode(withoutFeedback.Root())
	assert.Equal(t, map[int64]float64{helpers.PlatinumTechnite: 14400, helpers.Platinum: 72000}, raw.Output.ToMap())
	assert.Equal(t, 144000.0, raw.Input.Quantity(helpers.Platinum))
	assert.Equal(t, raw.Input.Quantity(helpers.Platinum)-raw.Output.Quantity(helpers.Platinum), fed.Input.Quantity(helpers.Platinum))
	assert.False(t, fed.Output.Has(helpers.Platinum))
	assert.False(t, raw.Feedback)
}

func TestReact_FlagsIgnoredForNonAlchemyReactions(t *testing.T) {
	catalog := helpers.NewFixtureCatalog(t)
	ctx := helpers.NewReactionContext(t, catalog)
	engine := production.NewEngine(0)

	tree, err := engine.React(ctx, helpers.TechniteReaction, 2, true, true, 0)

	require.NoError(t, err)
	root := tree.MustNode(tree.Root())
	assert.False(t, root.Reprocessed)
	assert.False(t, root.Feedback)
	assert.Equal(t, map[int64]float64{helpers.Platinum: 200, helpers.Technetium: 200}, root.Input.ToMap())
	assert.Equal(t, map[int64]float64{helpers.PlatinumTechnite: 400}, root.Output.ToMap())
}

func TestReact_WithoutReprocessingKeepsUnrefinedOutput(t *testing.T) {
	catalog := helpers.NewFixtureCatalog(t)
	ctx := helpers.NewReactionContext(t, catalog)
	engine := production.NewEngine(0)

	tree, err := engine.React(ctx, helpers.AlchemyReaction, 10, false, true, 0)

	require.NoError(t, err)
	root := tree.MustNode(tree.Root())
	assert.False(t, root.Reprocessed)
	assert.True(t, root.Feedback)
	assert.Equal(t, map[int64]float64{helpers.UnrefinedTechnite: 10}, root.Output.ToMap())
	assert.Equal(t, 2000.0, root.Input.Quantity(helpers.Platinum))
}

func TestReact_RejectsNonPositiveCycles(t *testing.T) {
	catalog := helpers.NewFixtureCatalog(t)
	ctx := helpers.NewReactionContext(t, catalog)

	_, err := production.NewEngine(0).React(ctx, helpers.TechniteReaction, 0, false, false, 0)

	assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
}

func TestReact_NoReactionFacility(t *testing.T) {
	catalog := helpers.NewFixtureCatalog(t)
	ctx := helpers.NewStationContext(t, catalog, nil)

	_, err := production.NewEngine(0).React(ctx, helpers.TechniteReaction, 1, false, false, 0)

	assert.ErrorIs(t, err, shared.ErrNoCompatibleFacility)
}

func TestReactExact_FractionalCycles(t *testing.T) {
	// Arrange
	catalog := helpers.NewFixtureCatalog(t)
	ctx := helpers.NewReactionContext(t, catalog)
	engine := production.NewEngine(0)

	// Act
	exact, err := engine.ReactExact(ctx, helpers.AlchemyReaction, helpers.PlatinumTechnite, 30, 0)
	require.NoError(t, err)
	direct, err := engine.React(ctx, helpers.AlchemyReaction, 1.5, true, true, 0)
	require.NoError(t, err)

	// Assert
	exactRoot := exact.MustNode(exact.Root())
	directRoot := direct.MustNode(direct.Root())
	assert.Equal(t, 1.5, exactRoot.Runs)
	assert.True(t, exactRoot.Input.Equal(directRoot.Input))
	assert.True(t, exactRoot.Output.Equal(directRoot.Output))
	assert.Equal(t, 30.0, exactRoot.Output.Quantity(helpers.PlatinumTechnite))
	assert.Equal(t, 5400.0, exactRoot.Seconds)
}

func TestReactExact_DefaultsToReactionProduct(t *testing.T) {
	catalog := helpers.NewFixtureCatalog(t)
	ctx := helpers.NewReactionContext(t, catalog)

	tree, err := production.NewEngine(0).ReactExact(ctx, helpers.AlchemyReaction, 0, 14400, 0)

	require.NoError(t, err)
	assert.Equal(t, 720.0, tree.MustNode(tree.Root()).Runs)
}

func TestReactExact_NoOutputDefined(t *testing.T) {
	catalog := helpers.NewFixtureCatalog(t)
	ctx := helpers.NewReactionContext(t, catalog)

	_, err := production.NewEngine(0).ReactExact(ctx, helpers.TechniteReaction, helpers.Fullerides, 100, 0)

	assert.ErrorIs(t, err, shared.ErrNoOutputDefined)
}

func TestBestReaction_PicksLeastInput(t *testing.T) {
	catalog := helpers.NewFixtureCatalog(t)
	ctx := helpers.NewReactionContext(t, catalog)

	tree, err := production.NewEngine(0).BestReaction(ctx, helpers.PlatinumTechnite, 200, 0)

	require.NoError(t, err)
	root := tree.MustNode(tree.Root())
	assert.Equal(t, helpers.TechniteReaction, root.SubjectID)
	assert.Equal(t, 1.0, root.Runs)
}

func TestBestReaction_NotAReactionProduct(t *testing.T) {
	catalog := helpers.NewFixtureCatalog(t)
	ctx := helpers.NewReactionContext(t, catalog)

	_, err := production.NewEngine(0).BestReaction(ctx, helpers.Tritanium, 10, 0)

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestReact_RecursionReplacesReactionProductInputs(t *testing.T) {
	// Arrange
	catalog := helpers.NewFixtureCatalog(t)
	ctx := helpers.NewReactionContext(t, catalog)
	engine := production.NewEngine(0)

	// Act
	tree, err := engine.React(ctx, helpers.FulleridesReaction, 1, false, false, 1)

	// Assert
	require.NoError(t, err)
	root := tree.MustNode(tree.Root())
	assert.Equal(t, map[int64]float64{helpers.Technetium: 50}, root.Input.ToMap())
	require.Len(t, root.Children(), 1)
	child := tree.MustNode(root.Children()[0])
	assert.Equal(t, helpers.TechniteReaction, child.SubjectID)
	assert.Equal(t, 100.0, child.Output.Quantity(helpers.PlatinumTechnite))

	assert.Equal(t, map[int64]float64{helpers.Platinum: 50, helpers.Technetium: 100}, tree.TotalMaterial(tree.Root()).ToMap())
	assert.Equal(t, 5400.0, tree.TotalTime(tree.Root()))
	level, _ := tree.TotalSkills(tree.Root()).Level(industry.SkillReactions)
	assert.Equal(t, 3, level)
}

func TestReact_RecursionDepthIsBounded(t *testing.T) {
	catalog := helpers.NewFixtureCatalog(t)
	ctx := helpers.NewReactionContext(t, catalog)

	for depth := 0; depth <= 4; depth++ {
		tree, err := production.NewEngine(2).React(ctx, helpers.FulleridesReaction, 1, false, false, depth)
		require.NoError(t, err)

		want := depth
		if want > 1 {
			want = 1 // nothing below technite is a reaction product
		}
		assert.Equal(t, want, tree.Depth(tree.Root()), "depth %d", depth)
	}
}

func TestReact_WithoutRecursionKeepsInputs(t *testing.T) {
	catalog := helpers.NewFixtureCatalog(t)
	ctx := helpers.NewReactionContext(t, catalog)

	tree, err := production.NewEngine(0).React(ctx, helpers.FulleridesReaction, 1, false, false, 0)

	require.NoError(t, err)
	assert.True(t, tree.MustNode(tree.Root()).Input.Equal(material.MustLedger(map[int64]float64{
		helpers.PlatinumTechnite: 100,
		helpers.Technetium:       50,
	})))
}

func TestReprocess_AtBestStation(t *testing.T) {
	catalog := helpers.NewFixtureCatalog(t)
	ctx := helpers.NewReactionContext(t, catalog)

	out, err := production.NewEngine(0).Reprocess(ctx, helpers.CompressedVeldspar, 100)

	require.NoError(t, err)
	assert.Equal(t, map[int64]float64{helpers.Tritanium: 20000}, out.ToMap())
}
