package industry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
	"github.com/andrescamacho/industry-go/test/helpers"
)

func TestReprocessingLedger_ScalesByUnitsYieldAndSpecialization(t *testing.T) {
	// Arrange
	catalog := helpers.NewFixtureCatalog(t)
	scordite, err := catalog.Item(helpers.CompressedScordite)
	require.NoError(t, err)

	// Act
	out, err := scordite.ReprocessingLedger(200, 0.8825, 1.0)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, map[int64]float64{
		helpers.Tritanium: 26475,
		helpers.Pyerite:   15885,
	}, out.ToMap())
}

func TestReprocessingLedger_IsDeterministic(t *testing.T) {
	catalog := helpers.NewFixtureCatalog(t)
	veldspar, err := catalog.Item(helpers.CompressedVeldspar)
	require.NoError(t, err)

	first, err := veldspar.ReprocessingLedger(200, 0.8825, 1.0)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := veldspar.ReprocessingLedger(200, 0.8825, 1.0)
		require.NoError(t, err)
		assert.True(t, first.Equal(again))
	}
	assert.Equal(t, 70600.0, first.Quantity(helpers.Tritanium))
}

func TestReprocessingLedger_OnlyWholePortions(t *testing.T) {
	item, err := industry.NewGenericItem(industry.ItemAttributes{
		TypeID: 1230, Name: "Veldspar", PortionSize: 100,
		ReprocessingMaterials: map[int64]float64{34: 415},
	})
	require.NoError(t, err)

	out, err := item.ReprocessingLedger(250, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 830.0, out.Quantity(34))

	out, err = item.ReprocessingLedger(99, 1, 1)
	require.NoError(t, err)
	assert.True(t, out.IsEmpty())
}

func TestReprocessingLedger_NotReprocessable(t *testing.T) {
	catalog := helpers.NewFixtureCatalog(t)
	tritanium, err := catalog.Item(helpers.Tritanium)
	require.NoError(t, err)

	_, err = tritanium.ReprocessingLedger(100, 1, 1)

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestItemVariants_DerivedByCatalog(t *testing.T) {
	catalog := helpers.NewFixtureCatalog(t)

	tests := []struct {
		typeID int64
		kind   industry.ItemKind
	}{
		{helpers.Tritanium, industry.KindSellable},
		{helpers.Rifter, industry.KindManufacturable},
		{helpers.Fullerides, industry.KindReactionProduct},
		{helpers.PlatinumTechnite, industry.KindReactionProduct},
		{helpers.UnrefinedTechnite, industry.KindReactionProduct},
	}

	for _, tt := range tests {
		item, err := catalog.Item(tt.typeID)
		require.NoError(t, err)
		assert.Equal(t, tt.kind, item.Kind(), "item %d", tt.typeID)
	}

	technite, err := catalog.Item(helpers.PlatinumTechnite)
	require.NoError(t, err)
	product, ok := technite.(*industry.ReactionProductItem)
	require.True(t, ok)
	assert.Equal(t, []int64{helpers.AlchemyReaction, helpers.TechniteReaction}, product.ReactionIDs())

	rifter, err := catalog.Item(helpers.Rifter)
	require.NoError(t, err)
	manufacturable, ok := rifter.(*industry.ManufacturableItem)
	require.True(t, ok)
	assert.Equal(t, helpers.RifterBlueprint, manufacturable.BlueprintID())
	sellable, ok := industry.AsSellable(rifter)
	require.True(t, ok)
	assert.Equal(t, int64(64), sellable.MarketGroupID())
}

func TestCatalog_ReactionAlchemyFlag(t *testing.T) {
	catalog := helpers.NewFixtureCatalog(t)

	alchemy, err := catalog.Reaction(helpers.AlchemyReaction)
	require.NoError(t, err)
	plain, err := catalog.Reaction(helpers.TechniteReaction)
	require.NoError(t, err)

	assert.True(t, alchemy.IsAlchemy())
	assert.Equal(t, helpers.PlatinumTechnite, alchemy.ProductID())
	assert.False(t, plain.IsAlchemy())
	assert.Equal(t, helpers.PlatinumTechnite, plain.ProductID())
}

func TestCatalog_NotFound(t *testing.T) {
	catalog := helpers.NewFixtureCatalog(t)

	_, itemErr := catalog.Item(999999)
	_, reactionErr := catalog.Reaction(999999)
	_, nameErr := catalog.ItemIDByName("Unobtainium")

	assert.ErrorIs(t, itemErr, shared.ErrNotFound)
	assert.ErrorIs(t, reactionErr, shared.ErrNotFound)
	assert.ErrorIs(t, nameErr, shared.ErrNotFound)
}

func TestCatalog_ItemIDByNameIsCaseInsensitive(t *testing.T) {
	catalog := helpers.NewFixtureCatalog(t)

	id, err := catalog.ItemIDByName("  platinum technite ")

	require.NoError(t, err)
	assert.Equal(t, helpers.PlatinumTechnite, id)
}

func TestCatalogBuilder_RejectsDanglingReactionItems(t *testing.T) {
	b := industry.NewCatalogBuilder()
	b.AddItem(industry.ItemAttributes{TypeID: 1, Name: "A"}, 0)
	b.AddReaction(industry.ReactionAttributes{TypeID: 100, Inputs: map[int64]float64{1: 1}, Outputs: map[int64]float64{2: 1}})

	_, err := b.Build()

	assert.ErrorIs(t, err, shared.ErrNotFound)
}
