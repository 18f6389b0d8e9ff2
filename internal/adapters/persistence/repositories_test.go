package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/industry-go/internal/adapters/persistence"
	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/market"
	"github.com/andrescamacho/industry-go/internal/domain/material"
	"github.com/andrescamacho/industry-go/internal/domain/process"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
	"github.com/andrescamacho/industry-go/test/helpers"
)

const (
	tritanium = int64(34)
	theForge  = int64(10000002)
)

var day0 = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int64) *int64       { return &v }

func stat(date time.Time, sell float64) *market.PriceStat {
	return &market.PriceStat{
		ItemID:          tritanium,
		RegionID:        theForge,
		Date:            date,
		GeneratedAt:     date.Add(6 * time.Hour),
		SellPrice:       floatPtr(sell),
		AvgSellOrderAge: intPtr(71),
		SupplyIn5:       intPtr(145),
		AvgVolume:       1000,
		AvgTransactions: 10,
	}
}

func TestPriceStatRepository_SaveAndFindLatest(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := persistence.NewGormPriceStatRepository(helpers.NewTestDB(t))
	require.NoError(t, repo.Save(ctx, stat(day0, 5.0)))
	require.NoError(t, repo.Save(ctx, stat(day0.AddDate(0, 0, 1), 5.5)))

	// Act
	latest, err := repo.FindLatest(ctx, tritanium, theForge)

	// Assert
	require.NoError(t, err)
	assert.True(t, latest.Date.Equal(day0.AddDate(0, 0, 1)))
	require.NotNil(t, latest.SellPrice)
	assert.Equal(t, 5.5, *latest.SellPrice)
	assert.Nil(t, latest.BuyPrice)
	assert.Equal(t, int64(145), *latest.SupplyIn5)
}

func TestPriceStatRepository_SaveReplacesSameDay(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := persistence.NewGormPriceStatRepository(helpers.NewTestDB(t))
	require.NoError(t, repo.Save(ctx, stat(day0, 5.0)))

	// Act
	err := repo.Save(ctx, stat(day0, 6.0))

	// Assert
	require.NoError(t, err)
	stats, err := repo.FindRange(ctx, tritanium, theForge, day0, day0)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 6.0, *stats[0].SellPrice)
}

func TestPriceStatRepository_FindRangeIsInclusiveAndOrdered(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := persistence.NewGormPriceStatRepository(helpers.NewTestDB(t))
	for i := 4; i >= 0; i-- {
		require.NoError(t, repo.Save(ctx, stat(day0.AddDate(0, 0, i), float64(i))))
	}

	// Act
	stats, err := repo.FindRange(ctx, tritanium, theForge, day0.AddDate(0, 0, 1), day0.AddDate(0, 0, 3).Add(15*time.Hour))

	// Assert
	require.NoError(t, err)
	require.Len(t, stats, 3)
	for i, s := range stats {
		assert.Equal(t, float64(i+1), *s.SellPrice)
	}
}

func TestPriceStatRepository_FindLatestNotFound(t *testing.T) {
	// Arrange
	repo := persistence.NewGormPriceStatRepository(helpers.NewTestDB(t))

	// Act
	_, err := repo.FindLatest(context.Background(), tritanium, theForge)

	// Assert
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestBaselineRepository_SaveReplacesBaseline(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := persistence.NewGormBaselineRepository(helpers.NewTestDB(t))
	require.NoError(t, repo.SaveBaseline(ctx, tritanium, theForge, market.Baseline{AvgVolume: 700, AvgTransactions: 7}, day0))

	// Act
	err := repo.SaveBaseline(ctx, tritanium, theForge, market.Baseline{AvgVolume: 900, AvgTransactions: 9}, day0.AddDate(0, 0, 1))

	// Assert
	require.NoError(t, err)
	baseline, err := repo.GetBaseline(ctx, tritanium, theForge)
	require.NoError(t, err)
	assert.Equal(t, market.Baseline{AvgVolume: 900, AvgTransactions: 9}, baseline)

	_, err = repo.GetBaseline(ctx, tritanium, 10000043)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestIndustryIndexRepository_KeepsNewestObservation(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := persistence.NewGormIndustryIndexRepository(helpers.NewTestDB(t))
	const jita = int64(30000142)
	newer := industry.IndustryIndex{Value: 0.07, ObservedAt: day0.Add(2 * time.Hour)}
	older := industry.IndustryIndex{Value: 0.03, ObservedAt: day0}
	require.NoError(t, repo.SaveIndex(ctx, jita, shared.ActivityManufacturing, newer))
	require.NoError(t, repo.SaveIndex(ctx, jita, shared.ActivityReaction, industry.IndustryIndex{Value: 0.02, ObservedAt: day0}))

	// Act
	err := repo.SaveIndex(ctx, jita, shared.ActivityManufacturing, older)

	// Assert
	require.NoError(t, err)
	indices, err := repo.FindBySystem(ctx, jita)
	require.NoError(t, err)
	require.Len(t, indices, 2)
	assert.Equal(t, 0.07, indices[shared.ActivityManufacturing].Value)
	assert.True(t, indices[shared.ActivityManufacturing].ObservedAt.Equal(newer.ObservedAt))
	assert.Equal(t, 0.02, indices[shared.ActivityReaction].Value)
}

func TestIndustryIndexRepository_RejectsUnknownActivity(t *testing.T) {
	// Arrange
	repo := persistence.NewGormIndustryIndexRepository(helpers.NewTestDB(t))

	// Act
	err := repo.SaveIndex(context.Background(), 30000142, shared.ActivityNone, industry.IndustryIndex{Value: 0.1})

	// Assert
	var validationErr *shared.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func reactionTree(t *testing.T) *process.Tree {
	t.Helper()
	tree := process.NewTree()
	root := tree.Add(process.Node{
		Activity:       shared.ActivityReaction,
		SubjectID:      17940,
		ProducedItemID: 16662,
		Input:          material.MustLedger(map[int64]float64{16634: 100, 16640: 100}),
		Output:         material.MustLedger(map[int64]float64{16662: 200}),
		Seconds:        3600,
		Cost:           1250,
		Skills:         material.NewSkillMap(),
		Runs:           1,
	})
	child := tree.Add(process.Node{
		Activity:       shared.ActivityReaction,
		SubjectID:      17959,
		ProducedItemID: 16640,
		Input:          material.MustLedger(map[int64]float64{16633: 100}),
		Output:         material.MustLedger(map[int64]float64{16640: 100}),
		Seconds:        3600,
		Skills:         material.NewSkillMap(),
		Runs:           1,
		Reprocessed:    true,
	})
	require.NoError(t, tree.Attach(root, child))
	return tree
}

func TestProcessRecordRepository_SaveAndFind(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := persistence.NewGormProcessRecordRepository(helpers.NewTestDB(t))
	record, err := process.NewRecord("rec-1", "alchemy", day0, reactionTree(t))
	require.NoError(t, err)

	// Act
	require.NoError(t, repo.Save(ctx, record))
	found, err := repo.FindByID(ctx, "rec-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "alchemy", found.Label)
	assert.True(t, found.CreatedAt.Equal(day0))
	assert.Equal(t, 2, found.Tree.Len())
	assert.Equal(t, 1, found.Tree.Depth(found.Tree.Root()))
	assert.True(t, record.Tree.TotalMaterial(record.Tree.Root()).Equal(found.Tree.TotalMaterial(found.Tree.Root())))
	assert.Equal(t, 7200.0, found.Tree.TotalTime(found.Tree.Root()))
	assert.True(t, found.Tree.MustNode(1).Reprocessed)
}

func TestProcessRecordRepository_ListNewestFirst(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := persistence.NewGormProcessRecordRepository(helpers.NewTestDB(t))
	for i, id := range []string{"a", "b", "c"} {
		record, err := process.NewRecord(id, id, day0.Add(time.Duration(i)*time.Hour), reactionTree(t))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, record))
	}

	// Act
	records, err := repo.List(ctx, 2)

	// Assert
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c", records[0].ID)
	assert.Equal(t, "b", records[1].ID)
}

func TestProcessRecordRepository_FindMissing(t *testing.T) {
	// Arrange
	repo := persistence.NewGormProcessRecordRepository(helpers.NewTestDB(t))

	// Act
	_, err := repo.FindByID(context.Background(), "missing")

	// Assert
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
