package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/industry-go/internal/application/industry/commands"
	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
	"github.com/andrescamacho/industry-go/test/helpers"
)

const amarr int64 = 30002187

func indexFeed() *helpers.MockIndexFeed {
	return &helpers.MockIndexFeed{Indices: map[int64]map[shared.Activity]industry.IndustryIndex{
		helpers.Jita: {
			shared.ActivityManufacturing: {Value: 0.0712, ObservedAt: helpers.FixtureTime},
			shared.ActivityReaction:      {Value: 0.031, ObservedAt: helpers.FixtureTime},
		},
		amarr: {
			shared.ActivityManufacturing: {Value: 0.02, ObservedAt: helpers.FixtureTime},
		},
	}}
}

func TestUpdateIndices_StoresEverySystemByDefault(t *testing.T) {
	// Arrange
	repo := helpers.NewMockIndexRepository()
	handler := commands.NewUpdateIndicesHandler(indexFeed(), repo)

	// Act
	resp, err := handler.Handle(context.Background(), &commands.UpdateIndicesCommand{})

	// Assert
	require.NoError(t, err)
	updated := resp.(*commands.UpdateIndicesResponse)
	assert.Equal(t, 2, updated.Systems)
	assert.Equal(t, 3, updated.Indices)

	jita, err := repo.FindBySystem(context.Background(), helpers.Jita)
	require.NoError(t, err)
	assert.InDelta(t, 0.031, jita[shared.ActivityReaction].Value, 1e-12)
}

func TestUpdateIndices_RestrictsToRequestedSystems(t *testing.T) {
	// Arrange
	repo := helpers.NewMockIndexRepository()
	handler := commands.NewUpdateIndicesHandler(indexFeed(), repo)

	// Act
	resp, err := handler.Handle(context.Background(), &commands.UpdateIndicesCommand{SystemIDs: []int64{amarr, 1}})

	// Assert
	require.NoError(t, err)
	updated := resp.(*commands.UpdateIndicesResponse)
	assert.Equal(t, 1, updated.Systems)
	assert.Equal(t, 1, updated.Indices)

	jita, err := repo.FindBySystem(context.Background(), helpers.Jita)
	require.NoError(t, err)
	assert.Empty(t, jita)
}

func TestUpdateIndices_FeedFailure(t *testing.T) {
	feedErr := errors.New("feed down")
	handler := commands.NewUpdateIndicesHandler(&helpers.MockIndexFeed{Err: feedErr}, helpers.NewMockIndexRepository())

	_, err := handler.Handle(context.Background(), &commands.UpdateIndicesCommand{})

	assert.ErrorIs(t, err, feedErr)
}
