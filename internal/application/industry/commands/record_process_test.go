package commands_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/industry-go/internal/application/industry/commands"
	"github.com/andrescamacho/industry-go/internal/domain/material"
	"github.com/andrescamacho/industry-go/internal/domain/process"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
	"github.com/andrescamacho/industry-go/test/helpers"
)

func TestRecordProcess_StoresTreeUnderNewID(t *testing.T) {
	// Arrange
	records := helpers.NewMockRecordRepository()
	handler := commands.NewRecordProcessHandler(records, shared.NewMockClock(helpers.FixtureTime))
	tree := process.NewTree()
	tree.Add(process.Node{
		Activity:  shared.ActivityReaction,
		SubjectID: helpers.TechniteReaction,
		Input:     material.MustLedger(map[int64]float64{helpers.Platinum: 100, helpers.Technetium: 100}),
		Output:    material.MustLedger(map[int64]float64{helpers.PlatinumTechnite: 200}),
		Seconds:   3600,
		Runs:      1,
	})

	// Act
	resp, err := handler.Handle(context.Background(), &commands.RecordProcessCommand{Label: "technite", Tree: tree})

	// Assert
	require.NoError(t, err)
	recorded := resp.(*commands.RecordProcessResponse)
	_, err = uuid.Parse(recorded.RecordID)
	assert.NoError(t, err)
	assert.Equal(t, helpers.FixtureTime, recorded.CreatedAt)

	stored, err := records.FindByID(context.Background(), recorded.RecordID)
	require.NoError(t, err)
	assert.Equal(t, "technite", stored.Label)
	assert.Equal(t, 1, stored.Tree.Len())
}

func TestRecordProcess_RejectsEmptyTree(t *testing.T) {
	handler := commands.NewRecordProcessHandler(helpers.NewMockRecordRepository(), nil)

	_, err := handler.Handle(context.Background(), &commands.RecordProcessCommand{Tree: process.NewTree()})

	assert.Error(t, err)
}
