package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/andrescamacho/industry-go/internal/application/common"
	"github.com/andrescamacho/industry-go/internal/domain/process"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// RecordProcessCommand stores a computed process tree under a new ID
type RecordProcessCommand struct {
	Label string
	Tree  *process.Tree
}

// RecordProcessResponse represents the stored record
type RecordProcessResponse struct {
	RecordID  string
	CreatedAt time.Time
}

// RecordProcessHandler handles the RecordProcess command
type RecordProcessHandler struct {
	records process.RecordRepository
	clock   shared.Clock
}

// NewRecordProcessHandler creates a new RecordProcessHandler
func NewRecordProcessHandler(records process.RecordRepository, clock shared.Clock) *RecordProcessHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}

	return &RecordProcessHandler{
		records: records,
		clock:   clock,
	}
}

// Handle executes the RecordProcess command
func (h *RecordProcessHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RecordProcessCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RecordProcessCommand")
	}

	record, err := process.NewRecord(uuid.New().String(), cmd.Label, h.clock.Now().UTC(), cmd.Tree)
	if err != nil {
		return nil, fmt.Errorf("failed to create process record: %w", err)
	}

	if err := h.records.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist process record: %w", err)
	}

	common.LoggerFromContext(ctx).Log(common.LevelInfo, "Process recorded", map[string]interface{}{
		"record_id": record.ID,
		"label":     record.Label,
		"nodes":     record.Tree.Len(),
	})

	return &RecordProcessResponse{
		RecordID:  record.ID,
		CreatedAt: record.CreatedAt,
	}, nil
}
