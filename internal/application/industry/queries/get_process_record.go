package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/industry-go/internal/application/common"
	"github.com/andrescamacho/industry-go/internal/domain/process"
)

// GetProcessRecordQuery loads a stored process record; an empty ID lists recent records
type GetProcessRecordQuery struct {
	RecordID string
	Limit    int
}

type GetProcessRecordResponse struct {
	Records []*process.Record
}

type GetProcessRecordHandler struct {
	records process.RecordRepository
}

func NewGetProcessRecordHandler(records process.RecordRepository) *GetProcessRecordHandler {
	return &GetProcessRecordHandler{records: records}
}

func (h *GetProcessRecordHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetProcessRecordQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetProcessRecordQuery")
	}

	if query.RecordID == "" {
		records, err := h.records.List(ctx, query.Limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list process records: %w", err)
		}
		return &GetProcessRecordResponse{Records: records}, nil
	}

	record, err := h.records.FindByID(ctx, query.RecordID)
	if err != nil {
		return nil, fmt.Errorf("failed to load process record %s: %w", query.RecordID, err)
	}
	return &GetProcessRecordResponse{Records: []*process.Record{record}}, nil
}
