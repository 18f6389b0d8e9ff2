package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/industry-go/internal/application/common"
	"github.com/andrescamacho/industry-go/internal/application/industry/services"
	"github.com/andrescamacho/industry-go/internal/domain/material"
	"github.com/andrescamacho/industry-go/internal/domain/production"
)

// ReprocessQuery computes the materials recovered from reprocessing
type ReprocessQuery struct {
	Location services.Location
	ItemID   int64
	Units    int64
}

type ReprocessResponse struct {
	StationID int64
	Yield     float64
	Materials *material.Ledger
}

type ReprocessHandler struct {
	contexts *services.ContextFactory
	engine   *production.Engine
}

func NewReprocessHandler(contexts *services.ContextFactory, engine *production.Engine) *ReprocessHandler {
	return &ReprocessHandler{
		contexts: contexts,
		engine:   engine,
	}
}

func (h *ReprocessHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ReprocessQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ReprocessQuery")
	}

	ictx, err := h.contexts.Build(ctx, query.Location)
	if err != nil {
		return nil, err
	}

	station, yield, err := ictx.BestReprocessingStation()
	if err != nil {
		return nil, err
	}

	mats, err := h.engine.Reprocess(ictx, query.ItemID, query.Units)
	if err != nil {
		return nil, fmt.Errorf("failed to reprocess %d units of item %d: %w", query.Units, query.ItemID, err)
	}

	return &ReprocessResponse{
		StationID: station.ID(),
		Yield:     yield,
		Materials: mats,
	}, nil
}
