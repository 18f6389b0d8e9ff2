package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/industry-go/internal/application/common"
	"github.com/andrescamacho/industry-go/internal/application/industry/services"
	"github.com/andrescamacho/industry-go/internal/domain/production"
)

// ManufactureQuery computes a manufacturing job
type ManufactureQuery struct {
	Location       services.Location
	BlueprintID    int64
	Runs           int64
	RecursionDepth int
}

// CopyQuery computes a blueprint copy job
type CopyQuery struct {
	Location    services.Location
	BlueprintID int64
	Copies      int64
	RunsPerCopy int64
}

// InventQuery computes an invention attempt and its expected cost per success
type InventQuery struct {
	Location    services.Location
	BlueprintID int64
}

// InventResponse adds the per-success expectation to the attempt
type InventResponse struct {
	*ProcessResponse
	Probability float64
	Expected    production.Expected
}

// ManufactureHandler handles ManufactureQuery, CopyQuery and InventQuery
type ManufactureHandler struct {
	contexts *services.ContextFactory
	engine   *production.Engine
}

func NewManufactureHandler(contexts *services.ContextFactory, engine *production.Engine) *ManufactureHandler {
	return &ManufactureHandler{
		contexts: contexts,
		engine:   engine,
	}
}

func (h *ManufactureHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	switch query := request.(type) {
	case *ManufactureQuery:
		ictx, err := h.contexts.Build(ctx, query.Location)
		if err != nil {
			return nil, err
		}
		tree, err := h.engine.Manufacture(ictx, query.BlueprintID, query.Runs, query.RecursionDepth)
		if err != nil {
			return nil, fmt.Errorf("failed to compute manufacturing of blueprint %d: %w", query.BlueprintID, err)
		}
		return newProcessResponse(tree), nil

	case *CopyQuery:
		ictx, err := h.contexts.Build(ctx, query.Location)
		if err != nil {
			return nil, err
		}
		tree, err := h.engine.Copy(ictx, query.BlueprintID, query.Copies, query.RunsPerCopy)
		if err != nil {
			return nil, fmt.Errorf("failed to compute copying of blueprint %d: %w", query.BlueprintID, err)
		}
		return newProcessResponse(tree), nil

	case *InventQuery:
		ictx, err := h.contexts.Build(ctx, query.Location)
		if err != nil {
			return nil, err
		}
		tree, err := h.engine.Invent(ictx, query.BlueprintID)
		if err != nil {
			return nil, fmt.Errorf("failed to compute invention from blueprint %d: %w", query.BlueprintID, err)
		}
		expected, err := production.ExpectedPerSuccess(tree, tree.Root())
		if err != nil {
			return nil, err
		}
		return &InventResponse{
			ProcessResponse: newProcessResponse(tree),
			Probability:     tree.MustNode(tree.Root()).Probability,
			Expected:        expected,
		}, nil

	default:
		return nil, fmt.Errorf("invalid request type: expected *ManufactureQuery, *CopyQuery or *InventQuery")
	}
}
