package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/industry-go/internal/application/common"
	"github.com/andrescamacho/industry-go/internal/application/industry/services"
	"github.com/andrescamacho/industry-go/internal/domain/production"
)

// ReactQuery computes a reaction for a number of cycles
type ReactQuery struct {
	Location       services.Location
	ReactionID     int64
	Cycles         float64
	Reprocess      bool
	Feedback       bool
	RecursionDepth int
}

// ReactExactQuery computes the reaction cycles needed for an exact output quantity
type ReactExactQuery struct {
	Location       services.Location
	ReactionID     int64
	ProductID      int64 // zero selects the reaction's product
	Units          float64
	RecursionDepth int
}

// ReactHandler handles ReactQuery and ReactExactQuery
type ReactHandler struct {
	contexts *services.ContextFactory
	engine   *production.Engine
}

func NewReactHandler(contexts *services.ContextFactory, engine *production.Engine) *ReactHandler {
	return &ReactHandler{
		contexts: contexts,
		engine:   engine,
	}
}

// Handle executes either reaction query
func (h *ReactHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	switch query := request.(type) {
	case *ReactQuery:
		return h.react(ctx, query)
	case *ReactExactQuery:
		return h.reactExact(ctx, query)
	default:
		return nil, fmt.Errorf("invalid request type: expected *ReactQuery or *ReactExactQuery")
	}
}

func (h *ReactHandler) react(ctx context.Context, query *ReactQuery) (*ProcessResponse, error) {
	ictx, err := h.contexts.Build(ctx, query.Location)
	if err != nil {
		return nil, err
	}

	tree, err := h.engine.React(ictx, query.ReactionID, query.Cycles, query.Reprocess, query.Feedback, query.RecursionDepth)
	if err != nil {
		return nil, fmt.Errorf("failed to compute reaction %d: %w", query.ReactionID, err)
	}

	common.LoggerFromContext(ctx).Log(common.LevelDebug, "Reaction computed", map[string]interface{}{
		"reaction_id": query.ReactionID,
		"cycles":      query.Cycles,
		"nodes":       tree.Len(),
	})
	return newProcessResponse(tree), nil
}

func (h *ReactHandler) reactExact(ctx context.Context, query *ReactExactQuery) (*ProcessResponse, error) {
	ictx, err := h.contexts.Build(ctx, query.Location)
	if err != nil {
		return nil, err
	}

	tree, err := h.engine.ReactExact(ictx, query.ReactionID, query.ProductID, query.Units, query.RecursionDepth)
	if err != nil {
		return nil, fmt.Errorf("failed to compute reaction %d for %g units: %w", query.ReactionID, query.Units, err)
	}
	return newProcessResponse(tree), nil
}
