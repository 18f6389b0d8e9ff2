package production

import (
	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/material"
	"github.com/andrescamacho/industry-go/internal/domain/process"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// DefaultMaxRecursionDepth bounds recursion when the engine is created without a limit
const DefaultMaxRecursionDepth = 8

// Engine computes process trees for industrial activities in an industry.Context.
// It holds no mutable state and can be shared between goroutines.
type Engine struct {
	maxDepth int
}

// NewEngine creates an engine. Requested recursion depths are clamped to maxDepth;
// a non-positive maxDepth selects DefaultMaxRecursionDepth.
func NewEngine(maxDepth int) *Engine {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxRecursionDepth
	}
	return &Engine{maxDepth: maxDepth}
}

func (e *Engine) clampDepth(depth int) int {
	if depth < 0 {
		return 0
	}
	if depth > e.maxDepth {
		return e.maxDepth
	}
	return depth
}

// Reprocess returns the materials recovered from reprocessing units of an item at the
// best reprocessing station of the context's system
func (e *Engine) Reprocess(ctx *industry.Context, itemID int64, units int64) (*material.Ledger, error) {
	item, err := ctx.Static().Item(itemID)
	if err != nil {
		return nil, err
	}
	return ctx.Reprocess(item, units)
}

// expandInputs replaces producible inputs of node by child processes for the required
// quantity and removes that quantity from the node's input. Inputs are visited in
// ascending item ID order.
func (e *Engine) expandInputs(ctx *industry.Context, tree *process.Tree, id process.NodeID, depth int) error {
	if depth <= 0 {
		return nil
	}
	node := tree.MustNode(id)

	for _, itemID := range node.Input.ItemIDs() {
		qty := node.Input.Quantity(itemID)
		item, err := ctx.Static().Item(itemID)
		if err != nil {
			return err
		}

		var sub *process.Tree
		switch it := item.(type) {
		case *industry.ReactionProductItem:
			sub, err = e.bestReaction(ctx, it, qty, depth-1)
		case *industry.ManufacturableItem:
			sub, err = e.manufactureFor(ctx, it, qty, depth-1)
		default:
			continue
		}
		if err != nil {
			return err
		}

		if _, err := tree.Graft(id, sub); err != nil {
			return err
		}
		if err := node.Input.Subtract(itemID, qty); err != nil {
			return err
		}
	}
	return nil
}

// estimatedValue values a ledger at item base prices; unknown items count as zero
func estimatedValue(static industry.StaticData, ledger *material.Ledger) float64 {
	total := 0.0
	for _, entry := range ledger.Entries() {
		item, err := static.Item(entry.ItemID)
		if err != nil {
			continue
		}
		total += item.BasePrice() * entry.Quantity
	}
	return total
}

func invalidRuns(subjectID int64, runs float64) error {
	return shared.NewInvalidQuantityError(subjectID, runs)
}
