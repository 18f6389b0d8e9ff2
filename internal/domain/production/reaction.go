package production

import (
	"errors"
	"fmt"
	"math"

	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/material"
	"github.com/andrescamacho/industry-go/internal/domain/process"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// cycleLedgers returns one cycle's input and output after optional reprocessing and
// feedback, and whether each step applied. Both steps only apply to alchemy reactions.
func cycleLedgers(ctx *industry.Context, reaction *industry.Reaction, reprocess, feedback bool) (*material.Ledger, *material.Ledger, bool, bool, error) {
	in := reaction.CycleInputs()
	out := reaction.CycleOutputs()
	reprocess = reprocess && reaction.IsAlchemy()
	feedback = feedback && reaction.IsAlchemy()

	if reprocess {
		for _, entry := range out.Entries() {
			item, err := ctx.Static().Item(entry.ItemID)
			if err != nil {
				return nil, nil, false, false, err
			}
			if !item.IsReprocessable() {
				continue
			}
			recovered, err := ctx.Reprocess(item, int64(math.Round(entry.Quantity)))
			if err != nil {
				return nil, nil, false, false, err
			}
			out.Remove(entry.ItemID)
			out.Merge(recovered)
		}
	}
	if feedback {
		material.SymmetricDifference(in, out)
	}
	return in, out, reprocess, feedback, nil
}

// React computes running a reaction for a number of cycles. Cycles may be fractional.
//
// Reprocessing replaces reprocessable outputs by their recovered materials and feedback
// cancels materials found on both sides; both only apply to alchemy reactions and the
// node records whether they did. With depth > 0, inputs that are reaction products are
// produced by child reactions and removed from the node's own input.
func (e *Engine) React(ctx *industry.Context, reactionID int64, cycles float64, reprocess, feedback bool, depth int) (*process.Tree, error) {
	reaction, err := ctx.Static().Reaction(reactionID)
	if err != nil {
		return nil, err
	}
	return e.react(ctx, reaction, cycles, reprocess, feedback, e.clampDepth(depth))
}

func (e *Engine) react(ctx *industry.Context, reaction *industry.Reaction, cycles float64, reprocess, feedback bool, depth int) (*process.Tree, error) {
	if !(cycles > 0) || math.IsInf(cycles, 0) {
		return nil, invalidRuns(reaction.TypeID(), cycles)
	}

	mod, err := ctx.Modifier(shared.ActivityReaction, reaction)
	if err != nil {
		return nil, err
	}

	in, out, reprocessed, fedBack, err := cycleLedgers(ctx, reaction, reprocess, feedback)
	if err != nil {
		return nil, err
	}
	if err := in.Scale(cycles); err != nil {
		return nil, err
	}
	if err := out.Scale(cycles); err != nil {
		return nil, err
	}

	jobValue := estimatedValue(ctx.Static(), reaction.CycleInputs()) * cycles

	tree := process.NewTree()
	root := tree.Add(process.Node{
		Activity:       shared.ActivityReaction,
		SubjectID:      reaction.TypeID(),
		ProducedItemID: reaction.ProductID(),
		Input:          in,
		Output:         out,
		Seconds:        cycles * industry.ReactionCycleSeconds,
		Cost:           jobValue * mod.C,
		Skills:         reaction.Skills(),
		Runs:           cycles,
		SolarSystemID:  mod.SolarSystemID,
		AssemblyLineID: mod.AssemblyLineID,
		Reprocessed:    reprocessed,
		Feedback:       fedBack,
	})

	if err := e.expandInputs(ctx, tree, root, depth); err != nil {
		return nil, err
	}
	return tree, nil
}

// ReactExact computes the reaction cycles needed for exactly units of productID, with
// reprocessing and feedback enabled. cycles = units / one cycle's output of the product.
// A zero productID selects the reaction's own product.
func (e *Engine) ReactExact(ctx *industry.Context, reactionID, productID int64, units float64, depth int) (*process.Tree, error) {
	reaction, err := ctx.Static().Reaction(reactionID)
	if err != nil {
		return nil, err
	}
	if productID == 0 {
		productID = reaction.ProductID()
	}
	return e.reactExact(ctx, reaction, productID, units, e.clampDepth(depth))
}

func (e *Engine) reactExact(ctx *industry.Context, reaction *industry.Reaction, productID int64, units float64, depth int) (*process.Tree, error) {
	if !(units > 0) || math.IsInf(units, 0) {
		return nil, shared.NewInvalidQuantityError(productID, units)
	}
	cycles, err := CyclesFor(ctx, reaction, productID, units)
	if err != nil {
		return nil, err
	}
	return e.react(ctx, reaction, cycles, true, true, depth)
}

// CyclesFor returns units divided by one cycle's output of productID after reprocessing
// and feedback
func CyclesFor(ctx *industry.Context, reaction *industry.Reaction, productID int64, units float64) (float64, error) {
	_, out, _, _, err := cycleLedgers(ctx, reaction, true, true)
	if err != nil {
		return 0, err
	}
	perCycle := out.Quantity(productID)
	if !(perCycle > 0) {
		return 0, fmt.Errorf("reaction %d output of item %d: %w", reaction.TypeID(), productID, shared.ErrNoOutputDefined)
	}
	return units / perCycle, nil
}

// BestReaction computes producing exactly units of a reaction product with the reaction
// requiring the least total input quantity. Ties go to the lowest reaction ID. Reactions
// that can not run in the context or yield none of the product are skipped.
func (e *Engine) BestReaction(ctx *industry.Context, productID int64, units float64, depth int) (*process.Tree, error) {
	item, err := ctx.Static().Item(productID)
	if err != nil {
		return nil, err
	}
	product, ok := item.(*industry.ReactionProductItem)
	if !ok {
		return nil, &shared.NotFoundError{Kind: "reaction producing item", ID: productID}
	}
	return e.bestReaction(ctx, product, units, e.clampDepth(depth))
}

func (e *Engine) bestReaction(ctx *industry.Context, product *industry.ReactionProductItem, units float64, depth int) (*process.Tree, error) {
	var best *process.Tree
	bestTotal := 0.0
	var lastErr error

	for _, reactionID := range product.ReactionIDs() {
		reaction, err := ctx.Static().Reaction(reactionID)
		if err != nil {
			return nil, err
		}
		tree, err := e.reactExact(ctx, reaction, product.TypeID(), units, depth)
		if errors.Is(err, shared.ErrNoCompatibleFacility) || errors.Is(err, shared.ErrNoOutputDefined) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}
		total := tree.TotalMaterial(tree.Root()).Total()
		if best == nil || total < bestTotal {
			best = tree
			bestTotal = total
		}
	}

	if best == nil {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, &shared.NotFoundError{Kind: "reaction producing item", ID: product.TypeID()}
	}
	return best, nil
}
