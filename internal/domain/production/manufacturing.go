package production

import (
	"fmt"
	"math"

	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/material"
	"github.com/andrescamacho/industry-go/internal/domain/process"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// Fraction of the estimated job value charged for copy and invention jobs
const researchJobValueFraction = 0.02

// MaterialQuantity applies research and facility material factors to a base quantity:
// max(runs, ceil(round(base × runs × meFactor × m, 2)))
func MaterialQuantity(base float64, runs int64, meFactor, m float64) float64 {
	adjusted := math.Ceil(math.Round(base*float64(runs)*meFactor*m*100) / 100)
	return math.Max(float64(runs), adjusted)
}

// Manufacture computes running a blueprint for a number of runs. With depth > 0,
// manufacturable and reaction-product materials are produced by child processes and
// removed from the node's own input.
func (e *Engine) Manufacture(ctx *industry.Context, blueprintID int64, runs int64, depth int) (*process.Tree, error) {
	bp, err := ctx.Static().Blueprint(blueprintID)
	if err != nil {
		return nil, err
	}
	return e.manufacture(ctx, bp, runs, e.clampDepth(depth))
}

func (e *Engine) manufacture(ctx *industry.Context, bp *industry.Blueprint, runs int64, depth int) (*process.Tree, error) {
	if runs <= 0 {
		return nil, invalidRuns(bp.TypeID(), float64(runs))
	}
	product, err := ctx.Static().Item(bp.ProductID())
	if err != nil {
		return nil, err
	}
	mod, err := ctx.Modifier(shared.ActivityManufacturing, product)
	if err != nil {
		return nil, err
	}
	levels, err := ctx.Blueprints().ResearchLevels(bp.TypeID())
	if err != nil {
		return nil, err
	}

	data := bp.Manufacturing()
	in := material.NewLedger()
	for _, entry := range data.Materials.Entries() {
		if err := in.Add(entry.ItemID, MaterialQuantity(entry.Quantity, runs, levels.MaterialFactor(), mod.M)); err != nil {
			return nil, err
		}
	}
	out := material.NewLedger()
	if err := out.Add(bp.ProductID(), float64(bp.ProductQuantity()*runs)); err != nil {
		return nil, err
	}

	tree := process.NewTree()
	root := tree.Add(process.Node{
		Activity:       shared.ActivityManufacturing,
		SubjectID:      bp.TypeID(),
		ProducedItemID: bp.ProductID(),
		Input:          in,
		Output:         out,
		Seconds:        data.Seconds * float64(runs) * levels.TimeFactor() * mod.T,
		Cost:           bp.BaseJobValue() * float64(runs) * mod.C,
		Skills:         data.Skills,
		Runs:           float64(runs),
		SolarSystemID:  mod.SolarSystemID,
		AssemblyLineID: mod.AssemblyLineID,
	})

	if err := e.expandInputs(ctx, tree, root, depth); err != nil {
		return nil, err
	}
	return tree, nil
}

// manufactureFor runs enough jobs of the item's blueprint to cover qty units
func (e *Engine) manufactureFor(ctx *industry.Context, item *industry.ManufacturableItem, qty float64, depth int) (*process.Tree, error) {
	bp, err := ctx.Static().Blueprint(item.BlueprintID())
	if err != nil {
		return nil, err
	}
	runs := int64(math.Ceil(qty / float64(bp.ProductQuantity())))
	return e.manufacture(ctx, bp, runs, depth)
}

// Copy computes making copies of a blueprint with runsPerCopy runs each
func (e *Engine) Copy(ctx *industry.Context, blueprintID int64, copies, runsPerCopy int64) (*process.Tree, error) {
	bp, err := ctx.Static().Blueprint(blueprintID)
	if err != nil {
		return nil, err
	}
	if copies <= 0 || runsPerCopy <= 0 {
		return nil, invalidRuns(blueprintID, float64(copies*runsPerCopy))
	}
	if runsPerCopy > bp.MaxRuns() {
		return nil, shared.NewValidationError("runs_per_copy", fmt.Sprintf("%d exceeds blueprint max runs %d", runsPerCopy, bp.MaxRuns()))
	}
	data, ok := bp.Copying()
	if !ok {
		return nil, &shared.NotFoundError{Kind: "copying data for blueprint", ID: blueprintID}
	}
	mod, err := ctx.Modifier(shared.ActivityCopying, bp)
	if err != nil {
		return nil, err
	}

	in := data.Materials.Clone()
	if err := in.Scale(float64(copies)); err != nil {
		return nil, err
	}
	out := material.NewLedger()
	if err := out.Add(bp.TypeID(), float64(copies)); err != nil {
		return nil, err
	}

	totalRuns := float64(copies * runsPerCopy)
	tree := process.NewTree()
	tree.Add(process.Node{
		Activity:       shared.ActivityCopying,
		SubjectID:      bp.TypeID(),
		ProducedItemID: bp.TypeID(),
		Input:          in,
		Output:         out,
		Seconds:        data.Seconds * totalRuns * mod.T,
		Cost:           bp.BaseJobValue() * researchJobValueFraction * totalRuns * mod.C,
		Skills:         data.Skills,
		Runs:           totalRuns,
		SolarSystemID:  mod.SolarSystemID,
		AssemblyLineID: mod.AssemblyLineID,
	})
	return tree, nil
}

// Invent computes one invention attempt on a blueprint copy. The node's probability is the
// base chance scaled by the character's invention chance factor, capped at 1.
func (e *Engine) Invent(ctx *industry.Context, blueprintID int64) (*process.Tree, error) {
	bp, err := ctx.Static().Blueprint(blueprintID)
	if err != nil {
		return nil, err
	}
	data, ok := bp.Invention()
	if !ok {
		return nil, &shared.NotFoundError{Kind: "invention data for blueprint", ID: blueprintID}
	}
	mod, err := ctx.Modifier(shared.ActivityInvention, bp)
	if err != nil {
		return nil, err
	}
	factor, err := ctx.Character().InventionChanceFactor(data.EncryptionSkillID, data.DatacoreSkillIDs)
	if err != nil {
		return nil, err
	}

	out := material.NewLedger()
	if err := out.Add(data.ProductBlueprintID, 1); err != nil {
		return nil, err
	}

	tree := process.NewTree()
	tree.Add(process.Node{
		Activity:       shared.ActivityInvention,
		SubjectID:      bp.TypeID(),
		ProducedItemID: data.ProductBlueprintID,
		Input:          data.Materials,
		Output:         out,
		Seconds:        data.Seconds * mod.T,
		Cost:           bp.BaseJobValue() * researchJobValueFraction * mod.C,
		Skills:         data.Skills,
		Runs:           float64(data.ProductRuns),
		SolarSystemID:  mod.SolarSystemID,
		AssemblyLineID: mod.AssemblyLineID,
		Probability:    math.Min(1, data.BaseChance*factor),
	})
	return tree, nil
}

// Expected holds the averaged totals of a probabilistic process per success
type Expected struct {
	Material *material.Ledger
	Seconds  float64
	Cost     float64
}

// ExpectedPerSuccess scales a node's subtree totals by 1 / probability
func ExpectedPerSuccess(tree *process.Tree, id process.NodeID) (Expected, error) {
	node, err := tree.Node(id)
	if err != nil {
		return Expected{}, err
	}
	attempts := 1 / node.Probability
	mats := tree.TotalMaterial(id)
	if !mats.IsEmpty() {
		if err := mats.Scale(attempts); err != nil {
			return Expected{}, err
		}
	}
	return Expected{
		Material: mats,
		Seconds:  tree.TotalTime(id) * attempts,
		Cost:     tree.TotalCost(id) * attempts,
	}, nil
}
