package industry

import (
	"fmt"

	"github.com/andrescamacho/industry-go/internal/domain/material"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// ReactionCycleSeconds is the wall-clock length of one reaction cycle
const ReactionCycleSeconds = 3600.0

// ReactionAttributes describes a reaction formula as loaded from static data
type ReactionAttributes struct {
	TypeID     int64
	GroupID    int64
	CategoryID int64
	Name       string
	// Per-cycle ledgers
	Inputs  map[int64]float64
	Outputs map[int64]float64
	// ProductID is the item the reaction is run for. Zero selects the lowest output ID.
	ProductID int64
	Skills    map[int64]int
}

// Reaction is a cycle-based process with fixed per-cycle input and output ledgers.
type Reaction struct {
	typeID     int64
	groupID    int64
	categoryID int64
	name       string
	inputs     *material.Ledger
	outputs    *material.Ledger
	productID  int64
	skills     *material.SkillMap
	alchemy    bool
}

// NewReaction creates a reaction. alchemy marks a reaction whose output is reprocessable;
// the catalog derives it from the output items.
func NewReaction(attrs ReactionAttributes, alchemy bool) (*Reaction, error) {
	inputs, err := material.LedgerFrom(attrs.Inputs)
	if err != nil {
		return nil, fmt.Errorf("reaction %d inputs: %w", attrs.TypeID, err)
	}
	outputs, err := material.LedgerFrom(attrs.Outputs)
	if err != nil {
		return nil, fmt.Errorf("reaction %d outputs: %w", attrs.TypeID, err)
	}
	if outputs.IsEmpty() {
		return nil, shared.NewValidationError("outputs", fmt.Sprintf("reaction %d has no outputs", attrs.TypeID))
	}

	skills := material.NewSkillMap()
	for skillID, level := range attrs.Skills {
		if err := skills.Require(skillID, level); err != nil {
			return nil, fmt.Errorf("reaction %d: %w", attrs.TypeID, err)
		}
	}

	productID := attrs.ProductID
	if productID == 0 {
		productID = outputs.ItemIDs()[0]
	}

	return &Reaction{
		typeID:     attrs.TypeID,
		groupID:    attrs.GroupID,
		categoryID: attrs.CategoryID,
		name:       attrs.Name,
		inputs:     inputs,
		outputs:    outputs,
		productID:  productID,
		skills:     skills,
		alchemy:    alchemy,
	}, nil
}

func (r *Reaction) TypeID() int64     { return r.typeID }
func (r *Reaction) GroupID() int64    { return r.groupID }
func (r *Reaction) CategoryID() int64 { return r.categoryID }
func (r *Reaction) Name() string      { return r.name }
func (r *Reaction) ProductID() int64  { return r.productID }

// IsAlchemy reports whether the reaction output is reprocessable
func (r *Reaction) IsAlchemy() bool {
	return r.alchemy
}

// CycleInputs returns a fresh copy of the per-cycle input ledger
func (r *Reaction) CycleInputs() *material.Ledger {
	return r.inputs.Clone()
}

// CycleOutputs returns a fresh copy of the per-cycle output ledger
func (r *Reaction) CycleOutputs() *material.Ledger {
	return r.outputs.Clone()
}

func (r *Reaction) Skills() *material.SkillMap {
	return r.skills.Clone()
}
