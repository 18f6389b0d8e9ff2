package industry

import (
	"fmt"

	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// Classified is anything a facility can check compatibility against
type Classified interface {
	TypeID() int64
	GroupID() int64
	CategoryID() int64
}

// AssemblyLine is a facility slot for one activity. It accepts items by group or
// category, each compatible class carrying its own modifier on top of the line's base.
// Immutable once constructed.
type AssemblyLine struct {
	id                int64
	name              string
	activity          shared.Activity
	base              Modifier
	groupModifiers    map[int64]Modifier
	categoryModifiers map[int64]Modifier
}

// NewAssemblyLine creates an assembly line. groupModifiers and categoryModifiers are copied.
func NewAssemblyLine(
	id int64,
	name string,
	activity shared.Activity,
	base Modifier,
	groupModifiers map[int64]Modifier,
	categoryModifiers map[int64]Modifier,
) (*AssemblyLine, error) {
	if !activity.IsValid() {
		return nil, shared.NewValidationError("activity", fmt.Sprintf("assembly line %d has unknown activity %d", id, int(activity)))
	}
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("assembly line %d: %w", id, err)
	}

	groups := make(map[int64]Modifier, len(groupModifiers))
	for groupID, mod := range groupModifiers {
		if err := mod.Validate(); err != nil {
			return nil, fmt.Errorf("assembly line %d group %d: %w", id, groupID, err)
		}
		groups[groupID] = mod
	}
	categories := make(map[int64]Modifier, len(categoryModifiers))
	for categoryID, mod := range categoryModifiers {
		if err := mod.Validate(); err != nil {
			return nil, fmt.Errorf("assembly line %d category %d: %w", id, categoryID, err)
		}
		categories[categoryID] = mod
	}

	return &AssemblyLine{
		id:                id,
		name:              name,
		activity:          activity,
		base:              base,
		groupModifiers:    groups,
		categoryModifiers: categories,
	}, nil
}

func (a *AssemblyLine) ID() int64 {
	return a.id
}

func (a *AssemblyLine) Name() string {
	return a.name
}

func (a *AssemblyLine) Activity() shared.Activity {
	return a.activity
}

func (a *AssemblyLine) BaseModifier() Modifier {
	return a.base
}

// Accepts reports whether the line can process the item
func (a *AssemblyLine) Accepts(item Classified) bool {
	_, ok := a.ModifierFor(item)
	return ok
}

// ModifierFor returns the line's modifier for an item. Group-specific modifiers take
// precedence over category ones; the result is composed with the base modifier.
func (a *AssemblyLine) ModifierFor(item Classified) (Modifier, bool) {
	if mod, ok := a.groupModifiers[item.GroupID()]; ok {
		return a.base.Compose(mod), true
	}
	if mod, ok := a.categoryModifiers[item.CategoryID()]; ok {
		return a.base.Compose(mod), true
	}
	return Modifier{}, false
}

// PickBestAssemblyLine filters candidates to those for the activity that accept the
// item and returns the one with the lowest material factor, then time, then cost.
// The first candidate seen wins exact ties.
func PickBestAssemblyLine(activity shared.Activity, item Classified, candidates []*AssemblyLine) (*AssemblyLine, Modifier, error) {
	var best *AssemblyLine
	var bestMod Modifier

	for _, line := range candidates {
		if line == nil || line.activity != activity {
			continue
		}
		mod, ok := line.ModifierFor(item)
		if !ok {
			continue
		}
		if best == nil || mod.BetterThan(bestMod) {
			best = line
			bestMod = mod
		}
	}

	if best == nil {
		return nil, Modifier{}, shared.NewNoCompatibleFacilityError(activity, item.TypeID())
	}
	return best, bestMod, nil
}
