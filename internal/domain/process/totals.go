package process

import (
	"github.com/andrescamacho/industry-go/internal/domain/material"
)

// TotalMaterial is the external material required by the subtree: every node's net
// input merged in depth-first order
func (t *Tree) TotalMaterial(id NodeID) *material.Ledger {
	total := material.NewLedger()
	_ = t.Walk(id, func(_ NodeID, _ int, n *Node) error {
		total.Merge(n.Input)
		return nil
	})
	return total
}

// TotalTime sums the time of every activity in the subtree. Activities are accounted
// as sequential; this is not a wall-clock schedule.
func (t *Tree) TotalTime(id NodeID) float64 {
	total := 0.0
	_ = t.Walk(id, func(_ NodeID, _ int, n *Node) error {
		total += n.Seconds
		return nil
	})
	return total
}

// TotalCost sums the job cost of every activity in the subtree
func (t *Tree) TotalCost(id NodeID) float64 {
	total := 0.0
	_ = t.Walk(id, func(_ NodeID, _ int, n *Node) error {
		total += n.Cost
		return nil
	})
	return total
}

// TotalSkills unions the skill requirements of the subtree, keeping the highest level per skill
func (t *Tree) TotalSkills(id NodeID) *material.SkillMap {
	total := material.NewSkillMap()
	_ = t.Walk(id, func(_ NodeID, _ int, n *Node) error {
		total.Merge(n.Skills)
		return nil
	})
	return total
}

// Depth is the number of levels below id; a leaf has depth 0
func (t *Tree) Depth(id NodeID) int {
	deepest := 0
	_ = t.Walk(id, func(_ NodeID, depth int, _ *Node) error {
		if depth > deepest {
			deepest = depth
		}
		return nil
	})
	return deepest
}
