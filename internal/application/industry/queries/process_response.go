package queries

import (
	"github.com/andrescamacho/industry-go/internal/adapters/metrics"
	"github.com/andrescamacho/industry-go/internal/domain/material"
	"github.com/andrescamacho/industry-go/internal/domain/process"
)

// ProcessResponse is a computed process tree with its aggregates from the root
type ProcessResponse struct {
	Tree          *process.Tree
	TotalMaterial *material.Ledger
	TotalSeconds  float64
	TotalCost     float64
	TotalSkills   *material.SkillMap
	Depth         int
}

func newProcessResponse(tree *process.Tree) *ProcessResponse {
	root := tree.Root()
	resp := &ProcessResponse{
		Tree:          tree,
		TotalMaterial: tree.TotalMaterial(root),
		TotalSeconds:  tree.TotalTime(root),
		TotalCost:     tree.TotalCost(root),
		TotalSkills:   tree.TotalSkills(root),
		Depth:         tree.Depth(root),
	}
	metrics.RecordProcess(tree.MustNode(root).Activity.String(), tree.Len(), resp.Depth, resp.TotalSeconds)
	return resp
}
