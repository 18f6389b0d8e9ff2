package process

import (
	"encoding/json"

	"github.com/andrescamacho/industry-go/internal/domain/material"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

type nodeJSON struct {
	Activity       shared.Activity    `json:"activity"`
	ActivityName   string             `json:"activity_name,omitempty"`
	SubjectID      int64              `json:"subject_id,omitempty"`
	ProducedItemID int64              `json:"produced_item_id,omitempty"`
	Input          *material.Ledger   `json:"input"`
	Output         *material.Ledger   `json:"output"`
	Seconds        float64            `json:"seconds"`
	Cost           float64            `json:"cost"`
	Skills         *material.SkillMap `json:"skills"`
	Runs           float64            `json:"runs,omitempty"`
	SolarSystemID  int64              `json:"solar_system_id,omitempty"`
	AssemblyLineID int64              `json:"assembly_line_id,omitempty"`
	Reprocessed    bool               `json:"reprocessed,omitempty"`
	Feedback       bool               `json:"feedback,omitempty"`
	Probability    float64            `json:"probability"`
	Children       []nodeJSON         `json:"children,omitempty"`
}

// MarshalJSON encodes the tree from its root as nested nodes
func (t *Tree) MarshalJSON() ([]byte, error) {
	if t.root == NoNode {
		return []byte("null"), nil
	}
	return json.Marshal(t.toJSON(t.root))
}

func (t *Tree) toJSON(id NodeID) nodeJSON {
	n := t.nodes[id]
	out := nodeJSON{
		Activity:       n.Activity,
		SubjectID:      n.SubjectID,
		ProducedItemID: n.ProducedItemID,
		Input:          n.Input,
		Output:         n.Output,
		Seconds:        n.Seconds,
		Cost:           n.Cost,
		Skills:         n.Skills,
		Runs:           n.Runs,
		SolarSystemID:  n.SolarSystemID,
		AssemblyLineID: n.AssemblyLineID,
		Reprocessed:    n.Reprocessed,
		Feedback:       n.Feedback,
		Probability:    n.Probability,
	}
	if n.Activity.IsValid() {
		out.ActivityName = n.Activity.String()
	}
	for _, child := range n.children {
		out.Children = append(out.Children, t.toJSON(child))
	}
	return out
}

// UnmarshalJSON rebuilds a tree from nested nodes, assigning IDs depth first
func (t *Tree) UnmarshalJSON(data []byte) error {
	*t = Tree{root: NoNode}
	if string(data) == "null" {
		return nil
	}
	var root nodeJSON
	if err := json.Unmarshal(data, &root); err != nil {
		return err
	}
	_, err := t.fromJSON(root, NoNode)
	return err
}

func (t *Tree) fromJSON(in nodeJSON, parent NodeID) (NodeID, error) {
	id := t.Add(Node{
		Activity:       in.Activity,
		SubjectID:      in.SubjectID,
		ProducedItemID: in.ProducedItemID,
		Input:          in.Input,
		Output:         in.Output,
		Seconds:        in.Seconds,
		Cost:           in.Cost,
		Skills:         in.Skills,
		Runs:           in.Runs,
		SolarSystemID:  in.SolarSystemID,
		AssemblyLineID: in.AssemblyLineID,
		Reprocessed:    in.Reprocessed,
		Feedback:       in.Feedback,
		Probability:    in.Probability,
	})
	if parent != NoNode {
		if err := t.Attach(parent, id); err != nil {
			return NoNode, err
		}
	}
	for _, child := range in.Children {
		if _, err := t.fromJSON(child, id); err != nil {
			return NoNode, err
		}
	}
	return id, nil
}
