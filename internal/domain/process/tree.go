package process

import (
	"fmt"

	"github.com/andrescamacho/industry-go/internal/domain/material"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// NodeID addresses a node within its Tree
type NodeID int

// NoNode is returned where no node exists
const NoNode NodeID = -1

// Node is one computed activity. Input is net of whatever child nodes supply.
type Node struct {
	Activity       shared.Activity
	SubjectID      int64 // reaction or blueprint type ID
	ProducedItemID int64
	Input          *material.Ledger
	Output         *material.Ledger
	Seconds        float64
	Cost           float64
	Skills         *material.SkillMap
	// Runs holds reaction cycles or job runs; cycles may be fractional
	Runs           float64
	SolarSystemID  int64
	AssemblyLineID int64
	Reprocessed    bool
	Feedback       bool
	// Probability of success, 1 for deterministic activities
	Probability float64

	children []NodeID
}

// Children returns the node's child IDs in declared order
func (n *Node) Children() []NodeID {
	return append([]NodeID(nil), n.children...)
}

// IsGroup reports whether the node only groups other processes
func (n *Node) IsGroup() bool {
	return n.Activity == shared.ActivityNone
}

// Tree is an arena of process nodes. Children are referenced by ID, in the order they
// were attached; there are no parent pointers. A Tree is owned by the computation that
// builds it and is not safe for concurrent mutation.
type Tree struct {
	nodes     []*Node
	hasParent []bool
	root      NodeID
}

func NewTree() *Tree {
	return &Tree{root: NoNode}
}

// Add stores a node and returns its ID. The first node added becomes the root.
// Nil ledgers are replaced by empty ones and a zero probability means 1.
func (t *Tree) Add(n Node) NodeID {
	if n.Input == nil {
		n.Input = material.NewLedger()
	}
	if n.Output == nil {
		n.Output = material.NewLedger()
	}
	if n.Skills == nil {
		n.Skills = material.NewSkillMap()
	}
	if n.Probability == 0 {
		n.Probability = 1
	}
	n.children = nil

	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, &n)
	t.hasParent = append(t.hasParent, false)
	if t.root == NoNode {
		t.root = id
	}
	return id
}

// AddGroup adds a node that only aggregates its children
func (t *Tree) AddGroup() NodeID {
	return t.Add(Node{Activity: shared.ActivityNone})
}

// Attach appends child to parent's children. A node can only have one parent and the
// root can not be attached.
func (t *Tree) Attach(parent, child NodeID) error {
	if !t.valid(parent) || !t.valid(child) {
		return fmt.Errorf("attach %d to %d: %w", child, parent, shared.ErrNotFound)
	}
	if parent == child || child == t.root {
		return fmt.Errorf("attach %d to %d: would create a cycle", child, parent)
	}
	if t.hasParent[child] {
		return fmt.Errorf("attach %d to %d: node already has a parent", child, parent)
	}
	t.nodes[parent].children = append(t.nodes[parent].children, child)
	t.hasParent[child] = true
	return nil
}

// Graft copies every node of sub into t and attaches sub's root under parent.
// It returns the new ID of sub's root.
func (t *Tree) Graft(parent NodeID, sub *Tree) (NodeID, error) {
	if !t.valid(parent) {
		return NoNode, fmt.Errorf("graft onto %d: %w", parent, shared.ErrNotFound)
	}
	if sub == nil || sub.root == NoNode {
		return NoNode, fmt.Errorf("graft onto %d: empty tree", parent)
	}

	offset := NodeID(len(t.nodes))
	for i, n := range sub.nodes {
		copied := *n
		copied.children = make([]NodeID, len(n.children))
		for j, c := range n.children {
			copied.children[j] = c + offset
		}
		t.nodes = append(t.nodes, &copied)
		t.hasParent = append(t.hasParent, sub.hasParent[i])
	}

	newRoot := sub.root + offset
	if err := t.Attach(parent, newRoot); err != nil {
		return NoNode, err
	}
	return newRoot, nil
}

// Node returns the node with the given ID for reading or assembly-time updates
func (t *Tree) Node(id NodeID) (*Node, error) {
	if !t.valid(id) {
		return nil, fmt.Errorf("node %d: %w", id, shared.ErrNotFound)
	}
	return t.nodes[id], nil
}

// MustNode is Node for IDs obtained from this tree
func (t *Tree) MustNode(id NodeID) *Node {
	n, err := t.Node(id)
	if err != nil {
		panic(err)
	}
	return n
}

func (t *Tree) Root() NodeID {
	return t.root
}

func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Walk visits the subtree of id depth first, parents before children, children in
// declared order. depth is 0 for id itself.
func (t *Tree) Walk(id NodeID, fn func(id NodeID, depth int, n *Node) error) error {
	if !t.valid(id) {
		return fmt.Errorf("walk from %d: %w", id, shared.ErrNotFound)
	}
	return t.walk(id, 0, fn)
}

func (t *Tree) walk(id NodeID, depth int, fn func(NodeID, int, *Node) error) error {
	n := t.nodes[id]
	if err := fn(id, depth, n); err != nil {
		return err
	}
	for _, child := range n.children {
		if err := t.walk(child, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}
