package cli

import (
	"fmt"
	"strings"

	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/material"
	"github.com/andrescamacho/industry-go/internal/domain/process"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// TreeFormatter renders process trees with item names from static data
type TreeFormatter struct {
	static    industry.StaticData
	useColors bool
}

// NewTreeFormatter creates a new tree formatter. static may be nil, in which case IDs are printed.
func NewTreeFormatter(static industry.StaticData, useColors bool) *TreeFormatter {
	return &TreeFormatter{
		static:    static,
		useColors: useColors,
	}
}

// FormatTree renders every node of the tree below its parent
func (f *TreeFormatter) FormatTree(tree *process.Tree) string {
	if tree == nil || tree.Root() == process.NoNode {
		return "(empty tree)"
	}

	var builder strings.Builder
	f.formatNode(&builder, tree, tree.Root(), "", true, true)
	return builder.String()
}

func (f *TreeFormatter) formatNode(builder *strings.Builder, tree *process.Tree, id process.NodeID, prefix string, isLast bool, isRoot bool) {
	var linePrefix string
	if isRoot {
		linePrefix = ""
	} else if isLast {
		linePrefix = prefix + "└── "
	} else {
		linePrefix = prefix + "├── "
	}

	node := tree.MustNode(id)
	builder.WriteString(linePrefix)
	builder.WriteString(f.describe(node))
	builder.WriteString("\n")

	children := node.Children()
	if len(children) == 0 {
		return
	}

	var childPrefix string
	if isRoot {
		childPrefix = ""
	} else if isLast {
		childPrefix = prefix + "    "
	} else {
		childPrefix = prefix + "│   "
	}

	for i, child := range children {
		f.formatNode(builder, tree, child, childPrefix, i == len(children)-1, false)
	}
}

func (f *TreeFormatter) describe(node *process.Node) string {
	if node.IsGroup() {
		return "group"
	}

	var flags []string
	if node.Reprocessed {
		flags = append(flags, "reprocessed")
	}
	if node.Feedback {
		flags = append(flags, "feedback")
	}
	if node.Probability > 0 && node.Probability < 1 {
		flags = append(flags, fmt.Sprintf("p=%.3f", node.Probability))
	}
	flagText := ""
	if len(flags) > 0 {
		flagText = " (" + strings.Join(flags, ", ") + ")"
	}

	return fmt.Sprintf("%s%s%s %s x%s%s, %s, %s",
		f.activityColor(node.Activity),
		node.Activity,
		f.colorReset(),
		f.subjectName(node),
		trimFloat(node.Runs),
		flagText,
		formatSeconds(node.Seconds),
		formatISK(node.Cost),
	)
}

func (f *TreeFormatter) subjectName(node *process.Node) string {
	if f.static == nil {
		return fmt.Sprintf("%d", node.SubjectID)
	}
	if node.Activity == shared.ActivityReaction {
		if reaction, err := f.static.Reaction(node.SubjectID); err == nil {
			return reaction.Name()
		}
	} else if bp, err := f.static.Blueprint(node.SubjectID); err == nil {
		return bp.Name()
	}
	return itemName(f.static, node.SubjectID)
}

// activityColor returns the ANSI color code of an activity
func (f *TreeFormatter) activityColor(activity shared.Activity) string {
	if !f.useColors {
		return ""
	}

	switch activity {
	case shared.ActivityReaction:
		return "\033[35m" // Magenta
	case shared.ActivityManufacturing:
		return "\033[33m" // Yellow
	case shared.ActivityInvention, shared.ActivityCopying:
		return "\033[36m" // Cyan
	default:
		return ""
	}
}

func (f *TreeFormatter) colorReset() string {
	if !f.useColors {
		return ""
	}
	return "\033[0m"
}

// FormatTreeSummary creates a one-line summary of the aggregates from the root
func (f *TreeFormatter) FormatTreeSummary(tree *process.Tree) string {
	if tree == nil || tree.Root() == process.NoNode {
		return "No process tree"
	}

	root := tree.Root()
	return fmt.Sprintf(
		"Tree: %d nodes, depth=%d, time=%s, cost=%s",
		tree.Len(), tree.Depth(root), formatSeconds(tree.TotalTime(root)), formatISK(tree.TotalCost(root)),
	)
}

// FormatLedger lists a ledger's items by name, one per line
func (f *TreeFormatter) FormatLedger(title string, ledger *material.Ledger) string {
	var builder strings.Builder
	builder.WriteString(title)
	builder.WriteString(":\n")
	if ledger == nil || ledger.IsEmpty() {
		builder.WriteString("  (none)\n")
		return builder.String()
	}

	w := newTabWriter(&builder)
	for _, entry := range ledger.Entries() {
		fmt.Fprintf(w, "  %s\t%s\n", itemName(f.static, entry.ItemID), trimFloat(entry.Quantity))
	}
	w.Flush()
	return builder.String()
}

// FormatSkills lists required skills by name
func (f *TreeFormatter) FormatSkills(skills *material.SkillMap) string {
	var builder strings.Builder
	builder.WriteString("Skills:\n")
	if skills == nil || skills.Len() == 0 {
		builder.WriteString("  (none)\n")
		return builder.String()
	}
	for _, req := range skills.Entries() {
		fmt.Fprintf(&builder, "  %s %d\n", itemName(f.static, req.SkillID), req.Level)
	}
	return builder.String()
}

// FormatNodeDetails provides the full inputs and outputs of one node
func (f *TreeFormatter) FormatNodeDetails(tree *process.Tree, id process.NodeID) string {
	node, err := tree.Node(id)
	if err != nil {
		return "No node"
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Activity:          %s\n", node.Activity)
	fmt.Fprintf(&builder, "Subject:           %s\n", f.subjectName(node))
	fmt.Fprintf(&builder, "Runs:              %s\n", trimFloat(node.Runs))
	if node.AssemblyLineID > 0 {
		fmt.Fprintf(&builder, "Assembly line:     %d\n", node.AssemblyLineID)
	}
	if node.SolarSystemID > 0 {
		fmt.Fprintf(&builder, "Solar system:      %d\n", node.SolarSystemID)
	}
	fmt.Fprintf(&builder, "Time:              %s\n", formatSeconds(node.Seconds))
	fmt.Fprintf(&builder, "Cost:              %s\n", formatISK(node.Cost))
	builder.WriteString(f.FormatLedger("Input", node.Input))
	builder.WriteString(f.FormatLedger("Output", node.Output))
	if children := node.Children(); len(children) > 0 {
		fmt.Fprintf(&builder, "Sub-processes:     %d\n", len(children))
	}
	return builder.String()
}

func trimFloat(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}
