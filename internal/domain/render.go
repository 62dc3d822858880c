package domain

import "strings"

const indentWidth = 4

func renderLine(depth int, label string) string {
	return strings.Repeat(" ", indentWidth*depth) + "- " + label
}

// RenderTree flattens a labeled tree into indented lines, pre-order
func RenderTree(root *Node) []string {
	if root == nil {
		return nil
	}
	var lines []string
	appendNode(&lines, root, 0)
	return lines
}

func appendNode(lines *[]string, n *Node, depth int) {
	*lines = append(*lines, renderLine(depth, n.Label))
	for _, child := range n.Children {
		appendNode(lines, child, depth+1)
	}
}

// DiffLine is one rendered line of a diff forest
type DiffLine struct {
	Depth    int
	Label    string   // marker prefix included
	Category Category // of the divergence the line belongs to
	Evidence bool     // line reproduces a subtree below a marker
}

func (l DiffLine) String() string {
	return renderLine(l.Depth, l.Label)
}

// DiffLines flattens a diff forest in pre-order. The evidence subtree of a
// divergence follows its marker line.
func DiffLines(forest []*DiffNode) []DiffLine {
	var lines []DiffLine
	for _, d := range forest {
		appendDiff(&lines, d, 0)
	}
	return lines
}

func appendDiff(lines *[]DiffLine, d *DiffNode, depth int) {
	*lines = append(*lines, DiffLine{Depth: depth, Label: d.Line(), Category: d.Category})
	if d.Evidence != nil {
		for _, child := range d.Evidence.Children {
			appendEvidence(lines, child, d.Category, depth+1)
		}
	}
	for _, child := range d.Children {
		appendDiff(lines, child, depth+1)
	}
}

func appendEvidence(lines *[]DiffLine, n *Node, cat Category, depth int) {
	*lines = append(*lines, DiffLine{Depth: depth, Label: n.Label, Category: cat, Evidence: true})
	for _, child := range n.Children {
		appendEvidence(lines, child, cat, depth+1)
	}
}

// RenderDiff flattens a diff forest into indented lines
func RenderDiff(forest []*DiffNode) []string {
	var lines []string
	for _, l := range DiffLines(forest) {
		lines = append(lines, l.String())
	}
	return lines
}
