package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// UnlinkedKey is the synthetic key of nodes without a tracker reference.
// Unlinked nodes never match across trees.
const UnlinkedKey = "unlinked"

// StatusKind tells which half of a Status is meaningful
type StatusKind int

const (
	StatusNone StatusKind = iota
	StatusPercent
	StatusTracker
)

func (k StatusKind) String() string {
	switch k {
	case StatusPercent:
		return "percent"
	case StatusTracker:
		return "tracker"
	default:
		return "none"
	}
}

// Status is the completion state of a tree node: percent complete for plan
// nodes, a workflow status name for tracker nodes.
type Status struct {
	Kind    StatusKind
	Percent float64
	Name    string
}

// PercentComplete builds a plan status
func PercentComplete(p float64) Status {
	return Status{Kind: StatusPercent, Percent: p}
}

// TrackerStatus builds a tracker status
func TrackerStatus(name string) Status {
	return Status{Kind: StatusTracker, Name: name}
}

func (s Status) String() string {
	switch s.Kind {
	case StatusPercent:
		return fmt.Sprintf("PercentWorkComplete: %s%%", FormatPercent(s.Percent))
	case StatusTracker:
		return "Status: " + s.Name
	default:
		return ""
	}
}

// FormatPercent renders a completion value without a trailing ".0"
func FormatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// Node is a labeled tree node shared by plan and tracker trees
type Node struct {
	Key       string
	Label     string
	Status    Status
	Milestone bool
	Children  []*Node
}

// IsUnlinked reports whether the node carries the synthetic key
func (n *Node) IsUnlinked() bool {
	return n.Key == UnlinkedKey || n.Key == ""
}

// Clone returns a deep copy of the subtree
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return &c
}

// Count returns the number of nodes in the subtree, root included
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, child := range n.Children {
		total += child.Count()
	}
	return total
}

// Wrap returns a synthetic parent holding n as its only child. Diffing two
// wrapped roots compares the roots themselves.
func Wrap(n *Node) *Node {
	return &Node{Key: "root", Label: "root", Children: []*Node{n}}
}

// NormalizeKey canonicalizes a tracker reference; blank input yields UnlinkedKey
func NormalizeKey(ref string) string {
	ref = strings.ToUpper(strings.TrimSpace(ref))
	if ref == "" {
		return UnlinkedKey
	}
	return ref
}

// PlanLabel formats the display label of a plan node
func PlanLabel(key, name string, percent float64) string {
	shown := key
	if key == UnlinkedKey || key == "" {
		shown = "<No Reference>"
	}
	return fmt.Sprintf("%s - %s [%s]", shown, name, PercentComplete(percent))
}

// IssueLabel formats the display label of a tracker node
func IssueLabel(key, summary, status string) string {
	return fmt.Sprintf("%s - %s [%s]", key, summary, TrackerStatus(status))
}

// Issue is a tracker item as returned by the issue tracker
type Issue struct {
	Key       string
	Summary   string
	Status    string
	IssueType string
	IsSubtask bool
}
