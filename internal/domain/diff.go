package domain

import (
	"log/slog"
	"strings"
)

// Category classifies a divergence between plan and tracker
type Category int

const (
	Unchanged Category = iota
	OnlyInPlan
	OnlyInTracker
	ClosedButIncomplete // closed in the tracker, below 100% in the plan
	CompleteButOpen     // 100% in the plan, still open in the tracker
)

func (c Category) String() string {
	switch c {
	case OnlyInPlan:
		return "OnlyInPlan"
	case OnlyInTracker:
		return "OnlyInTracker"
	case ClosedButIncomplete:
		return "ClosedButIncomplete"
	case CompleteButOpen:
		return "CompleteButOpen"
	default:
		return "Unchanged"
	}
}

// Prefix is the marker written in front of a divergence label
func (c Category) Prefix() string {
	switch c {
	case OnlyInPlan:
		return "(Only in plan)"
	case OnlyInTracker:
		return "(Only in tracker)"
	case ClosedButIncomplete:
		return "(Closed in tracker)"
	case CompleteButOpen:
		return "(Complete in plan)"
	default:
		return ""
	}
}

// DiffNode is one entry of a diff forest.
//
// Mismatch categories carry the verbatim subtree that evidences the
// mismatch in Evidence. Unchanged nodes are ancestors kept only because
// something beneath them differs; their divergences are in Children.
type DiffNode struct {
	Category Category
	Key      string
	Label    string
	Evidence *Node
	Children []*DiffNode
}

// Line returns the rendered label, prefixed by the category marker
func (d *DiffNode) Line() string {
	if p := d.Category.Prefix(); p != "" {
		return p + " " + d.Label
	}
	return d.Label
}

// DiffCounts tallies divergences by category
type DiffCounts map[Category]int

// Total returns the number of divergences, ancestors excluded
func (c DiffCounts) Total() int {
	total := 0
	for cat, n := range c {
		if cat != Unchanged {
			total += n
		}
	}
	return total
}

// CountDiff tallies a diff forest
func CountDiff(forest []*DiffNode) DiffCounts {
	counts := DiffCounts{}
	var walk func([]*DiffNode)
	walk = func(nodes []*DiffNode) {
		for _, d := range nodes {
			counts[d.Category]++
			walk(d.Children)
		}
	}
	walk(forest)
	return counts
}

// DefaultClosedStatuses are the tracker statuses treated as closed
var DefaultClosedStatuses = []string{"Closed"}

// Differ computes the divergences between a plan tree and a tracker tree
type Differ struct {
	closed map[string]struct{}
	logger *slog.Logger
}

// NewDiffer creates a Differ. Status names are compared case-insensitively;
// an empty closedStatuses means DefaultClosedStatuses.
func NewDiffer(closedStatuses []string, logger *slog.Logger) *Differ {
	if len(closedStatuses) == 0 {
		closedStatuses = DefaultClosedStatuses
	}
	if logger == nil {
		logger = slog.Default()
	}
	d := &Differ{closed: make(map[string]struct{}, len(closedStatuses)), logger: logger}
	for _, s := range closedStatuses {
		d.closed[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	return d
}

// IsClosed reports whether a tracker status counts as closed
func (d *Differ) IsClosed(s Status) bool {
	_, ok := d.closed[strings.ToLower(strings.TrimSpace(s.Name))]
	return ok
}

// keyIndex maps sibling keys to nodes, keeping sibling order
type keyIndex struct {
	order    []string
	byKey    map[string]*Node
	unlinked []*Node
}

func (d *Differ) index(side string, parent *Node) keyIndex {
	idx := keyIndex{byKey: make(map[string]*Node, len(parent.Children))}
	for _, child := range parent.Children {
		if child.IsUnlinked() {
			idx.unlinked = append(idx.unlinked, child)
			continue
		}
		if _, dup := idx.byKey[child.Key]; dup {
			d.logger.Warn("duplicate sibling key, keeping first occurrence",
				"tree", side, "key", child.Key, "parent", parent.Key)
			continue
		}
		idx.byKey[child.Key] = child
		idx.order = append(idx.order, child.Key)
	}
	return idx
}

// Diff compares the children of plan and tracker, whose roots are taken as
// already matched, and returns the minimal forest of divergences. An empty
// result means the two subtrees reconcile.
func (d *Differ) Diff(plan, tracker *Node) []*DiffNode {
	if plan == nil || tracker == nil {
		return nil
	}

	p := d.index("plan", plan)
	t := d.index("tracker", tracker)

	var out []*DiffNode

	for _, key := range p.order {
		if _, ok := t.byKey[key]; !ok {
			out = append(out, evidence(OnlyInPlan, p.byKey[key]))
		}
	}
	for _, n := range p.unlinked {
		out = append(out, evidence(OnlyInPlan, n))
	}

	for _, key := range t.order {
		if _, ok := p.byKey[key]; !ok {
			out = append(out, evidence(OnlyInTracker, t.byKey[key]))
		}
	}
	for _, n := range t.unlinked {
		out = append(out, evidence(OnlyInTracker, n))
	}

	for _, key := range p.order {
		tn, ok := t.byKey[key]
		if !ok {
			continue
		}
		pn := p.byKey[key]
		closed := d.IsClosed(tn.Status)

		switch {
		case closed && pn.Status.Percent < 100:
			out = append(out, &DiffNode{
				Category: ClosedButIncomplete,
				Key:      key,
				Label:    tn.Label,
				Evidence: pn.Clone(),
			})
		case !closed && pn.Status.Percent >= 100:
			out = append(out, &DiffNode{
				Category: CompleteButOpen,
				Key:      key,
				Label:    pn.Label,
				Evidence: tn.Clone(),
			})
		default:
			if nested := d.Diff(pn, tn); len(nested) > 0 {
				out = append(out, &DiffNode{
					Category: Unchanged,
					Key:      key,
					Label:    pn.Label,
					Children: nested,
				})
			}
		}
	}

	return out
}

func evidence(cat Category, n *Node) *DiffNode {
	return &DiffNode{
		Category: cat,
		Key:      n.Key,
		Label:    n.Label,
		Evidence: n.Clone(),
	}
}
