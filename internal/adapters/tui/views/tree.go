package views

import "planrecon/internal/domain"

// TreeItem is a row of a browsable tree with expand state
type TreeItem struct {
	Key       string
	Label     string
	Category  domain.Category
	IsDiff    bool // row is a divergence marker rather than evidence
	Milestone bool
	Done      bool // complete in the plan or closed in the tracker

	Parent     *TreeItem
	Children   []*TreeItem
	IsExpanded bool
}

// NewTreeItem converts a labeled tree. isDone decides the Done flag per node.
func NewTreeItem(n *domain.Node, isDone func(*domain.Node) bool) *TreeItem {
	if n == nil {
		return nil
	}
	item := &TreeItem{
		Key:        n.Key,
		Label:      n.Label,
		Milestone:  n.Milestone,
		Done:       isDone != nil && isDone(n),
		IsExpanded: true,
	}
	for _, child := range n.Children {
		c := NewTreeItem(child, isDone)
		c.Parent = item
		item.Children = append(item.Children, c)
	}
	return item
}

// NewDiffItem converts a diff forest under a synthetic root. Evidence
// subtrees start collapsed.
func NewDiffItem(forest []*domain.DiffNode) *TreeItem {
	root := &TreeItem{Label: "divergences", IsExpanded: true}
	for _, d := range forest {
		c := diffItem(d)
		c.Parent = root
		root.Children = append(root.Children, c)
	}
	return root
}

func diffItem(d *domain.DiffNode) *TreeItem {
	item := &TreeItem{
		Key:        d.Key,
		Label:      d.Line(),
		Category:   d.Category,
		IsDiff:     true,
		IsExpanded: d.Category == domain.Unchanged,
	}
	if d.Evidence != nil {
		for _, child := range d.Evidence.Children {
			c := NewTreeItem(child, nil)
			c.Parent = item
			c.Category = d.Category
			item.Children = append(item.Children, c)
		}
	}
	for _, child := range d.Children {
		c := diffItem(child)
		c.Parent = item
		item.Children = append(item.Children, c)
	}
	return item
}

// Flatten returns the visible rows in pre-order
func (t *TreeItem) Flatten() []*TreeItem {
	var result []*TreeItem
	t.flattenRecursive(&result)
	return result
}

func (t *TreeItem) flattenRecursive(result *[]*TreeItem) {
	*result = append(*result, t)
	if t.IsExpanded {
		for _, child := range t.Children {
			child.flattenRecursive(result)
		}
	}
}

// Depth returns the distance from the root
func (t *TreeItem) Depth() int {
	depth := 0
	for p := t.Parent; p != nil; p = p.Parent {
		depth++
	}
	return depth
}

// HasChildren reports whether the row can expand
func (t *TreeItem) HasChildren() bool {
	return len(t.Children) > 0
}

func (t *TreeItem) Toggle() {
	t.IsExpanded = !t.IsExpanded
}

func (t *TreeItem) Expand() {
	t.IsExpanded = true
}

func (t *TreeItem) Collapse() {
	t.IsExpanded = false
}

// SetExpandedAll expands or collapses the whole subtree
func (t *TreeItem) SetExpandedAll(expanded bool) {
	t.IsExpanded = expanded
	for _, child := range t.Children {
		child.SetExpandedAll(expanded)
	}
}
