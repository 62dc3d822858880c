package domain

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Sort ranks: numbered keys first, then keys without a trailing number,
// then unlinked nodes.
const (
	rankNumbered = iota
	rankUnnumbered
	rankUnlinked
)

// KeyNumber extracts the trailing number of a key such as "MUP-123".
// It returns false for unlinked keys and keys without digits after the last separator.
func KeyNumber(key string) (int, bool) {
	if key == UnlinkedKey || key == "" {
		return 0, false
	}
	i := strings.LastIndex(key, "-")
	digits := key[i+1:]
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func sortRank(key string) (int, int) {
	if key == UnlinkedKey || key == "" {
		return rankUnlinked, 0
	}
	if n, ok := KeyNumber(key); ok {
		return rankNumbered, n
	}
	return rankUnnumbered, 0
}

func compareKeys(a, b string) int {
	ra, na := sortRank(a)
	rb, nb := sortRank(b)
	if c := cmp.Compare(ra, rb); c != 0 {
		return c
	}
	if c := cmp.Compare(na, nb); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// SortTree returns a copy of the tree with every sibling list ordered by key
// number. Unlinked nodes sort last. The sort is stable, so applying it twice
// gives the same tree.
func SortTree(n *Node) *Node {
	if n == nil {
		return nil
	}
	sorted := n.Clone()
	sortChildren(sorted)
	return sorted
}

func sortChildren(n *Node) {
	slices.SortStableFunc(n.Children, func(a, b *Node) int {
		return compareKeys(a.Key, b.Key)
	})
	for _, child := range n.Children {
		sortChildren(child)
	}
}
