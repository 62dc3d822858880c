package domain

import "log/slog"

type stackEntry struct {
	uid   int64
	level int
}

// Reconstruct turns a pre-order sequence of depth-annotated records into
// parent-linked plan nodes.
//
// The parent of each record is the nearest preceding record with a strictly
// smaller outline level. Records are assumed to arrive in pre-order; that is
// not checked, and a violation silently yields a wrong hierarchy.
//
// A repeated UID is logged and skipped; the first occurrence wins.
func Reconstruct(records []FlatRecord, logger *slog.Logger) []PlanNode {
	if logger == nil {
		logger = slog.Default()
	}

	nodes := make([]PlanNode, 0, len(records))
	seen := make(map[int64]struct{}, len(records))
	var stack []stackEntry

	for _, rec := range records {
		if _, dup := seen[rec.UID]; dup {
			logger.Error("duplicate task uid in plan records", "uid", rec.UID, "name", rec.Name)
			continue
		}
		seen[rec.UID] = struct{}{}

		for len(stack) > 0 && stack[len(stack)-1].level >= rec.OutlineLevel {
			stack = stack[:len(stack)-1]
		}

		node := PlanNode{
			UID:          rec.UID,
			OutlineLevel: rec.OutlineLevel,
			Position:     len(nodes),
			TaskFields:   rec.TaskFields,
		}
		if len(stack) > 0 {
			parent := stack[len(stack)-1].uid
			node.ParentUID = &parent
		}

		stack = append(stack, stackEntry{uid: rec.UID, level: rec.OutlineLevel})
		nodes = append(nodes, node)
	}

	return nodes
}
