package ports

import (
	"context"
	"io"

	"planrecon/internal/domain"
)

// TaskStore provides read access to an imported plan.
// Lookups by reference are case-insensitive exact matches.
type TaskStore interface {
	// FindByReference returns every task whose tracker reference equals key,
	// ordered by document position
	FindByReference(ctx context.Context, key string) ([]domain.PlanNode, error)

	// ChildrenOf returns the direct children of a task in document order
	ChildrenOf(ctx context.Context, uid int64) ([]domain.PlanNode, error)

	// ReferenceOf returns the tracker reference of a task, or "" when it has none
	ReferenceOf(ctx context.Context, uid int64) (string, error)
}

// PlanWriter replaces the stored plan
type PlanWriter interface {
	// ReplacePlan atomically swaps the stored plan for nodes
	ReplacePlan(ctx context.Context, nodes []domain.PlanNode) (*domain.ImportStats, error)
}

// PlanParser decodes a plan export into flat records in document order
type PlanParser interface {
	Parse(r io.Reader) ([]domain.FlatRecord, error)
}

// PlanInspector answers schedule questions about the imported plan
type PlanInspector interface {
	// Task returns one task with its attributes and predecessor links
	Task(ctx context.Context, uid int64) (*domain.PlanNode, error)

	// Milestones returns the milestone tasks at an outline level in document order
	Milestones(ctx context.Context, level int) ([]domain.PlanNode, error)

	Predecessors(ctx context.Context, uid int64) ([]domain.PlanNode, error)
	Successors(ctx context.Context, uid int64) ([]domain.PlanNode, error)
}
