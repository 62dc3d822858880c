package commands

import (
	"context"
	"fmt"
	"log/slog"

	"planrecon/internal/application"
	"planrecon/internal/domain"
	"planrecon/internal/ports"
)

// BuildPlanTreeCommand builds the labeled plan tree rooted at the task
// referencing RootKey
type BuildPlanTreeCommand struct {
	store   ports.TaskStore
	logger  *slog.Logger
	RootKey string
}

// NewBuildPlanTreeCommand creates a new BuildPlanTreeCommand
func NewBuildPlanTreeCommand(store ports.TaskStore, rootKey string, logger *slog.Logger) *BuildPlanTreeCommand {
	if logger == nil {
		logger = slog.Default()
	}
	return &BuildPlanTreeCommand{
		store:   store,
		logger:  logger,
		RootKey: rootKey,
	}
}

// Validate checks that a root key was given
func (c *BuildPlanTreeCommand) Validate() error {
	return application.ValidateRequired("rootKey", c.RootKey)
}

// Execute resolves the root task and walks its descendants
func (c *BuildPlanTreeCommand) Execute(ctx context.Context) (*domain.Node, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	key := domain.NormalizeKey(c.RootKey)
	matches, err := c.store.FindByReference(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to look up plan root %s: %w", key, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no plan task references %s: %w", key, application.ErrNotFound)
	}
	if len(matches) > 1 {
		c.logger.Warn("several plan tasks reference the root key, using the first",
			"key", key, "matches", len(matches), "uid", matches[0].UID)
	}

	visited := make(map[int64]bool)
	root, err := c.build(ctx, matches[0], visited)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("plan tree built", "key", key, "nodes", root.Count())
	return root, nil
}

func (c *BuildPlanTreeCommand) build(ctx context.Context, task domain.PlanNode, visited map[int64]bool) (*domain.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	visited[task.UID] = true

	ref, err := c.store.ReferenceOf(ctx, task.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference of task %d: %w", task.UID, err)
	}

	key := domain.NormalizeKey(ref)
	pct := task.Completion()
	node := &domain.Node{
		Key:       key,
		Label:     domain.PlanLabel(key, task.Name, pct),
		Status:    domain.PercentComplete(pct),
		Milestone: task.Milestone,
	}

	children, err := c.store.ChildrenOf(ctx, task.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children of task %d: %w", task.UID, err)
	}

	for _, child := range children {
		if visited[child.UID] {
			c.logger.Warn("plan task already visited, not expanding again",
				"uid", child.UID, "parent", task.UID)
			continue
		}
		sub, err := c.build(ctx, child, visited)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, sub)
	}

	return node, nil
}
