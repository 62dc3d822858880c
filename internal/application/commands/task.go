package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"planrecon/internal/domain"
	"planrecon/internal/ports"
)

// TaskDetail is one plan task with its scheduling neighbours
type TaskDetail struct {
	Task         *domain.PlanNode
	Predecessors []domain.PlanNode
	Successors   []domain.PlanNode
}

// Lines renders the detail as aligned "field: value" lines
func (d *TaskDetail) Lines() []string {
	t := d.Task
	ref := t.Reference
	if ref == "" {
		ref = "<No Reference>"
	}
	parent := "none"
	if t.ParentUID != nil {
		parent = strconv.FormatInt(*t.ParentUID, 10)
	}

	lines := []string{
		fmt.Sprintf("UID:        %d", t.UID),
		fmt.Sprintf("Name:       %s", t.Name),
		fmt.Sprintf("Reference:  %s", ref),
		fmt.Sprintf("Outline:    level %d, parent %s", t.OutlineLevel, parent),
		fmt.Sprintf("Complete:   %s%%", domain.FormatPercent(t.Completion())),
	}
	if t.Start != nil {
		lines = append(lines, "Start:      "+t.Start.Format(dateLayout))
	}
	if t.Finish != nil {
		lines = append(lines, "Finish:     "+t.Finish.Format(dateLayout))
	}
	if t.Duration != "" {
		lines = append(lines, "Duration:   "+t.Duration)
	}
	if t.Milestone {
		lines = append(lines, "Milestone:  yes")
	}

	list := func(title string, nodes []domain.PlanNode) {
		if len(nodes) == 0 {
			return
		}
		lines = append(lines, title)
		for _, n := range nodes {
			lines = append(lines, fmt.Sprintf("  - %d %s", n.UID, n.Name))
		}
	}
	list("Depends on:", d.Predecessors)
	list("Enables:", d.Successors)

	if len(t.ExtendedAttributes) > 0 {
		lines = append(lines, "Attributes:")
		for _, a := range t.ExtendedAttributes {
			lines = append(lines, fmt.Sprintf("  %d = %s", a.FieldID, a.Value))
		}
	}
	if t.Notes != "" {
		lines = append(lines, "Notes:", t.Notes)
	}
	return lines
}

// ShowTaskCommand loads one imported plan task
type ShowTaskCommand struct {
	inspector ports.PlanInspector
	logger    *slog.Logger
	UID       int64
}

// NewShowTaskCommand creates a new ShowTaskCommand
func NewShowTaskCommand(inspector ports.PlanInspector, uid int64, logger *slog.Logger) *ShowTaskCommand {
	if logger == nil {
		logger = slog.Default()
	}
	return &ShowTaskCommand{inspector: inspector, logger: logger, UID: uid}
}

// Execute loads the task and its dependencies
func (c *ShowTaskCommand) Execute(ctx context.Context) (*TaskDetail, error) {
	task, err := c.inspector.Task(ctx, c.UID)
	if err != nil {
		return nil, err
	}

	preds, err := c.inspector.Predecessors(ctx, c.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to list predecessors of task %d: %w", c.UID, err)
	}
	succs, err := c.inspector.Successors(ctx, c.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to list successors of task %d: %w", c.UID, err)
	}

	return &TaskDetail{Task: task, Predecessors: preds, Successors: succs}, nil
}
