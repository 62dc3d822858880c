package commands

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"planrecon/internal/application"
	"planrecon/internal/domain"
	"planrecon/internal/ports"
)

const dateLayout = "2006-01-02"

// MilestoneRow is one milestone with the tasks it waits for and unblocks
type MilestoneRow struct {
	Task         domain.PlanNode
	Predecessors []domain.PlanNode
	Successors   []domain.PlanNode
}

// MilestonesReport lists the milestones of one outline level by finish date
type MilestonesReport struct {
	Level       int
	GeneratedAt time.Time
	Rows        []MilestoneRow
	Path        string // set once written
}

// FileName returns report_milestones_L<level>_<YYYYMMDD_HHMMSS>.md
func (r *MilestonesReport) FileName() string {
	return fmt.Sprintf("report_milestones_L%d_%s.md", r.Level, r.GeneratedAt.Format(reportTimeLayout))
}

// Markdown renders the report as a table
func (r *MilestonesReport) Markdown() string {
	var b strings.Builder

	if r.Level == 1 {
		b.WriteString("# Top-level milestones\n\n")
	} else {
		fmt.Fprintf(&b, "# Milestones at outline level %d\n\n", r.Level)
	}
	b.WriteString("| Milestone | Date | Depends on | Enables |\n")
	b.WriteString("|-----------|------|------------|---------|\n")
	for _, row := range r.Rows {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			cell(row.Task.Name), finishDate(row.Task), nameList(row.Predecessors), nameList(row.Successors))
	}
	fmt.Fprintf(&b, "\nGenerated %s\n", r.GeneratedAt.Format(dateLayout))

	return b.String()
}

func finishDate(n domain.PlanNode) string {
	if n.Finish == nil {
		return "N/A"
	}
	return n.Finish.Format(dateLayout)
}

func nameList(nodes []domain.PlanNode) string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = "- " + cell(n.Name)
	}
	return strings.Join(names, "<br>")
}

// cell keeps a value from breaking the table row
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// MilestonesReportCommand builds the milestones report from the imported plan
type MilestonesReportCommand struct {
	inspector ports.PlanInspector
	logger    *slog.Logger

	Level     int    // outline level, 1 for top-level milestones
	ReportDir string // empty skips writing the report file

	now func() time.Time
}

// NewMilestonesReportCommand creates a new MilestonesReportCommand for the
// top outline level
func NewMilestonesReportCommand(inspector ports.PlanInspector, logger *slog.Logger) *MilestonesReportCommand {
	if logger == nil {
		logger = slog.Default()
	}
	return &MilestonesReportCommand{
		inspector: inspector,
		logger:    logger,
		Level:     1,
		now:       time.Now,
	}
}

// Validate checks the outline level
func (c *MilestonesReportCommand) Validate() error {
	if c.Level < 1 {
		return &application.ValidationError{Field: "level", Message: "outline level must be at least 1"}
	}
	return nil
}

// Execute collects the milestones and their dependencies, sorted by finish
// date with undated milestones last
func (c *MilestonesReportCommand) Execute(ctx context.Context) (*MilestonesReport, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	milestones, err := c.inspector.Milestones(ctx, c.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}

	report := &MilestonesReport{Level: c.Level, GeneratedAt: c.now()}
	for _, m := range milestones {
		preds, err := c.inspector.Predecessors(ctx, m.UID)
		if err != nil {
			return nil, fmt.Errorf("failed to list predecessors of task %d: %w", m.UID, err)
		}
		succs, err := c.inspector.Successors(ctx, m.UID)
		if err != nil {
			return nil, fmt.Errorf("failed to list successors of task %d: %w", m.UID, err)
		}
		report.Rows = append(report.Rows, MilestoneRow{Task: m, Predecessors: preds, Successors: succs})
	}

	slices.SortStableFunc(report.Rows, func(a, b MilestoneRow) int {
		fa, fb := a.Task.Finish, b.Task.Finish
		switch {
		case fa == nil && fb == nil:
			return 0
		case fa == nil:
			return 1
		case fb == nil:
			return -1
		}
		return fa.Compare(*fb)
	})

	if c.ReportDir != "" {
		path, err := writeReportFile(c.ReportDir, report.FileName(), report.Markdown())
		if err != nil {
			return nil, err
		}
		report.Path = path
		c.logger.Info("milestones report written", "path", path)
	}

	c.logger.Debug("milestones collected", "level", c.Level, "count", len(report.Rows))
	return report, nil
}
