package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"planrecon/internal/application"
	"planrecon/internal/domain"
	"planrecon/internal/ports"
)

// ReconcileResult contains the outcome of a reconciliation
type ReconcileResult struct {
	Run     *domain.Run
	Plan    *domain.Node
	Tracker *domain.Node
	Diff    []*domain.DiffNode
	Report  *Report
}

// ReconcileCommand builds the plan and tracker trees for a root key, sorts
// them and reports where they diverge. Nothing is written back to either side.
type ReconcileCommand struct {
	store   ports.TaskStore
	tracker ports.IssueTracker
	runs    ports.RunRecorder
	logger  *slog.Logger

	RootKey        string
	Project        string   // when set, RootKey must belong to it
	ClosedStatuses []string // empty means domain.DefaultClosedStatuses
	Concurrency    int
	ReportDir      string // empty skips writing the report file

	now func() time.Time
}

// NewReconcileCommand creates a new ReconcileCommand. runs may be nil.
func NewReconcileCommand(store ports.TaskStore, tracker ports.IssueTracker, runs ports.RunRecorder, rootKey string, logger *slog.Logger) *ReconcileCommand {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconcileCommand{
		store:       store,
		tracker:     tracker,
		runs:        runs,
		logger:      logger,
		RootKey:     rootKey,
		Concurrency: 1,
		now:         time.Now,
	}
}

// Validate checks the root key against the allowed project
func (c *ReconcileCommand) Validate() error {
	return application.ValidateIssueKey(c.RootKey, c.Project)
}

// Execute runs the reconciliation
func (c *ReconcileCommand) Execute(ctx context.Context) (*ReconcileResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	key := strings.ToUpper(strings.TrimSpace(c.RootKey))
	started := c.now()

	var plan, tracker *domain.Node
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		plan, err = NewBuildPlanTreeCommand(c.store, key, c.logger).Execute(gctx)
		return err
	})
	g.Go(func() error {
		cmd := NewBuildIssueTreeCommand(c.tracker, key, c.logger)
		cmd.Concurrency = c.Concurrency
		var err error
		tracker, err = cmd.Execute(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	plan = domain.SortTree(plan)
	tracker = domain.SortTree(tracker)

	differ := domain.NewDiffer(c.ClosedStatuses, c.logger)
	diff := differ.Diff(domain.Wrap(plan), domain.Wrap(tracker))

	report := &Report{
		RootKey:     key,
		GeneratedAt: started,
		Tracker:     tracker,
		Plan:        plan,
		Diff:        diff,
	}

	run := &domain.Run{
		ID:         uuid.NewString(),
		RootKey:    key,
		StartedAt:  started,
		PlanNodes:  plan.Count(),
		IssueNodes: tracker.Count(),
		Counts:     domain.CountDiff(diff),
	}

	if c.ReportDir != "" {
		path, err := WriteReport(c.ReportDir, report)
		if err != nil {
			return nil, err
		}
		run.ReportPath = path
		c.logger.Info("report written", "path", path)
	}

	run.Duration = c.now().Sub(started)

	if c.runs != nil {
		if err := c.runs.RecordRun(ctx, run); err != nil {
			c.logger.Warn("failed to record run", "run", run.ID, "error", err)
		}
	}

	c.logger.Info("reconciliation finished",
		"run", run.ID, "key", key, "divergences", run.Divergences(),
		"plan_nodes", run.PlanNodes, "tracker_nodes", run.IssueNodes)

	return &ReconcileResult{
		Run:     run,
		Plan:    plan,
		Tracker: tracker,
		Diff:    diff,
		Report:  report,
	}, nil
}

// Summary formats the per-category counts of a run on one line
func Summary(run *domain.Run) string {
	if run.Divergences() == 0 {
		return fmt.Sprintf("%s: plan and tracker agree", run.RootKey)
	}
	return fmt.Sprintf("%s: %d divergences (only in plan %d, only in tracker %d, closed in tracker %d, complete in plan %d)",
		run.RootKey, run.Divergences(),
		run.Counts[domain.OnlyInPlan], run.Counts[domain.OnlyInTracker],
		run.Counts[domain.ClosedButIncomplete], run.Counts[domain.CompleteButOpen])
}
