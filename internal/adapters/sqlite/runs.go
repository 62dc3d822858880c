package sqlite

import (
	"context"
	"time"

	"planrecon/internal/domain"
)

// RecordRun stores a reconciliation run
func (s *Store) RecordRun(ctx context.Context, run *domain.Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, root_key, started_at, duration_ms, plan_nodes, issue_nodes,
			unchanged, only_in_plan, only_in_tracker, closed_but_incomplete, complete_but_open,
			report_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.RootKey, run.StartedAt.UnixMilli(), run.Duration.Milliseconds(),
		run.PlanNodes, run.IssueNodes,
		run.Counts[domain.Unchanged], run.Counts[domain.OnlyInPlan], run.Counts[domain.OnlyInTracker],
		run.Counts[domain.ClosedButIncomplete], run.Counts[domain.CompleteButOpen],
		run.ReportPath)
	return err
}

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, root_key, started_at, duration_ms, plan_nodes, issue_nodes,
			unchanged, only_in_plan, only_in_tracker, closed_but_incomplete, complete_but_open,
			report_path
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		var (
			r                                          domain.Run
			startedMs, durationMs                      int64
			unchanged, onlyPlan, onlyTracker, cbi, cbo int
		)
		if err := rows.Scan(&r.ID, &r.RootKey, &startedMs, &durationMs, &r.PlanNodes, &r.IssueNodes,
			&unchanged, &onlyPlan, &onlyTracker, &cbi, &cbo, &r.ReportPath); err != nil {
			return nil, err
		}
		r.StartedAt = time.UnixMilli(startedMs)
		r.Duration = time.Duration(durationMs) * time.Millisecond
		r.Counts = domain.DiffCounts{
			domain.Unchanged:           unchanged,
			domain.OnlyInPlan:          onlyPlan,
			domain.OnlyInTracker:       onlyTracker,
			domain.ClosedButIncomplete: cbi,
			domain.CompleteButOpen:     cbo,
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
