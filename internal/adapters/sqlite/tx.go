package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"planrecon/internal/domain"
)

// planTx batches the statements of one plan replacement
type planTx struct {
	tx         *sql.Tx
	insertTask *sql.Stmt
	insertAttr *sql.Stmt
	insertLink *sql.Stmt
}

func (s *Store) beginPlanTx(ctx context.Context) (*planTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	t := &planTx{tx: tx}

	t.insertTask, err = tx.PrepareContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`, reference_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err == nil {
		t.insertAttr, err = tx.PrepareContext(ctx, `
			INSERT INTO extended_attributes (task_uid, seq, field_id, value) VALUES (?, ?, ?, ?)
		`)
	}
	if err == nil {
		t.insertLink, err = tx.PrepareContext(ctx, `
			INSERT INTO predecessor_links (task_uid, predecessor_uid, link_type) VALUES (?, ?, ?)
		`)
	}
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	return t, nil
}

// clear removes the previously stored plan
func (t *planTx) clear(ctx context.Context) error {
	for _, table := range []string{"tasks", "extended_attributes", "predecessor_links"} {
		if _, err := t.tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// insert stores a task with its attributes and links, returning how many of
// each were written
func (t *planTx) insert(ctx context.Context, n *domain.PlanNode) (attrs, links int, err error) {
	var percent any
	if n.PercentComplete != nil {
		percent = *n.PercentComplete
	}

	_, err = t.insertTask.ExecContext(ctx,
		n.UID, n.ParentUID, n.Position, n.OutlineLevel, n.Reference, n.ID, n.Name,
		n.Type, n.Priority, formatTime(n.Start), formatTime(n.Finish), n.Duration, n.Work,
		n.ActualWork, n.RemainingWork, n.Summary, n.Milestone, n.Notes, percent,
		referenceKey(n.Reference))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to insert task %d: %w", n.UID, err)
	}

	for i, a := range n.ExtendedAttributes {
		if _, err := t.insertAttr.ExecContext(ctx, n.UID, i, a.FieldID, a.Value); err != nil {
			return 0, 0, fmt.Errorf("failed to insert attribute of task %d: %w", n.UID, err)
		}
	}
	for _, l := range n.PredecessorLinks {
		if _, err := t.insertLink.ExecContext(ctx, n.UID, l.PredecessorUID, l.Type); err != nil {
			return 0, 0, fmt.Errorf("failed to insert link of task %d: %w", n.UID, err)
		}
	}
	return len(n.ExtendedAttributes), len(n.PredecessorLinks), nil
}

func (t *planTx) touch(ctx context.Context, at time.Time) error {
	_, err := t.tx.ExecContext(ctx, `INSERT OR REPLACE INTO meta (key, value) VALUES ('last_import', ?)`,
		at.UTC().Format(time.RFC3339))
	return err
}

// Commit commits the transaction
func (t *planTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *planTx) Rollback() error {
	return t.tx.Rollback()
}

// ReplacePlan swaps the stored plan for nodes in a single transaction
func (s *Store) ReplacePlan(ctx context.Context, nodes []domain.PlanNode) (*domain.ImportStats, error) {
	start := time.Now()

	t, err := s.beginPlanTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer t.Rollback()

	if err := t.clear(ctx); err != nil {
		return nil, err
	}

	stats := &domain.ImportStats{}
	for i := range nodes {
		attrs, links, err := t.insert(ctx, &nodes[i])
		if err != nil {
			return nil, err
		}
		stats.Tasks++
		stats.Attributes += attrs
		stats.Links += links
	}

	if err := t.touch(ctx, start); err != nil {
		return nil, err
	}
	if err := t.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit plan: %w", err)
	}

	stats.Duration = time.Since(start)
	return stats, nil
}
