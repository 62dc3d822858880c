package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"planrecon/internal/application"
	"planrecon/internal/domain"
	"planrecon/internal/ports"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// Store implements the plan and run ports on SQLite
type Store struct {
	db     *sql.DB
	dbPath string
}

var (
	_ ports.TaskStore     = (*Store)(nil)
	_ ports.PlanWriter    = (*Store)(nil)
	_ ports.RunRecorder   = (*Store)(nil)
	_ ports.PlanInspector = (*Store)(nil)
)

// NewStore creates a new, unopened SQLite store
func NewStore() *Store {
	return &Store{}
}

// Open opens or creates the database at dbPath
func (s *Store) Open(dbPath string) error {
	// Expand ~ in path
	if strings.HasPrefix(dbPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}
	s.dbPath = dbPath

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	// journal_mode is persistent, so setting it once covers every pooled connection
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return fmt.Errorf("failed to enable WAL: %w", err)
	}

	// Pragmas + schema in a single batch
	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS tasks (
			uid INTEGER PRIMARY KEY,
			parent_uid INTEGER,
			position INTEGER NOT NULL,
			outline_level INTEGER NOT NULL,
			reference TEXT NOT NULL DEFAULT '',
			reference_key TEXT NOT NULL DEFAULT '',
			task_id INTEGER,
			name TEXT NOT NULL DEFAULT '',
			task_type INTEGER,
			priority INTEGER,
			start TEXT,
			finish TEXT,
			duration TEXT,
			work TEXT,
			actual_work TEXT,
			remaining_work TEXT,
			summary INTEGER NOT NULL DEFAULT 0,
			milestone INTEGER NOT NULL DEFAULT 0,
			notes TEXT,
			percent_complete REAL
		);
		CREATE TABLE IF NOT EXISTS extended_attributes (
			task_uid INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			field_id INTEGER NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (task_uid, seq)
		);
		CREATE TABLE IF NOT EXISTS predecessor_links (
			task_uid INTEGER NOT NULL,
			predecessor_uid INTEGER NOT NULL,
			link_type INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			root_key TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			plan_nodes INTEGER NOT NULL,
			issue_nodes INTEGER NOT NULL,
			unchanged INTEGER NOT NULL,
			only_in_plan INTEGER NOT NULL,
			only_in_tracker INTEGER NOT NULL,
			closed_but_incomplete INTEGER NOT NULL,
			complete_but_open INTEGER NOT NULL,
			report_path TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_uid, position);
		CREATE INDEX IF NOT EXISTS idx_tasks_reference ON tasks(reference_key, position);
		CREATE INDEX IF NOT EXISTS idx_attributes_task ON extended_attributes(task_uid);
		CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to setup database: %w", err)
	}

	if _, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion); err != nil {
		db.Close()
		return fmt.Errorf("failed to update metadata: %w", err)
	}

	return nil
}

// Close closes the database connection. Closing twice is a no-op.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Path returns the database file in use
func (s *Store) Path() string {
	return s.dbPath
}

// LastImport returns when a plan was last imported, zero if never
func (s *Store) LastImport(ctx context.Context) (time.Time, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'last_import'`).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}

const taskColumns = `uid, parent_uid, position, outline_level, reference, task_id, name,
	task_type, priority, start, finish, duration, work, actual_work, remaining_work,
	summary, milestone, notes, percent_complete`

// FindByReference returns the tasks whose reference matches key, ignoring case
func (s *Store) FindByReference(ctx context.Context, key string) ([]domain.PlanNode, error) {
	return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks
		WHERE reference_key = ? ORDER BY position`, referenceKey(key))
}

// ChildrenOf returns the direct children of uid in document order
func (s *Store) ChildrenOf(ctx context.Context, uid int64) ([]domain.PlanNode, error) {
	return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks
		WHERE parent_uid = ? ORDER BY position`, uid)
}

// ReferenceOf returns the stored reference of uid, "" when unlinked
func (s *Store) ReferenceOf(ctx context.Context, uid int64) (string, error) {
	var ref string
	err := s.db.QueryRowContext(ctx, `SELECT reference FROM tasks WHERE uid = ?`, uid).Scan(&ref)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("task %d: %w", uid, application.ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return ref, nil
}

// Task returns a single task with its attributes and links
func (s *Store) Task(ctx context.Context, uid int64) (*domain.PlanNode, error) {
	nodes, err := s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE uid = ?`, uid)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("task %d: %w", uid, application.ErrNotFound)
	}
	n := &nodes[0]

	rows, err := s.db.QueryContext(ctx, `SELECT field_id, value FROM extended_attributes
		WHERE task_uid = ? ORDER BY seq`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var a domain.ExtendedAttribute
		if err := rows.Scan(&a.FieldID, &a.Value); err != nil {
			return nil, err
		}
		n.ExtendedAttributes = append(n.ExtendedAttributes, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	links, err := s.db.QueryContext(ctx, `SELECT predecessor_uid, link_type FROM predecessor_links
		WHERE task_uid = ? ORDER BY rowid`, uid)
	if err != nil {
		return nil, err
	}
	defer links.Close()
	for links.Next() {
		var l domain.PredecessorLink
		if err := links.Scan(&l.PredecessorUID, &l.Type); err != nil {
			return nil, err
		}
		n.PredecessorLinks = append(n.PredecessorLinks, l)
	}
	return n, links.Err()
}

// Milestones returns the milestone tasks at an outline level in document order
func (s *Store) Milestones(ctx context.Context, level int) ([]domain.PlanNode, error) {
	return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks
		WHERE outline_level = ? AND milestone = 1 ORDER BY position`, level)
}

// Predecessors returns the tasks uid depends on, in document order
func (s *Store) Predecessors(ctx context.Context, uid int64) ([]domain.PlanNode, error) {
	return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks
		WHERE uid IN (SELECT predecessor_uid FROM predecessor_links WHERE task_uid = ?)
		ORDER BY position`, uid)
}

// Successors returns the tasks that depend on uid, in document order
func (s *Store) Successors(ctx context.Context, uid int64) ([]domain.PlanNode, error) {
	return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks
		WHERE uid IN (SELECT task_uid FROM predecessor_links WHERE predecessor_uid = ?)
		ORDER BY position`, uid)
}

func (s *Store) queryTasks(ctx context.Context, query string, args ...any) ([]domain.PlanNode, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []domain.PlanNode
	for rows.Next() {
		n, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func scanTask(rows *sql.Rows) (domain.PlanNode, error) {
	var (
		n                                  domain.PlanNode
		parent, taskID, taskType, priority sql.NullInt64
		start, finish, duration, work      sql.NullString
		actualWork, remainingWork, notes   sql.NullString
		summary, milestone                 bool
		percent                            sql.NullFloat64
	)

	err := rows.Scan(&n.UID, &parent, &n.Position, &n.OutlineLevel, &n.Reference, &taskID, &n.Name,
		&taskType, &priority, &start, &finish, &duration, &work, &actualWork, &remainingWork,
		&summary, &milestone, &notes, &percent)
	if err != nil {
		return n, err
	}

	if parent.Valid {
		p := parent.Int64
		n.ParentUID = &p
	}
	n.ID = taskID.Int64
	n.Type = int(taskType.Int64)
	n.Priority = int(priority.Int64)
	n.Start = parseTime(start)
	n.Finish = parseTime(finish)
	n.Duration = duration.String
	n.Work = work.String
	n.ActualWork = actualWork.String
	n.RemainingWork = remainingWork.String
	n.Summary = summary
	n.Milestone = milestone
	n.Notes = notes.String
	if percent.Valid {
		p := percent.Float64
		n.PercentComplete = &p
	}
	return n, nil
}

func referenceKey(ref string) string {
	return strings.ToUpper(strings.TrimSpace(ref))
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func parseTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}
