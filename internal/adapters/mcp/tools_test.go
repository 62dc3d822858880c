package mcp

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planrecon/internal/application"
	"planrecon/internal/domain"
)

type memStore struct {
	tasks []domain.PlanNode
}

func (s *memStore) FindByReference(_ context.Context, key string) ([]domain.PlanNode, error) {
	var out []domain.PlanNode
	for _, t := range s.tasks {
		if strings.EqualFold(t.Reference, key) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memStore) ChildrenOf(_ context.Context, uid int64) ([]domain.PlanNode, error) {
	var out []domain.PlanNode
	for _, t := range s.tasks {
		if t.ParentUID != nil && *t.ParentUID == uid {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memStore) ReferenceOf(_ context.Context, uid int64) (string, error) {
	for _, t := range s.tasks {
		if t.UID == uid {
			return t.Reference, nil
		}
	}
	return "", application.ErrNotFound
}

func task(uid int64, parent *int64, ref, name string, pct float64) domain.PlanNode {
	n := domain.PlanNode{UID: uid, ParentUID: parent, Reference: ref}
	n.Name = name
	n.PercentComplete = &pct
	return n
}

func uidPtr(v int64) *int64 { return &v }

type memTracker struct {
	issues   map[string]domain.Issue
	children map[string][]string
}

func (t *memTracker) FetchIssue(_ context.Context, key string) (*domain.Issue, error) {
	issue, ok := t.issues[key]
	if !ok {
		return nil, &application.TrackerError{Op: "fetch", Key: key, StatusCode: 404, Err: application.ErrNotFound}
	}
	return &issue, nil
}

func (t *memTracker) FetchChildren(_ context.Context, key string) ([]domain.Issue, error) {
	var out []domain.Issue
	for _, k := range t.children[key] {
		out = append(out, t.issues[k])
	}
	return out, nil
}

type memRuns struct {
	runs []domain.Run
}

func (r *memRuns) RecordRun(_ context.Context, run *domain.Run) error {
	r.runs = append([]domain.Run{*run}, r.runs...)
	return nil
}

func (r *memRuns) ListRuns(_ context.Context, limit int) ([]domain.Run, error) {
	if limit > 0 && limit < len(r.runs) {
		return r.runs[:limit], nil
	}
	return r.runs, nil
}

func testDeps(t *testing.T) Deps {
	t.Helper()
	return Deps{
		Store: &memStore{tasks: []domain.PlanNode{
			task(1, nil, "MUP-1", "Epic", 40),
			task(2, uidPtr(1), "MUP-3", "Build", 100),
			task(3, uidPtr(1), "MUP-2", "Design", 100),
		}},
		Tracker: &memTracker{
			issues: map[string]domain.Issue{
				"MUP-1": {Key: "MUP-1", Summary: "Epic", Status: "Open"},
				"MUP-2": {Key: "MUP-2", Summary: "Design", Status: "Closed"},
				"MUP-4": {Key: "MUP-4", Summary: "Test", Status: "Open"},
			},
			children: map[string][]string{"MUP-1": {"MUP-4", "MUP-2"}},
		},
		Runs:      &memRuns{},
		ReportDir: t.TempDir(),
	}
}

func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, res.IsError
}

func TestPlanTree(t *testing.T) {
	out, isErr := call(t, planTreeHandler(testDeps(t)), map[string]any{"key": "mup-1"})

	require.False(t, isErr, out)
	assert.Equal(t, strings.Join([]string{
		"- MUP-1 - Epic [PercentWorkComplete: 40%]",
		"    - MUP-2 - Design [PercentWorkComplete: 100%]",
		"    - MUP-3 - Build [PercentWorkComplete: 100%]",
	}, "\n")+"\n", out)
}

func TestPlanTree_RequiresKey(t *testing.T) {
	out, isErr := call(t, planTreeHandler(testDeps(t)), nil)

	assert.True(t, isErr)
	assert.Equal(t, "key is required", out)
}

func TestTrackerTree(t *testing.T) {
	out, isErr := call(t, trackerTreeHandler(testDeps(t)), map[string]any{"key": "MUP-1"})

	require.False(t, isErr, out)
	assert.Equal(t, strings.Join([]string{
		"- MUP-1 - Epic [Status: Open]",
		"    - MUP-2 - Design [Status: Closed]",
		"    - MUP-4 - Test [Status: Open]",
	}, "\n")+"\n", out)
}

func TestTrackerTree_UnknownKey(t *testing.T) {
	_, isErr := call(t, trackerTreeHandler(testDeps(t)), map[string]any{"key": "MUP-9"})

	assert.True(t, isErr)
}

func TestReconcile(t *testing.T) {
	deps := testDeps(t)

	out, isErr := call(t, reconcileHandler(deps), map[string]any{"key": "MUP-1"})

	require.False(t, isErr, out)
	assert.Contains(t, out, "MUP-1: 2 divergences")
	assert.Contains(t, out, "(Only in plan) MUP-3 - Build")
	assert.Contains(t, out, "(Only in tracker) MUP-4 - Test")
	assert.NotContains(t, out, "report:")
	assert.Len(t, deps.Runs.(*memRuns).runs, 1)
}

func TestReconcile_WritesReport(t *testing.T) {
	deps := testDeps(t)

	out, isErr := call(t, reconcileHandler(deps), map[string]any{"key": "MUP-1", "write_report": true})

	require.False(t, isErr, out)
	matches, err := filepath.Glob(filepath.Join(deps.ReportDir, "report_diff_MUP-1_*.txt"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Contains(t, out, "report: "+matches[0])
}

func TestReconcile_ProjectMismatch(t *testing.T) {
	deps := testDeps(t)
	deps.Project = "OPS"

	_, isErr := call(t, reconcileHandler(deps), map[string]any{"key": "MUP-1"})

	assert.True(t, isErr)
}

func TestHistory(t *testing.T) {
	deps := testDeps(t)
	runs := deps.Runs.(*memRuns)
	out, _ := call(t, historyHandler(deps), nil)
	assert.Equal(t, "No results.", out)

	started := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	require.NoError(t, runs.RecordRun(context.Background(), &domain.Run{
		ID: "r1", RootKey: "MUP-1", StartedAt: started, Duration: 1500 * time.Millisecond,
		Counts: domain.DiffCounts{domain.OnlyInPlan: 2},
	}))

	out, isErr := call(t, historyHandler(deps), map[string]any{"limit": 5})

	require.False(t, isErr)
	assert.Equal(t, "2026-03-02 09:30:00  MUP-1  r1  2 divergences  1.5s\n", out)
}
