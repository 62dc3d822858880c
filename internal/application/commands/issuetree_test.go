package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planrecon/internal/application"
	"planrecon/internal/domain"
)

func TestBuildIssueTreeCommand_Execute(t *testing.T) {
	tr := newFakeTracker().
		add("", "MUP-1", "In Progress").
		add("MUP-1", "MUP-3", "Closed").
		add("MUP-1", "MUP-2", "Open").
		addSubtask("MUP-1", "MUP-4").
		add("MUP-3", "MUP-5", "Closed")

	root, err := NewBuildIssueTreeCommand(tr, "mup-1", nil).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"- MUP-1 - issue MUP-1 [Status: In Progress]",
		"    - MUP-3 - issue MUP-3 [Status: Closed]",
		"        - MUP-5 - issue MUP-5 [Status: Closed]",
		"    - MUP-2 - issue MUP-2 [Status: Open]",
	}, domain.RenderTree(root), "sub-tasks are excluded and tracker order is kept")
	assert.Equal(t, domain.TrackerStatus("Closed"), root.Children[0].Status)
}

func TestBuildIssueTreeCommand_RootFailureIsFatal(t *testing.T) {
	_, err := NewBuildIssueTreeCommand(newFakeTracker(), "MUP-1", nil).Execute(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, application.ErrNotFound))
}

func TestBuildIssueTreeCommand_ChildFailureDegrades(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	tr := newFakeTracker().
		add("", "MUP-1", "Open").
		add("MUP-1", "MUP-2", "Open").
		add("MUP-2", "MUP-6", "Open").
		add("MUP-1", "MUP-3", "Open").
		add("MUP-3", "MUP-7", "Open")
	tr.failFetch["MUP-2"] = errors.New("HTTP 500")

	root, err := NewBuildIssueTreeCommand(tr, "MUP-1", logger).Execute(context.Background())
	require.NoError(t, err)

	require.Len(t, root.Children, 2)
	assert.Empty(t, root.Children[0].Children, "failed fetch yields no children")
	assert.Len(t, root.Children[1].Children, 1, "walk continues with siblings")
	assert.Contains(t, buf.String(), "failed to fetch child issues")
	assert.Contains(t, buf.String(), "MUP-2")
}

func TestBuildIssueTreeCommand_CycleGuard(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	tr := newFakeTracker().
		add("", "MUP-1", "Open").
		add("MUP-1", "MUP-2", "Open")
	tr.children["MUP-2"] = []string{"MUP-1"}

	root, err := NewBuildIssueTreeCommand(tr, "MUP-1", logger).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, root.Count())
	assert.Contains(t, buf.String(), "already on the current path")
}

func TestBuildIssueTreeCommand_ConcurrentMatchesSequential(t *testing.T) {
	tr := newFakeTracker().add("", "MUP-1", "Open")
	for i := 2; i <= 6; i++ {
		parent := fmt.Sprintf("MUP-%d", i)
		tr.add("MUP-1", parent, "Open")
		for j := 0; j < 4; j++ {
			tr.add(parent, fmt.Sprintf("MUP-%d", i*10+j), "Closed")
		}
	}
	tr.failFetch["MUP-4"] = errors.New("timeout")

	seq, err := NewBuildIssueTreeCommand(tr, "MUP-1", nil).Execute(context.Background())
	require.NoError(t, err)

	cmd := NewBuildIssueTreeCommand(tr, "MUP-1", nil)
	cmd.Concurrency = 4
	par, err := cmd.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.RenderTree(seq), domain.RenderTree(par))
	assert.Equal(t, 1+5+16, par.Count())
}

func TestBuildIssueTreeCommand_BoundsTrackerCalls(t *testing.T) {
	tr := newFakeTracker().add("", "MUP-1", "Open")
	for i := 2; i <= 13; i++ {
		parent := fmt.Sprintf("MUP-%d", i)
		tr.add("MUP-1", parent, "Open")
		for j := 0; j < 3; j++ {
			tr.add(parent, fmt.Sprintf("MUP-%d", i*10+j), "Open")
		}
	}
	tr.delay = 5 * time.Millisecond

	cmd := NewBuildIssueTreeCommand(tr, "MUP-1", nil)
	cmd.Concurrency = 3
	root, err := cmd.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1+12+36, root.Count())
	assert.LessOrEqual(t, tr.maxInFlight, int32(3))
	assert.Greater(t, tr.maxInFlight, int32(1))
}

func TestBuildIssueTreeCommand_Canceled(t *testing.T) {
	tr := newFakeTracker().add("", "MUP-1", "Open")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBuildIssueTreeCommand(tr, "MUP-1", nil).Execute(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}
