package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"planrecon/internal/application"
	"planrecon/internal/domain"
	"planrecon/internal/ports"
)

// BuildIssueTreeCommand builds the labeled tracker tree below RootKey.
//
// A failure to fetch the root aborts the build. A failure to fetch the
// children of any other issue is logged and that issue keeps no children.
type BuildIssueTreeCommand struct {
	tracker ports.IssueTracker
	logger  *slog.Logger
	RootKey string

	// Concurrency bounds the tracker calls in flight. Values below 2 walk
	// the tree sequentially.
	Concurrency int
}

// NewBuildIssueTreeCommand creates a new BuildIssueTreeCommand
func NewBuildIssueTreeCommand(tracker ports.IssueTracker, rootKey string, logger *slog.Logger) *BuildIssueTreeCommand {
	if logger == nil {
		logger = slog.Default()
	}
	return &BuildIssueTreeCommand{
		tracker:     tracker,
		logger:      logger,
		RootKey:     rootKey,
		Concurrency: 1,
	}
}

// Validate checks that a root key was given
func (c *BuildIssueTreeCommand) Validate() error {
	return application.ValidateRequired("rootKey", c.RootKey)
}

// Execute fetches the root issue and walks its descendants
func (c *BuildIssueTreeCommand) Execute(ctx context.Context) (*domain.Node, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	key := strings.ToUpper(strings.TrimSpace(c.RootKey))
	issue, err := c.tracker.FetchIssue(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch root issue %s: %w", key, err)
	}

	w := &issueWalk{tracker: c.tracker, logger: c.logger}
	if c.Concurrency > 1 {
		w.sem = semaphore.NewWeighted(int64(c.Concurrency))
	}

	root := issueNode(*issue)
	w.expand(ctx, root, &lineage{key: root.Key})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.logger.Debug("tracker tree built", "key", key, "nodes", root.Count())
	return root, nil
}

// lineage is the chain of keys from the root down to the node being expanded
type lineage struct {
	key    string
	parent *lineage
}

func (l *lineage) contains(key string) bool {
	for ; l != nil; l = l.parent {
		if l.key == key {
			return true
		}
	}
	return false
}

type issueWalk struct {
	tracker ports.IssueTracker
	logger  *slog.Logger
	sem     *semaphore.Weighted
}

func (w *issueWalk) children(ctx context.Context, key string) ([]domain.Issue, error) {
	if w.sem != nil {
		if err := w.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer w.sem.Release(1)
	}
	return w.tracker.FetchChildren(ctx, key)
}

func (w *issueWalk) expand(ctx context.Context, n *domain.Node, path *lineage) {
	if ctx.Err() != nil {
		return
	}

	issues, err := w.children(ctx, n.Key)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Warn("failed to fetch child issues, continuing without them",
				"key", n.Key, "error", err)
		}
		return
	}

	for _, issue := range issues {
		if issue.IsSubtask {
			continue
		}
		child := issueNode(issue)
		if path.contains(child.Key) {
			w.logger.Warn("issue already on the current path, not expanding again",
				"key", child.Key, "parent", n.Key)
			continue
		}
		n.Children = append(n.Children, child)
	}

	if w.sem == nil {
		for _, child := range n.Children {
			w.expand(ctx, child, &lineage{key: child.Key, parent: path})
		}
		return
	}

	// only tracker calls hold the semaphore, never a whole expansion
	var wg sync.WaitGroup
	for _, child := range n.Children {
		wg.Go(func() {
			w.expand(ctx, child, &lineage{key: child.Key, parent: path})
		})
	}
	wg.Wait()
}

func issueNode(issue domain.Issue) *domain.Node {
	key := strings.ToUpper(strings.TrimSpace(issue.Key))
	return &domain.Node{
		Key:    key,
		Label:  domain.IssueLabel(key, issue.Summary, issue.Status),
		Status: domain.TrackerStatus(issue.Status),
	}
}
