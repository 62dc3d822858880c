package ports

import (
	"context"

	"planrecon/internal/domain"
)

// IssueTracker defines read-only access to the issue tracker
type IssueTracker interface {
	// FetchIssue returns a single issue by key
	FetchIssue(ctx context.Context, key string) (*domain.Issue, error)

	// FetchChildren returns the direct children of an issue. Sub-tasks may be
	// included; callers filter them.
	FetchChildren(ctx context.Context, key string) ([]domain.Issue, error)
}
