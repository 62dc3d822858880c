package ports

import (
	"context"

	"planrecon/internal/domain"
)

// RunRecorder keeps the history of reconciliation runs
type RunRecorder interface {
	RecordRun(ctx context.Context, run *domain.Run) error
	// ListRuns returns the most recent runs first
	ListRuns(ctx context.Context, limit int) ([]domain.Run, error)
}
