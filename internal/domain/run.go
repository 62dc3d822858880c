package domain

import "time"

// Run is the record of one reconciliation
type Run struct {
	ID         string
	RootKey    string
	StartedAt  time.Time
	Duration   time.Duration
	PlanNodes  int
	IssueNodes int
	Counts     DiffCounts
	ReportPath string
}

// Divergences returns the number of reported divergences
func (r *Run) Divergences() int {
	return r.Counts.Total()
}
