package mcp

import (
	"log/slog"

	"planrecon/internal/application/commands"
	"planrecon/internal/ports"
)

// Deps carries what the tools need. Every field but Store may be nil, in
// which case the tools depending on it are not registered.
type Deps struct {
	Store     ports.TaskStore
	Tracker   ports.IssueTracker
	Inspector ports.PlanInspector
	Runs      ports.RunRecorder
	Parser    ports.PlanParser
	Writer    ports.PlanWriter
	Logger    *slog.Logger

	Project        string
	ClosedStatuses []string
	Concurrency    int
	ReportDir      string
	FieldID        int64
}

func (d Deps) reconcileCommand(key string) *commands.ReconcileCommand {
	cmd := commands.NewReconcileCommand(d.Store, d.Tracker, d.Runs, key, d.Logger)
	cmd.Project = d.Project
	cmd.ClosedStatuses = d.ClosedStatuses
	if d.Concurrency > 0 {
		cmd.Concurrency = d.Concurrency
	}
	return cmd
}
