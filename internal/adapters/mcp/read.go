package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"planrecon/internal/application/commands"
	"planrecon/internal/domain"
)

// RegisterReadTools adds the tools that never modify the plan database.
// reconcile may still write a report file and record the run.
func RegisterReadTools(s *server.MCPServer, deps Deps) {
	s.AddTool(planTreeTool(), planTreeHandler(deps))
	if deps.Tracker != nil {
		s.AddTool(trackerTreeTool(), trackerTreeHandler(deps))
		s.AddTool(reconcileTool(), reconcileHandler(deps))
	}
	if deps.Inspector != nil {
		s.AddTool(milestonesTool(), milestonesHandler(deps))
		s.AddTool(taskTool(), taskHandler(deps))
	}
	if deps.Runs != nil {
		s.AddTool(historyTool(), historyHandler(deps))
	}
}

// --- plan_tree ---

func planTreeTool() mcp.Tool {
	return mcp.NewTool("plan_tree",
		mcp.WithDescription("Show the imported plan subtree whose task references the given issue key, children sorted by key number."),
		mcp.WithString("key",
			mcp.Description("Root issue key (e.g. MUP-1)"),
			mcp.Required(),
		),
	)
}

func planTreeHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key := req.GetString("key", "")
		if key == "" {
			return toolError(fmt.Errorf("key is required"))
		}

		tree, err := commands.NewBuildPlanTreeCommand(deps.Store, key, deps.Logger).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return treeResult(tree), nil
	}
}

// --- tracker_tree ---

func trackerTreeTool() mcp.Tool {
	return mcp.NewTool("tracker_tree",
		mcp.WithDescription("Fetch the issue tree below the given key from the tracker, sub-tasks excluded, children sorted by key number."),
		mcp.WithString("key",
			mcp.Description("Root issue key (e.g. MUP-1)"),
			mcp.Required(),
		),
	)
}

func trackerTreeHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key := req.GetString("key", "")
		if key == "" {
			return toolError(fmt.Errorf("key is required"))
		}

		cmd := commands.NewBuildIssueTreeCommand(deps.Tracker, key, deps.Logger)
		if deps.Concurrency > 0 {
			cmd.Concurrency = deps.Concurrency
		}
		tree, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return treeResult(tree), nil
	}
}

// --- reconcile ---

func reconcileTool() mcp.Tool {
	return mcp.NewTool("reconcile",
		mcp.WithDescription("Compare the plan subtree and the tracker issue tree for a root key and list where they diverge: tasks only in one tree, issues closed while the plan is incomplete, plan tasks complete while the issue is open."),
		mcp.WithString("key",
			mcp.Description("Root issue key (e.g. MUP-1)"),
			mcp.Required(),
		),
		mcp.WithBoolean("write_report",
			mcp.Description("Also write the full report file to the configured report directory"),
		),
	)
}

func reconcileHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key := req.GetString("key", "")
		if key == "" {
			return toolError(fmt.Errorf("key is required"))
		}

		cmd := deps.reconcileCommand(key)
		if req.GetBool("write_report", false) {
			cmd.ReportDir = deps.ReportDir
		}
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		sb.WriteString(commands.Summary(result.Run))
		sb.WriteByte('\n')
		for _, line := range domain.RenderDiff(result.Diff) {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
		if result.Run.ReportPath != "" {
			fmt.Fprintf(&sb, "report: %s\n", result.Run.ReportPath)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- history ---

func historyTool() mcp.Tool {
	return mcp.NewTool("history",
		mcp.WithDescription("List recent reconciliation runs, newest first."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of runs (default 10)"),
		),
	)
}

func historyHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		runs, err := deps.Runs.ListRuns(ctx, req.GetInt("limit", 10))
		if err != nil {
			return toolError(err)
		}
		return formatEntities(runs, formatRun)
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func treeResult(tree *domain.Node) *mcp.CallToolResult {
	lines := domain.RenderTree(domain.SortTree(tree))
	return mcp.NewToolResultText(strings.Join(lines, "\n") + "\n")
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatRun(r domain.Run) string {
	line := fmt.Sprintf("%s  %s  %s  %d divergences  %s",
		r.StartedAt.Format("2006-01-02 15:04:05"), r.RootKey, r.ID,
		r.Divergences(), r.Duration.Round(1e6))
	if r.ReportPath != "" {
		line += "  " + r.ReportPath
	}
	return line
}
