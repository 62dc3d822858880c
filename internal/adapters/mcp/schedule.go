package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"planrecon/internal/application/commands"
)

// --- milestones ---

func milestonesTool() mcp.Tool {
	return mcp.NewTool("milestones",
		mcp.WithDescription("List plan milestones at an outline level ordered by finish date, with the tasks each depends on and enables, as a markdown table."),
		mcp.WithNumber("level",
			mcp.Description("Outline level (default 1, the top level)"),
		),
		mcp.WithBoolean("write_report",
			mcp.Description("Also write the table to the configured report directory"),
		),
	)
}

func milestonesHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewMilestonesReportCommand(deps.Inspector, deps.Logger)
		cmd.Level = req.GetInt("level", 1)
		if req.GetBool("write_report", false) {
			cmd.ReportDir = deps.ReportDir
		}

		report, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		text := report.Markdown()
		if report.Path != "" {
			text += fmt.Sprintf("report: %s\n", report.Path)
		}
		return mcp.NewToolResultText(text), nil
	}
}

// --- task ---

func taskTool() mcp.Tool {
	return mcp.NewTool("task",
		mcp.WithDescription("Show one imported plan task by UID: schedule, completion, notes, custom fields and the tasks it depends on or enables."),
		mcp.WithNumber("uid",
			mcp.Description("Task UID from the plan export"),
			mcp.Required(),
		),
	)
}

func taskHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		uid, err := req.RequireInt("uid")
		if err != nil {
			return toolError(fmt.Errorf("uid is required"))
		}

		detail, err := commands.NewShowTaskCommand(deps.Inspector, int64(uid), deps.Logger).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(strings.Join(detail.Lines(), "\n") + "\n"), nil
	}
}
