package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"planrecon/internal/application/commands"
)

// RegisterWriteTools adds the tools that modify the local plan database.
// Nothing is ever written to the tracker.
func RegisterWriteTools(s *server.MCPServer, deps Deps) {
	if deps.Parser == nil || deps.Writer == nil {
		return
	}
	s.AddTool(importPlanTool(), importPlanHandler(deps))
}

// --- import_plan ---

func importPlanTool() mcp.Tool {
	return mcp.NewTool("import_plan",
		mcp.WithDescription("Import a project plan XML export into the plan database, replacing the previous import."),
		mcp.WithString("path",
			mcp.Description("Path to the plan XML file"),
			mcp.Required(),
		),
		mcp.WithNumber("field_id",
			mcp.Description("Extended attribute field id holding the issue key (defaults to the configured one)"),
		),
	)
}

func importPlanHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := req.GetString("path", "")
		if path == "" {
			return toolError(fmt.Errorf("path is required"))
		}

		cmd := commands.NewImportPlanCommand(deps.Parser, deps.Writer, path, deps.Logger)
		cmd.FieldID = int64(req.GetInt("field_id", int(deps.FieldID)))

		stats, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		return mcp.NewToolResultText(fmt.Sprintf(
			"Imported %d tasks (%d linked to issues, %d duplicates skipped) in %s",
			stats.Tasks, stats.Linked, stats.Duplicates, stats.Duration.Round(1e6))), nil
	}
}
