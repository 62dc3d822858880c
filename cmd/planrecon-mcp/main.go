package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"planrecon/internal/adapters/jira"
	mcpadapter "planrecon/internal/adapters/mcp"
	"planrecon/internal/adapters/msproject"
	"planrecon/internal/adapters/sqlite"
	"planrecon/internal/config"
)

func main() {
	configFlag := flag.String("config", "", "config file (default "+config.DefaultPath()+")")
	levelFlag := flag.String("log-level", "", "override the configured log level (debug, info, warn, error)")
	flag.Parse()

	cfg, err := config.Load(*configFlag, config.WithLogLevel(*levelFlag))
	if err != nil {
		log.Fatalf("planrecon-mcp: %v", err)
	}
	// stdout carries the protocol
	logger := cfg.Log.NewLogger(os.Stderr)

	store := sqlite.NewStore()
	if err := store.Open(cfg.Database); err != nil {
		log.Fatalf("planrecon-mcp: %v", err)
	}
	defer store.Close()

	t := cfg.Tracker
	deps := mcpadapter.Deps{
		Store:          store,
		Inspector:      store,
		Runs:           store,
		Parser:         msproject.NewParser(),
		Writer:         store,
		Logger:         logger,
		Project:        t.Project,
		ClosedStatuses: t.ClosedStatuses,
		Concurrency:    t.Concurrency,
		ReportDir:      cfg.ReportDir,
		FieldID:        cfg.Plan.ReferenceFieldID,
	}

	// without a tracker the plan-only tools are still served
	if t.URL != "" {
		tracker, err := jira.NewClient(t.JiraConfig(), logger)
		if err != nil {
			log.Fatalf("planrecon-mcp: %v", err)
		}
		deps.Tracker = tracker
	} else {
		logger.Warn("tracker.url not set, tracker tools disabled")
	}

	mcpServer := server.NewMCPServer(
		"planrecon-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, deps)
	mcpadapter.RegisterWriteTools(mcpServer, deps)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("planrecon-mcp: %v", err)
	}
}
