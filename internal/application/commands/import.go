package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"planrecon/internal/application"
	"planrecon/internal/domain"
	"planrecon/internal/ports"
)

// ImportPlanCommand loads a plan export into the task store, replacing the
// previously imported plan
type ImportPlanCommand struct {
	parser   ports.PlanParser
	writer   ports.PlanWriter
	logger   *slog.Logger
	PlanFile string
	FieldID  int64 // extended attribute holding the tracker key; 0 means the default
}

// NewImportPlanCommand creates a new ImportPlanCommand
func NewImportPlanCommand(parser ports.PlanParser, writer ports.PlanWriter, planFile string, logger *slog.Logger) *ImportPlanCommand {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportPlanCommand{
		parser:   parser,
		writer:   writer,
		logger:   logger,
		PlanFile: planFile,
	}
}

// Validate checks that a plan file was given
func (c *ImportPlanCommand) Validate() error {
	return application.ValidateRequired("planFile", c.PlanFile)
}

// Execute parses the export, rebuilds the hierarchy and stores it
func (c *ImportPlanCommand) Execute(ctx context.Context) (*domain.ImportStats, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	f, err := os.Open(c.PlanFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan file: %w", err)
	}
	defer f.Close()

	records, err := c.parser.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", c.PlanFile, err)
	}

	nodes := domain.Reconstruct(records, c.logger)

	extractor := domain.NewReferenceExtractor(c.FieldID)
	linked := 0
	for i := range nodes {
		if ref, ok := extractor.Extract(nodes[i].ExtendedAttributes); ok {
			nodes[i].Reference = ref
			linked++
		}
	}

	stats, err := c.writer.ReplacePlan(ctx, nodes)
	if err != nil {
		return nil, fmt.Errorf("failed to store plan: %w", err)
	}

	stats.Records = len(records)
	stats.Duplicates = len(records) - len(nodes)
	stats.Linked = linked
	stats.Duration = time.Since(start)

	c.logger.Info("plan imported",
		"file", c.PlanFile, "tasks", stats.Tasks, "linked", stats.Linked,
		"duplicates", stats.Duplicates, "duration", stats.Duration)

	return stats, nil
}
