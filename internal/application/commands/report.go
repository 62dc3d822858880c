package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"planrecon/internal/domain"
)

const (
	reportTimeLayout = "20060102_150405"
	sectionRule      = "--------------------"
)

// Report is the text artifact of one reconciliation
type Report struct {
	RootKey     string
	GeneratedAt time.Time
	Tracker     *domain.Node
	Plan        *domain.Node
	Diff        []*domain.DiffNode
}

// FileName returns report_diff_<KEY>_<YYYYMMDD_HHMMSS>.txt
func (r *Report) FileName() string {
	return fmt.Sprintf("report_diff_%s_%s.txt", r.RootKey, r.GeneratedAt.Format(reportTimeLayout))
}

// Lines renders the three report sections
func (r *Report) Lines() []string {
	var lines []string
	section := func(title string, body []string) {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, title, sectionRule)
		lines = append(lines, body...)
	}

	section("Tracker Task Tree:", domain.RenderTree(r.Tracker))
	section("Plan Task Tree:", domain.RenderTree(r.Plan))
	section("Tasks Only in One Tree or Out of Sync:", domain.RenderDiff(r.Diff))
	return lines
}

func (r *Report) String() string {
	return strings.Join(r.Lines(), "\n") + "\n"
}

// WriteReport writes the report into dir, creating dir when missing, and
// returns the written path
func WriteReport(dir string, r *Report) (string, error) {
	return writeReportFile(dir, r.FileName(), r.String())
}

func writeReportFile(dir, name, content string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
