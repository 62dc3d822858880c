package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planrecon/internal/domain"
)

func sampleReport() *Report {
	return &Report{
		RootKey:     "MUP-1",
		GeneratedAt: time.Date(2023, 11, 30, 8, 0, 1, 0, time.Local),
		Tracker:     &domain.Node{Label: "MUP-1 - Epic [Status: Open]"},
		Plan: &domain.Node{Label: "MUP-1 - Epic [PercentWorkComplete: 10%]", Children: []*domain.Node{
			{Label: "MUP-2 - Task [PercentWorkComplete: 0%]"},
		}},
		Diff: []*domain.DiffNode{
			{Category: domain.OnlyInPlan, Label: "MUP-2 - Task [PercentWorkComplete: 0%]"},
		},
	}
}

func TestReport_Lines(t *testing.T) {
	assert.Equal(t, []string{
		"Tracker Task Tree:",
		"--------------------",
		"- MUP-1 - Epic [Status: Open]",
		"",
		"Plan Task Tree:",
		"--------------------",
		"- MUP-1 - Epic [PercentWorkComplete: 10%]",
		"    - MUP-2 - Task [PercentWorkComplete: 0%]",
		"",
		"Tasks Only in One Tree or Out of Sync:",
		"--------------------",
		"- (Only in plan) MUP-2 - Task [PercentWorkComplete: 0%]",
	}, sampleReport().Lines())
}

func TestReport_FileName(t *testing.T) {
	assert.Equal(t, "report_diff_MUP-1_20231130_080001.txt", sampleReport().FileName())
}

func TestWriteReport_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "resources", "reports")

	path, err := WriteReport(dir, sampleReport())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleReport().String(), string(data))
}
