package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planrecon/internal/config"
)

func writeTestConfig(t *testing.T, extra string) (cfgPath, dbPath string) {
	t.Helper()
	for _, k := range []string{config.EnvDatabase, config.EnvTrackerURL, config.EnvTrackerToken, config.EnvReportDir} {
		t.Setenv(k, "")
	}

	dir := t.TempDir()
	dbPath = filepath.Join(dir, "plan.db")
	cfgPath = filepath.Join(dir, "config.yaml")
	content := "database: " + dbPath + "\nreport_dir: " + filepath.Join(dir, "reports") + "\n" + extra
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))
	return cfgPath, dbPath
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		store, cfg, logger = nil, nil, nil
		configPath, logLevel = "", ""
		milestonesLevel, milestonesNoReport = 1, false
		rootCmd.SetArgs(nil)
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := run(context.Background())
	return out.String(), err
}

func TestRun_ClosesStoreWhenCommandFails(t *testing.T) {
	cfgPath, dbPath := writeTestConfig(t, "")

	_, err := runRoot(t, "--config", cfgPath, "show", "999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	// the last connection to close checkpoints and removes the WAL file
	_, statErr := os.Stat(dbPath + "-wal")
	assert.True(t, os.IsNotExist(statErr), "WAL file still present, store left open")
}

func TestRun_RejectsUnknownLogLevel(t *testing.T) {
	cfgPath, _ := writeTestConfig(t, "")

	_, err := runRoot(t, "--config", cfgPath, "--log-level", "verbose", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Level")
	assert.Nil(t, store)
}

func TestShow_InvalidUID(t *testing.T) {
	cfgPath, _ := writeTestConfig(t, "")

	_, err := runRoot(t, "--config", cfgPath, "show", "abc")
	assert.EqualError(t, err, `invalid task uid "abc"`)
}

func TestMilestones_EmptyPlan(t *testing.T) {
	cfgPath, _ := writeTestConfig(t, "")

	out, err := runRoot(t, "--config", cfgPath, "milestones", "--no-report")
	require.NoError(t, err)
	assert.Contains(t, out, "| Milestone | Date | Depends on | Enables |")
	assert.NotContains(t, out, "Report written")
}
