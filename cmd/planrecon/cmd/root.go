package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"planrecon/internal/adapters/jira"
	"planrecon/internal/adapters/sqlite"
	"planrecon/internal/application/commands"
	"planrecon/internal/config"
)

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
	store  *sqlite.Store
)

// errDiverged makes the process exit with status 1 without printing anything
var errDiverged = errors.New("plan and tracker diverge")

var rootCmd = &cobra.Command{
	Use:   "planrecon",
	Short: "Reconcile a project plan with its issue tracker",
	Long: `planrecon compares a project plan exported from MS Project or OmniPlan
with the Jira issue tree it references.

Import the plan XML once, then ask for the divergences below any issue key:
tasks missing from one side, issues closed while the plan is incomplete, and
plan tasks complete while the issue is still open.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "init" {
			return nil
		}

		var err error
		cfg, err = config.Load(configPath, config.WithLogLevel(logLevel))
		if err != nil {
			return err
		}
		logger = cfg.Log.NewLogger(os.Stderr)

		store = sqlite.NewStore()
		if err := store.Open(cfg.Database); err != nil {
			return err
		}
		logger.Debug("plan database opened", "path", store.Path())
		return nil
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx)
	stop()

	if errors.Is(err, errDiverged) {
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes the command tree and closes the store whether or not the
// command failed
func run(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if store != nil {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
}

func newTracker(log *slog.Logger) (*jira.Client, error) {
	return jira.NewClient(cfg.Tracker.JiraConfig(), log)
}

func newReconcile(tracker *jira.Client, key string, log *slog.Logger) *commands.ReconcileCommand {
	rc := commands.NewReconcileCommand(store, tracker, store, key, log)
	rc.Project = cfg.Tracker.Project
	rc.ClosedStatuses = cfg.Tracker.ClosedStatuses
	rc.Concurrency = cfg.Tracker.Concurrency
	rc.ReportDir = cfg.ReportDir
	return rc
}
