package cmd

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"planrecon/internal/adapters/editor"
	"planrecon/internal/adapters/tui"
	"planrecon/internal/application/commands"
	"planrecon/internal/domain"
)

var browseLogFile string

var browseCmd = &cobra.Command{
	Use:   "browse <issue-key>",
	Short: "Explore a reconciliation interactively",
	Long: `Open a terminal UI showing the divergences, the plan tree and the tracker
tree for an issue key. Press ? inside for key bindings.

Example:
  planrecon browse MUP-1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// The alternate screen owns the terminal; logs go to a file or nowhere
		var w io.Writer = io.Discard
		if browseLogFile != "" {
			f, err := os.OpenFile(browseLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		log := cfg.Log.NewLogger(w)

		tracker, err := newTracker(log)
		if err != nil {
			return err
		}

		reconcile := func(ctx context.Context) (*commands.ReconcileResult, error) {
			return newReconcile(tracker, args[0], log).Execute(ctx)
		}
		differ := domain.NewDiffer(cfg.Tracker.ClosedStatuses, log)

		app := tui.NewApp(reconcile, differ.IsClosed, editor.NewOpener())
		p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		_, err = p.Run()
		return err
	},
}

func init() {
	browseCmd.Flags().StringVar(&browseLogFile, "log-file", "", "append logs to this file while the UI runs")
	rootCmd.AddCommand(browseCmd)
}
