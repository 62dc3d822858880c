package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the plan database and tracker in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "database:    %s\n", store.Path())
		last, err := store.LastImport(cmd.Context())
		if err != nil {
			return err
		}
		if last.IsZero() {
			fmt.Fprintln(out, "last import: never")
		} else {
			fmt.Fprintf(out, "last import: %s\n", last.Local().Format("2006-01-02 15:04:05"))
		}

		tracker := cfg.Tracker.URL
		if tracker == "" {
			tracker = "not configured"
		}
		fmt.Fprintf(out, "tracker:     %s\n", tracker)
		fmt.Fprintf(out, "reports:     %s\n", cfg.ReportDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
