package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past reconciliation runs",
	Long: `List recorded reconciliation runs, newest first.

Example:
  planrecon history --limit 5`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, err := store.ListRuns(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STARTED\tKEY\tDIVERGENCES\tDURATION\tREPORT")
		for _, r := range runs {
			report := r.ReportPath
			if report == "" {
				report = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
				r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.RootKey,
				r.Divergences(), r.Duration.Round(1e6), report)
		}
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs (0 for all)")
	rootCmd.AddCommand(historyCmd)
}
