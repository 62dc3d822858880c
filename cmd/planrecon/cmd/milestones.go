package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"planrecon/internal/adapters/editor"
	"planrecon/internal/application/commands"
)

var (
	milestonesLevel     int
	milestonesNoReport  bool
	milestonesOpen      bool
	milestonesReportDir string
)

var milestonesCmd = &cobra.Command{
	Use:   "milestones",
	Short: "List plan milestones with their dependencies",
	Long: `List the milestones of the imported plan at one outline level, ordered by
finish date, with the tasks each one depends on and the tasks it enables.
The table is also written as a markdown report unless --no-report is given.

Examples:
  planrecon milestones
  planrecon milestones --level 2 --no-report`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mc := commands.NewMilestonesReportCommand(store, logger)
		mc.Level = milestonesLevel
		mc.ReportDir = cfg.ReportDir
		if milestonesReportDir != "" {
			mc.ReportDir = milestonesReportDir
		}
		if milestonesNoReport {
			mc.ReportDir = ""
		}

		report, err := mc.Execute(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, report.Markdown())
		if report.Path != "" {
			fmt.Fprintf(out, "Report written to %s\n", report.Path)
			if milestonesOpen {
				return editor.NewOpener().OpenFile(report.Path)
			}
		}
		return nil
	},
}

func init() {
	milestonesCmd.Flags().IntVarP(&milestonesLevel, "level", "l", 1, "outline level of the milestones")
	milestonesCmd.Flags().BoolVar(&milestonesNoReport, "no-report", false, "do not write the report file")
	milestonesCmd.Flags().BoolVarP(&milestonesOpen, "open", "o", false, "open the written report in $EDITOR")
	milestonesCmd.Flags().StringVar(&milestonesReportDir, "report-dir", "", "directory for the report file")
	rootCmd.AddCommand(milestonesCmd)
}
