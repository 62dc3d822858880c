package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"planrecon/internal/adapters/editor"
	"planrecon/internal/adapters/tui/styles"
	"planrecon/internal/application/commands"
	"planrecon/internal/domain"
)

var (
	diffNoReport    bool
	diffOpen        bool
	diffExitCode    bool
	diffProject     string
	diffConcurrency int
	diffReportDir   string
)

var diffCmd = &cobra.Command{
	Use:   "diff <issue-key>",
	Short: "Reconcile the plan and the tracker below an issue",
	Long: `Build the plan subtree and the tracker issue tree for an issue key, compare
them and print where they diverge. The full report with both trees is written
to the report directory unless --no-report is given.

Examples:
  planrecon diff MUP-1
  planrecon diff MUP-1 --open
  planrecon diff MUP-1 --no-report --exit-code`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tracker, err := newTracker(logger)
		if err != nil {
			return err
		}

		rc := newReconcile(tracker, args[0], logger)
		if diffProject != "" {
			rc.Project = diffProject
		}
		if diffConcurrency > 0 {
			rc.Concurrency = diffConcurrency
		}
		if diffReportDir != "" {
			rc.ReportDir = diffReportDir
		}
		if diffNoReport {
			rc.ReportDir = ""
		}

		result, err := rc.Execute(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printDiff(out, result.Diff, colorEnabled(out))
		fmt.Fprintln(out, commands.Summary(result.Run))

		if path := result.Run.ReportPath; path != "" {
			fmt.Fprintf(out, "Report written to %s\n", path)
			if diffOpen {
				if err := editor.NewOpener().OpenFile(path); err != nil {
					return err
				}
			}
		}

		if diffExitCode && result.Run.Divergences() > 0 {
			return errDiverged
		}
		return nil
	},
}

func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func printDiff(w io.Writer, forest []*domain.DiffNode, color bool) {
	for _, line := range domain.DiffLines(forest) {
		text := line.String()
		if color && line.Category != domain.Unchanged {
			style := styles.CategoryStyle(line.Category)
			if line.Evidence {
				style = styles.Evidence
			}
			text = style.Render(text)
		}
		fmt.Fprintln(w, text)
	}
}

func init() {
	diffCmd.Flags().BoolVar(&diffNoReport, "no-report", false, "do not write the report file")
	diffCmd.Flags().BoolVarP(&diffOpen, "open", "o", false, "open the written report in $EDITOR")
	diffCmd.Flags().BoolVar(&diffExitCode, "exit-code", false, "exit with status 1 when the trees diverge")
	diffCmd.Flags().StringVarP(&diffProject, "project", "p", "", "only accept keys of this project")
	diffCmd.Flags().IntVarP(&diffConcurrency, "concurrency", "j", 0, "parallel tracker requests per level")
	diffCmd.Flags().StringVar(&diffReportDir, "report-dir", "", "directory for the report file")
	rootCmd.AddCommand(diffCmd)
}
