package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"planrecon/internal/application/commands"
	"planrecon/internal/domain"
)

var treeSide string

var treeCmd = &cobra.Command{
	Use:   "tree <issue-key>",
	Short: "Print the plan or tracker tree below an issue",
	Long: `Print one side of a reconciliation: the imported plan subtree whose task
references the key, or the tracker's issue tree below it.

Examples:
  planrecon tree MUP-1
  planrecon tree MUP-1 --side tracker`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var (
			root *domain.Node
			err  error
		)
		switch treeSide {
		case "plan":
			root, err = commands.NewBuildPlanTreeCommand(store, args[0], logger).Execute(ctx)
		case "tracker":
			tracker, terr := newTracker(logger)
			if terr != nil {
				return terr
			}
			build := commands.NewBuildIssueTreeCommand(tracker, args[0], logger)
			build.Concurrency = cfg.Tracker.Concurrency
			root, err = build.Execute(ctx)
		default:
			return fmt.Errorf("invalid side %q (expected plan or tracker)", treeSide)
		}
		if err != nil {
			return err
		}

		for _, line := range domain.RenderTree(domain.SortTree(root)) {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

func init() {
	treeCmd.Flags().StringVarP(&treeSide, "side", "s", "plan", "tree to print: plan or tracker")
	rootCmd.AddCommand(treeCmd)
}
