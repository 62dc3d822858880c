package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"planrecon/internal/application/commands"
)

var showCmd = &cobra.Command{
	Use:   "show <task-uid>",
	Short: "Show one imported plan task",
	Long: `Show a plan task by UID: its schedule, completion, notes, custom fields and
the tasks it depends on or enables.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid task uid %q", args[0])
		}

		detail, err := commands.NewShowTaskCommand(store, uid, logger).Execute(cmd.Context())
		if err != nil {
			return err
		}
		for _, line := range detail.Lines() {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
