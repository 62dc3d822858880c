package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"planrecon/internal/adapters/msproject"
	"planrecon/internal/application/commands"
)

var importFieldID int64

var importCmd = &cobra.Command{
	Use:   "import <plan.xml>",
	Short: "Import a plan XML export",
	Long: `Import an MS Project or OmniPlan XML export into the plan database.

The previous import is replaced. Tasks are linked to issues through the
extended attribute named by plan.reference_field_id in the configuration.

Example:
  planrecon import roadmap.xml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		importCmd := commands.NewImportPlanCommand(msproject.NewParser(), store, args[0], logger)
		importCmd.FieldID = cfg.Plan.ReferenceFieldID
		if importFieldID != 0 {
			importCmd.FieldID = importFieldID
		}

		stats, err := importCmd.Execute(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks from %s (%d linked to issues, %d duplicates skipped) in %s\n",
			stats.Tasks, args[0], stats.Linked, stats.Duplicates, stats.Duration.Round(1e6))
		return nil
	},
}

func init() {
	importCmd.Flags().Int64Var(&importFieldID, "field-id", 0, "extended attribute field id holding the issue key")
	rootCmd.AddCommand(importCmd)
}
