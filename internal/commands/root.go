// Package commands wires the CLI: every subcommand builds its dependencies,
// runs one import workflow step and prints a plain-text result.
package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "extrato",
		Short: "Import bank statements into your personal ledger",
		Long: `extrato reads delimited bank statement exports, detects their columns,
normalizes Brazilian date and amount formats, suggests categories and
flags duplicate rows before anything touches the ledger.`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("owner", "", "owner UUID (defaults to EXTRATO_OWNER)")

	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newPresetsCommand())
	rootCmd.AddCommand(newHistoryCommand())
	rootCmd.AddCommand(newCategoriesCommand())
	rootCmd.AddCommand(newTransactionsCommand())

	return rootCmd
}

func ownerFlag(cmd *cobra.Command) string {
	owner, _ := cmd.Flags().GetString("owner")
	return owner
}

func uuidFromArg(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", arg, err)
	}
	return id, nil
}
