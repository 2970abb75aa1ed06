package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rmacedo/extrato/pkg/money"
)

func newTransactionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Inspect and correct imported transactions",
	}

	cmd.AddCommand(newTransactionsListCommand())
	cmd.AddCommand(newTransactionsDeleteCommand())

	return cmd
}

func newTransactionsListCommand() *cobra.Command {
	var importRun string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the transactions of one import run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			importID, err := uuidFromArg(importRun)
			if err != nil {
				return err
			}

			deps, err := NewDependencies(ctx, ownerFlag(cmd))
			if err != nil {
				return err
			}
			defer deps.Close()

			txs, err := deps.LedgerRepo.ListByImport(ctx, deps.OwnerID, importID)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tAMOUNT\tDESCRIPTION")
			for _, tx := range txs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					tx.ID, tx.Date.Format("2006-01-02"),
					money.NewFromDecimal(tx.Amount).Display(), tx.Description)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&importRun, "import", "", "import run UUID (see extrato history)")
	_ = cmd.MarkFlagRequired("import")

	return cmd
}

func newTransactionsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction so it can be re-imported",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := uuidFromArg(args[0])
			if err != nil {
				return err
			}

			deps, err := NewDependencies(ctx, ownerFlag(cmd))
			if err != nil {
				return err
			}
			defer deps.Close()

			if err := deps.LedgerRepo.SoftDelete(ctx, deps.OwnerID, id); err != nil {
				return err
			}
			cmd.Println("transaction deleted")
			return nil
		},
	}
}
