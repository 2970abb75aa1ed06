package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past import runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			deps, err := NewDependencies(ctx, ownerFlag(cmd))
			if err != nil {
				return err
			}
			defer deps.Close()

			records, err := deps.HistoryRepo.List(ctx, deps.OwnerID, limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tWHEN\tFILE\tSTATUS\tTOTAL\tIMPORTED\tFAILED\tSKIPPED")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
					r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.FileName, r.Status,
					r.RowsTotal, r.RowsImported, r.RowsFailed, r.RowsSkipped)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to show")

	return cmd
}
