package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rmacedo/extrato/internal/domain/category"
)

func newCategoriesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage transaction categories",
	}

	cmd.AddCommand(newCategoriesListCommand())
	cmd.AddCommand(newCategoriesAddCommand())
	cmd.AddCommand(newCategoriesDeleteCommand())

	return cmd
}

func newCategoriesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			deps, err := NewDependencies(ctx, ownerFlag(cmd))
			if err != nil {
				return err
			}
			defer deps.Close()

			categories, err := deps.CategoryRepo.ListActive(ctx, deps.OwnerID)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTYPE")
			for _, c := range categories {
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Name, c.Type)
			}
			return w.Flush()
		},
	}
}

func newCategoriesAddCommand() *cobra.Command {
	var categoryType string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if categoryType != "expense" && categoryType != "income" {
				return fmt.Errorf("type must be expense or income, got %q", categoryType)
			}

			deps, err := NewDependencies(ctx, ownerFlag(cmd))
			if err != nil {
				return err
			}
			defer deps.Close()

			c := &category.Category{OwnerID: deps.OwnerID, Name: args[0], Type: categoryType}
			if err := deps.CategoryRepo.Create(ctx, c); err != nil {
				return err
			}
			cmd.Printf("category %q created (%s)\n", c.Name, c.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&categoryType, "type", "expense", "category type: expense or income")

	return cmd
}

func newCategoriesDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			deps, err := NewDependencies(ctx, ownerFlag(cmd))
			if err != nil {
				return err
			}
			defer deps.Close()

			id, err := uuidFromArg(args[0])
			if err != nil {
				return err
			}

			if err := deps.CategoryRepo.SoftDelete(ctx, deps.OwnerID, id); err != nil {
				return err
			}
			cmd.Println("category deleted")
			return nil
		},
	}
}
