package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rmacedo/extrato/internal/domain/importer/detector"
	"github.com/rmacedo/extrato/internal/domain/preset"
)

func newPresetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Manage saved column mappings",
	}

	cmd.AddCommand(newPresetsSaveCommand())
	cmd.AddCommand(newPresetsListCommand())
	cmd.AddCommand(newPresetsDeleteCommand())

	return cmd
}

func newPresetsSaveCommand() *cobra.Command {
	var pairs []string

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save a column mapping under a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			mapping, err := parseMappingPairs(pairs)
			if err != nil {
				return err
			}

			deps, err := NewDependencies(ctx, ownerFlag(cmd))
			if err != nil {
				return err
			}
			defer deps.Close()

			p := &preset.Preset{OwnerID: deps.OwnerID, Name: args[0], Mapping: mapping}
			if err := deps.PresetRepo.Save(ctx, p); err != nil {
				return err
			}
			cmd.Printf("preset %q saved\n", p.Name)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&pairs, "map", nil, "column assignment, e.g. --map date=Data (repeatable)")
	_ = cmd.MarkFlagRequired("map")

	return cmd
}

func newPresetsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			deps, err := NewDependencies(ctx, ownerFlag(cmd))
			if err != nil {
				return err
			}
			defer deps.Close()

			presets, err := deps.PresetRepo.List(ctx, deps.OwnerID)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMAPPING\tUPDATED")
			for _, p := range presets {
				var parts []string
				for field, header := range p.Mapping {
					parts = append(parts, fmt.Sprintf("%s=%s", field, header))
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n",
					p.Name, strings.Join(parts, " "), p.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func newPresetsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			deps, err := NewDependencies(ctx, ownerFlag(cmd))
			if err != nil {
				return err
			}
			defer deps.Close()

			if err := deps.PresetRepo.Delete(ctx, deps.OwnerID, args[0]); err != nil {
				return err
			}
			cmd.Printf("preset %q deleted\n", args[0])
			return nil
		},
	}
}

func parseMappingPairs(pairs []string) (map[string]string, error) {
	mapping := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		field, header, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --map value %q, expected field=header", pair)
		}
		if !detector.Known(field) {
			return nil, fmt.Errorf("unknown field %q", field)
		}
		mapping[field] = header
	}
	return mapping, nil
}
