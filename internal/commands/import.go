package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rmacedo/extrato/internal/domain/importer/detector"
	"github.com/rmacedo/extrato/internal/domain/importer/service"
	"github.com/rmacedo/extrato/pkg/archive"
	"github.com/rmacedo/extrato/pkg/money"
)

func newImportCommand() *cobra.Command {
	var presetName string
	var overrides []string
	var dryRun bool
	var errorReport string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a statement file into the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			deps, err := NewDependencies(ctx, ownerFlag(cmd))
			if err != nil {
				return err
			}
			defer deps.Close()

			return runImport(cmd, deps, args[0], importOptions{
				preset:      presetName,
				overrides:   overrides,
				dryRun:      dryRun,
				errorReport: errorReport,
			})
		},
	}

	cmd.Flags().StringVar(&presetName, "preset", "", "apply a saved column mapping")
	cmd.Flags().StringArrayVar(&overrides, "map", nil, "override a column assignment, e.g. --map date=Data")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "stop after the preview, import nothing")
	cmd.Flags().StringVar(&errorReport, "error-report", "", "per-row failure CSV path (default <file>.errors.csv)")

	return cmd
}

type importOptions struct {
	preset      string
	overrides   []string
	dryRun      bool
	errorReport string
}

func runImport(cmd *cobra.Command, deps *Dependencies, path string, opts importOptions) error {
	ctx := cmd.Context()

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if max := deps.Config.Import.MaxFileSizeBytes; int64(len(content)) > max {
		return fmt.Errorf("%s exceeds the %d byte limit", path, max)
	}

	importID := uuid.New()
	session := service.NewSession(
		deps.OwnerID,
		newCategoryAdapter(deps.CategoryRepo),
		newLedgerAdapter(deps.LedgerRepo, importID),
		newHistoryAdapter(deps.HistoryRepo, importID),
		deps.Logger,
		deps.Metrics,
	)

	if err := session.SetCategoryThreshold(deps.Config.Import.CategoryThreshold); err != nil {
		return err
	}

	if err := session.Upload(ctx, filepath.Base(path), string(content)); err != nil {
		return err
	}

	if opts.preset != "" {
		p, err := deps.PresetRepo.GetByName(ctx, deps.OwnerID, opts.preset)
		if err != nil {
			return err
		}
		if err := session.SetMapping(detector.Mapping(p.Mapping)); err != nil {
			return err
		}
	}
	for _, ov := range opts.overrides {
		field, header, ok := strings.Cut(ov, "=")
		if !ok {
			return fmt.Errorf("invalid --map value %q, expected field=header", ov)
		}
		if err := session.AssignColumn(field, header); err != nil {
			return err
		}
	}

	if err := session.GeneratePreview(ctx); err != nil {
		return err
	}

	printMapping(cmd, session.Mapping())
	printPreview(cmd, session)

	if opts.dryRun {
		cmd.Println("dry run, nothing imported")
		return nil
	}

	summary, err := session.Commit(ctx)
	if err != nil {
		return err
	}

	printSummary(cmd, summary)

	if dir := deps.Config.Import.ArchiveDir; dir != "" && summary.Imported > 0 {
		arch, err := archive.New(dir)
		if err != nil {
			return err
		}
		entry, err := arch.Store(deps.OwnerID, importID, filepath.Base(path), bytes.NewReader(content))
		if err != nil {
			return err
		}
		cmd.Printf("statement archived at %s\n", entry.Path)
	}

	if len(summary.ErrorDetails) > 0 {
		reportPath := opts.errorReport
		if reportPath == "" {
			reportPath = path + ".errors.csv"
		}
		report, err := session.ErrorReportCSV()
		if err != nil {
			return err
		}
		if err := os.WriteFile(reportPath, []byte(report), 0o644); err != nil {
			return fmt.Errorf("writing error report: %w", err)
		}
		cmd.Printf("error report written to %s\n", reportPath)
	}

	return nil
}

func printMapping(cmd *cobra.Command, mapping detector.Mapping) {
	fields := append(append([]string(nil), detector.MandatoryFields...), detector.OptionalFields...)
	var parts []string
	for _, f := range fields {
		if header, ok := mapping[f]; ok {
			parts = append(parts, fmt.Sprintf("%s=%s", f, header))
		}
	}
	cmd.Printf("mapping: %s\n", strings.Join(parts, " "))
}

func printPreview(cmd *cobra.Command, session *service.Session) {
	rows := session.PreviewRows()
	dropped := session.Dropped()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tDATE\tAMOUNT\tDESCRIPTION\tCATEGORY\tDUP")
	total := money.Zero()
	for i, row := range rows {
		categoryLabel := "-"
		if row.Category != nil {
			categoryLabel = fmt.Sprintf("%s (%.2f)", row.Category.CategoryName, row.Category.Score)
		}
		dup := ""
		if row.IsDuplicate {
			dup = "dup"
		} else {
			total = total.Add(money.NewFromDecimal(row.Amount))
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			i+1, row.Date.Format("2006-01-02"), money.NewFromDecimal(row.Amount).Display(),
			row.Description, categoryLabel, dup)
	}
	w.Flush()

	cmd.Printf("%d rows, %s selected for import\n", len(rows), total.Display())
	for _, d := range dropped {
		cmd.Printf("dropped row %d: %s\n", d.Row, d.Reason)
	}
}

func printSummary(cmd *cobra.Command, summary *service.Summary) {
	cmd.Printf("imported %d of %d rows (%d duplicates skipped, %d errors)\n",
		summary.Imported, summary.Total, summary.Duplicates, summary.Errors)
	for _, detail := range summary.ErrorDetails {
		cmd.Printf("  row %d: %s\n", detail.Row, detail.Error)
	}
}
