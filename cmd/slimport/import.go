package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/suphotsudsee/study-leave-web/internal/importer"
)

func newInspectCmd(g *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <roster.xlsx>",
		Short: "Show how each worksheet would be read, without importing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			c := importer.NewCoordinator(nil, importerOptions(cfg))
			reports, inspectErr := c.Inspect(cmd.Context(), args[0])

			out := cmd.OutOrStdout()
			if asJSON {
				if err := writeJSON(out, reports); err != nil {
					return err
				}
			} else {
				printSheetReports(out, reports)
			}
			return inspectErr
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the sheet reports as JSON")
	return cmd
}

func newImportCmd(g *globalOptions) *cobra.Command {
	var (
		dryRun bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "import <roster.xlsx>...",
		Short: "Import one or more rosters into the database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cfg, err := g.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			c := importer.NewCoordinator(st, importerOptions(cfg))
			out := cmd.OutOrStdout()
			for _, path := range args {
				if _, err := os.Stat(path); err != nil {
					return fmt.Errorf("file not found: %s", path)
				}
				res, err := c.Import(cmd.Context(), importer.ImportOptions{
					FilePath:         path,
					OriginalFilename: filepath.Base(path),
					DryRun:           dryRun,
				})
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if asJSON {
					if err := writeJSON(out, res); err != nil {
						return err
					}
					continue
				}
				printResult(out, res, dryRun)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "reconcile against the database without committing")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the import results as JSON")
	return cmd
}

func printSheetReports(w io.Writer, reports []importer.SheetReport) {
	for _, r := range reports {
		status := "skipped"
		if r.Used {
			status = fmt.Sprintf("data from row %d", r.DataStart)
		}
		fmt.Fprintf(w, "%-20s rows=%-5d %s\n", r.Name, r.Rows, status)
		if len(r.Missing) > 0 {
			fmt.Fprintf(w, "  missing: %s\n", strings.Join(r.Missing, ", "))
		}
		if r.Error != "" {
			fmt.Fprintf(w, "  error: %s\n", r.Error)
		}
	}
}

func printResult(w io.Writer, res *importer.Result, dryRun bool) {
	verb := "inserted"
	if dryRun {
		verb = "would insert"
	}
	fmt.Fprintf(w, "%s: %s %d, skipped %d, duplicates %d (%s)\n",
		res.Filename, verb, res.Inserted, res.Skipped, res.DuplicateCount, res.Duration)
	for _, s := range res.SkippedRows {
		fmt.Fprintf(w, "  %s row %d: %s\n", s.Sheet, s.Row, s.Reason)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
