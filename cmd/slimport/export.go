package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/suphotsudsee/study-leave-web/internal/exporter"
	"github.com/suphotsudsee/study-leave-web/internal/report"
)

func newExportCmd(g *globalOptions) *cobra.Command {
	var (
		output string
		status string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored leaves to a workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := g.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			today := report.Day(time.Now())
			f, err := exporter.NewExporter(st).Export(cmd.Context(), exporter.ExportOptions{
				Status: status,
				Today:  today,
			})
			if err != nil {
				return err
			}
			defer f.Close()

			if output == "" {
				output = fmt.Sprintf("study-leaves-%s.xlsx", today.Format("2006-01-02"))
			}
			if err := f.SaveAs(output); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: study-leaves-<date>.xlsx)")
	cmd.Flags().StringVar(&status, "status", report.FilterAll, "all, pending, active or completed")
	return cmd
}

func newTemplateCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write a blank roster with the expected headers",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := exporter.NewTemplate()
			if err != nil {
				return err
			}
			defer f.Close()
			if err := f.SaveAs(output); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "template written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "study-leave-template.xlsx", "output file")
	return cmd
}
