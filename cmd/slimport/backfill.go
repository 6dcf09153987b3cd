package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suphotsudsee/study-leave-web/internal/importer"
)

func newBackfillCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Split position_level into title, hospital and office where they are empty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := g.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := importer.BackfillPositions(cmd.Context(), st)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d records\n", n)
			return nil
		},
	}
}
