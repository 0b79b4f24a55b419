package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"copycat/internal/journal"
)

func newJournalCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var limit int

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recently copied files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			j, err := journal.Open(cmd.Context(), cfg.JournalPath())
			if err != nil {
				return err
			}
			defer j.Close()

			copies, err := j.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				if copies == nil {
					copies = []journal.Copy{}
				}
				return writeJSON(cmd, copies)
			}
			if len(copies) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No copies recorded yet")
				return nil
			}
			rows := make([][]string, 0, len(copies))
			for _, c := range copies {
				reclaimed := "-"
				if c.ReclaimedAt != nil {
					reclaimed = formatTimestamp(*c.ReclaimedAt)
				}
				rows = append(rows, []string{
					formatTimestamp(c.CopiedAt),
					c.Label,
					formatBytes(c.SizeBytes),
					c.DestPath,
					reclaimed,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{
				{title: "Copied"},
				{title: "Volume"},
				{title: "Size", numeric: true},
				{title: "Destination"},
				{title: "Reclaimed"},
			}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of rows")
	return cmd
}
