package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"copycat/internal/history"
	"copycat/internal/logging"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List volumes copycat has seen",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			records, err := history.New(cfg.HistoryPath(), cfg.History.MaxRecords, logging.NewNop()).List()
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			if jsonOutput {
				if records == nil {
					records = []history.Record{}
				}
				return writeJSON(cmd, records)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No volumes recorded yet")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{
					r.Label,
					r.Identity,
					strconv.Itoa(r.Arrivals),
					formatTimestamp(r.FirstSeen),
					formatTimestamp(r.LastAccess),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{
				{title: "Label"},
				{title: "Identity"},
				{title: "Arrivals", numeric: true},
				{title: "First seen"},
				{title: "Last seen"},
			}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
