package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"copycat/internal/daemon"
	"copycat/internal/reclaim"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var onlyIfLow bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Reclaim space in the backup store now",
		Long: `Clean applies the size and age limits from the [space] section. With
--if-low it only acts when free space is below min_free_gb, the same check
the daemon performs before every copy. Clean refuses to run while the
daemon holds the instance lock.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			lock, err := daemon.AcquireLock(cfg.LockPath())
			if err != nil {
				return err
			}
			defer lock.Unlock()

			logger, err := newCLILogger(cmd, cfg)
			if err != nil {
				return err
			}
			components, err := daemon.OpenComponents(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer components.Close()

			var result reclaim.Result
			if onlyIfLow {
				result = components.Reclaimer.EnsureSpace(cmd.Context(), components.Store, components.Policy)
			} else {
				result = components.Reclaimer.Clean(cmd.Context(), components.Store, components.Policy)
				if free, err := components.Store.FreeBytes(); err != nil {
					result.FreeUnknown = true
				} else {
					result.FreeBytes = free
					result.Sufficient = int64(free) >= components.Policy.MinFreeBytes
				}
			}

			if jsonOutput {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			if result.Skipped {
				fmt.Fprintf(out, "Free space %s is above the floor; nothing to do\n", formatBytes(int64(result.FreeBytes)))
				return nil
			}
			fmt.Fprintf(out, "Deleted %d files, freed %s\n", result.FilesDeleted, formatBytes(result.SpaceFreedBytes))
			if result.Errors > 0 {
				fmt.Fprintf(out, "%d files could not be removed (see log output)\n", result.Errors)
			}
			if result.FreeUnknown {
				fmt.Fprintln(out, "Free space: unknown")
			} else {
				fmt.Fprintf(out, "Free space: %s\n", formatBytes(int64(result.FreeBytes)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&onlyIfLow, "if-low", false, "Only reclaim when free space is below the configured floor")
	return cmd
}
