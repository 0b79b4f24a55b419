package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"copycat/internal/autostart"
	"copycat/internal/backupstore"
	"copycat/internal/daemon"
	"copycat/internal/history"
	"copycat/internal/journal"
	"copycat/internal/preflight"
	"copycat/internal/reclaim"
)

const statusRecentVolumes = 5

type statusReport struct {
	DaemonRunning bool               `json:"daemon_running"`
	ConfigPath    string             `json:"config_path"`
	Usage         backupstore.Usage  `json:"usage"`
	UsageError    string             `json:"usage_error,omitempty"`
	Policy        reclaim.Policy     `json:"policy"`
	Journal       journal.Stats      `json:"journal"`
	Autostart     autostart.Status   `json:"autostart"`
	RecentVolumes []history.Record   `json:"recent_volumes"`
	Preflight     []preflight.Result `json:"preflight"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show backup store usage and daemon state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := newCLILogger(cmd, cfg)
			if err != nil {
				return err
			}
			components, err := daemon.OpenComponents(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer components.Close()

			report := statusReport{
				DaemonRunning: daemon.LockHeld(cfg.LockPath()),
				ConfigPath:    ctx.configPath,
				Policy:        components.Policy,
			}
			usage, err := components.Store.Usage()
			if err != nil {
				report.UsageError = err.Error()
			}
			report.Usage = usage
			if report.Journal, err = components.Journal.Stats(cmd.Context()); err != nil {
				return fmt.Errorf("journal stats: %w", err)
			}
			if report.Autostart, err = autostart.Installed(); err != nil {
				return err
			}
			records, err := components.History.List()
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			if len(records) > statusRecentVolumes {
				records = records[:statusRecentVolumes]
			}
			report.RecentVolumes = records
			report.Preflight = preflight.RunAll(cfg)

			if jsonOutput {
				return writeJSON(cmd, report)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderStatus(report, shouldColorize(cmd.OutOrStdout())))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func renderStatus(r statusReport, colorize bool) string {
	var lines []string

	lines = append(lines, renderSectionHeader("Daemon", colorize)...)
	if r.DaemonRunning {
		lines = append(lines, renderStatusLine("Daemon", statusOK, "running", colorize))
	} else {
		lines = append(lines, renderStatusLine("Daemon", statusWarn, "not running", colorize))
	}
	if r.Autostart.Installed {
		lines = append(lines, renderStatusLine("Autostart", statusOK, r.Autostart.Location, colorize))
	} else {
		lines = append(lines, renderStatusLine("Autostart", statusInfo, "not installed", colorize))
	}
	if r.ConfigPath != "" {
		lines = append(lines, renderStatusLine("Config", statusInfo, r.ConfigPath, colorize))
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Backup store", colorize)...)
	lines = append(lines, renderStatusLine("Location", statusInfo, r.Usage.Root, colorize))
	if r.UsageError != "" {
		lines = append(lines, renderStatusLine("Usage", statusError, r.UsageError, colorize))
	} else {
		lines = append(lines, renderStatusLine("Files", statusInfo,
			fmt.Sprintf("%d (%s)", r.Usage.Files, formatBytes(r.Usage.TotalBytes)), colorize))
		freeKind := statusOK
		if r.Policy.MinFreeBytes > 0 && r.Usage.FreeBytes < uint64(r.Policy.MinFreeBytes) {
			freeKind = statusWarn
		}
		lines = append(lines, renderStatusLine("Free space", freeKind,
			fmt.Sprintf("%s of %s (floor %s)",
				formatBytes(int64(r.Usage.FreeBytes)),
				formatBytes(int64(r.Usage.TotalFSBytes)),
				formatBytes(r.Policy.MinFreeBytes)), colorize))
	}
	lines = append(lines, renderStatusLine("Reclaim policy", statusInfo, describePolicy(r.Policy), colorize))
	lines = append(lines, renderStatusLine("Journal", statusInfo,
		fmt.Sprintf("%d copies, %d reclaimed, %s live", r.Journal.Copies, r.Journal.Reclaimed, formatBytes(r.Journal.LiveBytes)), colorize))

	if len(r.Preflight) > 0 {
		lines = append(lines, "")
		lines = append(lines, renderSectionHeader("Checks", colorize)...)
		for _, check := range r.Preflight {
			kind := statusOK
			if !check.Passed {
				kind = statusWarn
			}
			lines = append(lines, renderStatusLine(check.Name, kind, check.Detail, colorize))
		}
	}

	if len(r.Usage.Labels) > 0 {
		lines = append(lines, "")
		rows := make([][]string, 0, len(r.Usage.Labels))
		for _, l := range r.Usage.Labels {
			rows = append(rows, []string{l.Label, strconv.Itoa(l.Days), strconv.Itoa(l.Files), formatBytes(l.TotalBytes)})
		}
		lines = append(lines, renderTable([]column{
			{title: "Volume"},
			{title: "Days", numeric: true},
			{title: "Files", numeric: true},
			{title: "Size", numeric: true},
		}, rows))
	}

	if len(r.RecentVolumes) > 0 {
		lines = append(lines, "")
		lines = append(lines, renderSectionHeader("Recent volumes", colorize)...)
		for _, rec := range r.RecentVolumes {
			lines = append(lines, renderStatusLine(rec.Label, statusInfo,
				fmt.Sprintf("%s, last seen %s", rec.Identity, formatTimestamp(rec.LastAccess)), colorize))
		}
	}

	return strings.Join(lines, "\n") + "\n"
}

func describePolicy(p reclaim.Policy) string {
	parts := []string{string(p.Strategy)}
	if p.MaxTotalBytes > 0 {
		parts = append(parts, "cap "+formatBytes(p.MaxTotalBytes))
	} else {
		parts = append(parts, "no size cap")
	}
	if p.MaxAge > 0 {
		parts = append(parts, fmt.Sprintf("max age %dd", int(p.MaxAge.Hours()/24)))
	} else {
		parts = append(parts, "no age limit")
	}
	return strings.Join(parts, ", ")
}
