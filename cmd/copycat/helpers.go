package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"copycat/internal/config"
	"copycat/internal/logging"
)

// newCLILogger sends maintenance-command logs to stderr so stdout stays
// parseable when --json is set.
func newCLILogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	level := "warn"
	format := "console"
	if cfg != nil {
		format = cfg.Logging.Format
	}
	return logging.New(logging.Options{
		Level:   level,
		Format:  format,
		Console: cmd.ErrOrStderr(),
	})
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func formatBytes(n int64) string {
	if n < 0 {
		return "-"
	}
	return logging.FormatBytes(n)
}
