package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"copycat/internal/backupstore"
	"copycat/internal/config"
	"copycat/internal/history"
	"copycat/internal/journal"
	"copycat/internal/reclaim"
)

// Components are the storage-side services shared by the daemon and the
// maintenance commands.
type Components struct {
	Store     *backupstore.Store
	Reclaimer *reclaim.Reclaimer
	Policy    reclaim.Policy
	Journal   *journal.Journal
	History   *history.Log
}

// OpenComponents creates the configured directories, opens the copy journal,
// and wires the reclaimer to mark journal rows as it deletes files.
func OpenComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	policy := reclaim.PolicyFromConfig(cfg)
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	j, err := journal.Open(ctx, cfg.JournalPath())
	if err != nil {
		return nil, fmt.Errorf("open copy journal: %w", err)
	}

	return &Components{
		Store:     backupstore.New(cfg.Paths.BackupDir, logger),
		Reclaimer: reclaim.New(logger, reclaim.WithDeleteHook(j.ReclaimHook(logger))),
		Policy:    policy,
		Journal:   j,
		History:   history.New(cfg.HistoryPath(), cfg.History.MaxRecords, logger),
	}, nil
}

// Close releases the journal.
func (c *Components) Close() error {
	if c == nil || c.Journal == nil {
		return nil
	}
	return c.Journal.Close()
}
