package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFilter(); err != nil {
		return err
	}
	if err := c.validateSpace(); err != nil {
		return err
	}
	if c.History.MaxRecords <= 0 {
		return errors.New("history.max_records must be positive")
	}
	if c.Monitor.PollInterval <= 0 {
		return errors.New("monitor.poll_interval must be positive")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.BackupDir == "" {
		return errors.New("paths.backup_dir must be set")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	// Reclamation deletes anything under backup_dir.
	if within(c.Paths.BackupDir, c.Paths.StateDir) {
		return fmt.Errorf("paths.state_dir %q must not be inside paths.backup_dir %q", c.Paths.StateDir, c.Paths.BackupDir)
	}
	if c.Paths.LogDir != "" && within(c.Paths.BackupDir, c.Paths.LogDir) {
		return fmt.Errorf("paths.log_dir %q must not be inside paths.backup_dir %q", c.Paths.LogDir, c.Paths.BackupDir)
	}
	return nil
}

// within reports whether path is parent or lies below it.
func within(parent, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(parent), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func (c *Config) validateFilter() error {
	if len(c.Filter.Extensions) == 0 {
		return errors.New("filter.extensions must include at least one extension")
	}
	return nil
}

func (c *Config) validateSpace() error {
	switch c.Space.Strategy {
	case StrategyOldestFirst, StrategyLargestFirst:
	default:
		return fmt.Errorf("space.strategy must be %q or %q, got %q", StrategyOldestFirst, StrategyLargestFirst, c.Space.Strategy)
	}
	if c.Space.MinFreeGB < 0 {
		return errors.New("space.min_free_gb must be >= 0")
	}
	if c.Space.MaxTotalGB < 0 {
		return errors.New("space.max_total_gb must be >= 0 (0 disables the size limit)")
	}
	if c.Space.MaxAgeDays < 0 {
		return errors.New("space.max_age_days must be >= 0 (0 disables age-based cleanup)")
	}
	return nil
}
