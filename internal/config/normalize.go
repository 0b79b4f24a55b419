package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeMonitor(); err != nil {
		return err
	}
	c.normalizeFilter()
	c.normalizeSpace()
	if c.History.MaxRecords <= 0 {
		c.History.MaxRecords = defaultHistoryRecords
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.BackupDir) == "" {
		c.Paths.BackupDir = defaultBackupDir
	}
	if c.Paths.BackupDir, err = expandPath(strings.TrimSpace(c.Paths.BackupDir)); err != nil {
		return fmt.Errorf("paths.backup_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeMonitor() error {
	if c.Monitor.PollInterval <= 0 {
		c.Monitor.PollInterval = defaultPollInterval
	}

	drives := make([]string, 0, len(c.Monitor.ExcludeDrives))
	seen := make(map[string]struct{}, len(c.Monitor.ExcludeDrives))
	for _, drive := range c.Monitor.ExcludeDrives {
		normalized := strings.ToUpper(strings.TrimRight(strings.TrimSpace(drive), ":\\/"))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		drives = append(drives, normalized)
	}
	c.Monitor.ExcludeDrives = drives

	roots := make([]string, 0, len(c.Monitor.MediaRoots))
	for _, root := range c.Monitor.MediaRoots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		expanded, err := expandPath(root)
		if err != nil {
			return fmt.Errorf("monitor.media_roots: %w", err)
		}
		roots = append(roots, expanded)
	}
	c.Monitor.MediaRoots = roots
	return nil
}

func (c *Config) normalizeFilter() {
	exts := make([]string, 0, len(c.Filter.Extensions))
	seen := make(map[string]struct{}, len(c.Filter.Extensions))
	for _, ext := range c.Filter.Extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	c.Filter.Extensions = exts

	globs := make([]string, 0, len(c.Filter.ExcludeGlobs))
	for _, pattern := range c.Filter.ExcludeGlobs {
		if pattern = strings.TrimSpace(pattern); pattern != "" {
			globs = append(globs, pattern)
		}
	}
	c.Filter.ExcludeGlobs = globs

	if c.Filter.MaxFileSizeMB < 0 {
		c.Filter.MaxFileSizeMB = 0
	}
}

func (c *Config) normalizeSpace() {
	c.Space.Strategy = strings.ToLower(strings.TrimSpace(c.Space.Strategy))
	c.Space.Strategy = strings.ReplaceAll(c.Space.Strategy, "-", "_")
	if c.Space.Strategy == "" {
		c.Space.Strategy = defaultStrategy
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
