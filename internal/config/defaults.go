package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	defaultBackupDir        = "~/copycat_backup"
	defaultLogDir           = "~/.local/share/copycat/logs"
	defaultStateDir         = "~/.local/share/copycat/state"
	defaultPollInterval     = 5
	defaultMaxFileSizeMB    = 100
	defaultMinFreeGB        = 5
	defaultMaxTotalGB       = 50
	defaultMaxAgeDays       = 90
	defaultStrategy         = StrategyOldestFirst
	defaultHistoryRecords   = 100
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
)

// Reclamation strategies accepted by space.strategy.
const (
	StrategyOldestFirst  = "oldest_first"
	StrategyLargestFirst = "largest_first"
)

var defaultExtensions = []string{
	".doc", ".docx", ".pdf", ".txt", ".xlsx", ".xls", ".pptx", ".ppt", ".jpg", ".png",
}

var defaultExcludeGlobs = []string{
	"System Volume Information/**",
	"$RECYCLE.BIN/**",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			BackupDir: defaultBackupDir,
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir,
		},
		Monitor: Monitor{
			PollInterval:  defaultPollInterval,
			ExcludeDrives: []string{"C"},
			MediaRoots:    defaultMediaRoots(),
		},
		Filter: Filter{
			Extensions:    append([]string(nil), defaultExtensions...),
			MaxFileSizeMB: defaultMaxFileSizeMB,
			ExcludeGlobs:  append([]string(nil), defaultExcludeGlobs...),
			ContentDedup:  true,
		},
		Space: Space{
			MinFreeGB:  defaultMinFreeGB,
			MaxTotalGB: defaultMaxTotalGB,
			MaxAgeDays: defaultMaxAgeDays,
			Strategy:   defaultStrategy,
		},
		History: History{
			MaxRecords: defaultHistoryRecords,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

func defaultMediaRoots() []string {
	switch runtime.GOOS {
	case "windows":
		return nil
	case "darwin":
		return []string{"/Volumes"}
	}
	user := os.Getenv("USER")
	if user == "" {
		return []string{"/media", "/run/media"}
	}
	return []string{
		filepath.Join("/media", user),
		filepath.Join("/run/media", user),
	}
}
