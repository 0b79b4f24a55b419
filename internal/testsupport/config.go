package testsupport

import (
	"path/filepath"
	"testing"

	"copycat/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Media roots point at an empty directory so the system enumerator sees no
// volumes unless a test mounts something there.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.BackupDir = filepath.Join(base, "backup")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Monitor.MediaRoots = []string{filepath.Join(base, "media")}
	cfgVal.Monitor.PollInterval = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSpace overrides the reclamation limits (GiB and days).
func WithSpace(minFreeGB, maxTotalGB float64, maxAgeDays int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Space.MinFreeGB = minFreeGB
		b.cfg.Space.MaxTotalGB = maxTotalGB
		b.cfg.Space.MaxAgeDays = maxAgeDays
	}
}

// WithEnsureDirs creates the backup, log, and state directories.
func WithEnsureDirs() ConfigOption {
	return func(b *configBuilder) {
		if err := b.cfg.EnsureDirectories(); err != nil {
			b.t.Fatalf("ensure directories: %v", err)
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.BackupDir)
}
