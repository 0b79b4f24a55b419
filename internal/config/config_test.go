package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"copycat/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if runtime.GOOS == "windows" {
		return
	}
	if want := filepath.Join(tempHome, "copycat_backup"); cfg.Paths.BackupDir != want {
		t.Fatalf("unexpected backup dir: got %q want %q", cfg.Paths.BackupDir, want)
	}
	if want := filepath.Join(tempHome, ".local", "share", "copycat", "state"); cfg.Paths.StateDir != want {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, want)
	}
	if cfg.HistoryPath() != filepath.Join(cfg.Paths.StateDir, "usb_history.json") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
	if cfg.Monitor.PollInterval != 5 {
		t.Fatalf("unexpected poll interval: %d", cfg.Monitor.PollInterval)
	}
	if cfg.Space.Strategy != config.StrategyOldestFirst {
		t.Fatalf("unexpected strategy: %q", cfg.Space.Strategy)
	}
	if cfg.History.MaxRecords != 100 {
		t.Fatalf("unexpected history cap: %d", cfg.History.MaxRecords)
	}
	if cfg.MaxFileSizeBytes() != 100*1024*1024 {
		t.Fatalf("unexpected max file size: %d", cfg.MaxFileSizeBytes())
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "copycat.toml")

	custom := struct {
		Paths struct {
			BackupDir string `toml:"backup_dir"`
			StateDir  string `toml:"state_dir"`
		} `toml:"paths"`
		Monitor struct {
			PollInterval  int      `toml:"poll_interval"`
			ExcludeDrives []string `toml:"exclude_drives"`
		} `toml:"monitor"`
		Filter struct {
			Extensions []string `toml:"extensions"`
		} `toml:"filter"`
		Space struct {
			MinFreeGB float64 `toml:"min_free_gb"`
			Strategy  string  `toml:"strategy"`
		} `toml:"space"`
	}{}
	custom.Paths.BackupDir = filepath.Join(tempDir, "backup")
	custom.Paths.StateDir = filepath.Join(tempDir, "state")
	custom.Monitor.PollInterval = 2
	custom.Monitor.ExcludeDrives = []string{"c:", "d", "C"}
	custom.Filter.Extensions = []string{"PDF", ".Docx", " .txt "}
	custom.Space.MinFreeGB = 1.5
	custom.Space.Strategy = "Largest-First"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.BackupDir != custom.Paths.BackupDir {
		t.Fatalf("unexpected backup dir: %q", cfg.Paths.BackupDir)
	}
	if cfg.Monitor.PollInterval != 2 {
		t.Fatalf("unexpected poll interval: %d", cfg.Monitor.PollInterval)
	}
	if got := strings.Join(cfg.Monitor.ExcludeDrives, ","); got != "C,D" {
		t.Fatalf("unexpected exclude drives: %q", got)
	}
	if got := strings.Join(cfg.Filter.Extensions, ","); got != ".pdf,.docx,.txt" {
		t.Fatalf("unexpected extensions: %q", got)
	}
	if cfg.Space.MinFreeGB != 1.5 {
		t.Fatalf("unexpected min free: %v", cfg.Space.MinFreeGB)
	}
	if cfg.Space.Strategy != config.StrategyLargestFirst {
		t.Fatalf("unexpected strategy: %q", cfg.Space.Strategy)
	}
	// Sections omitted from the file keep their defaults.
	if cfg.Space.MaxAgeDays != 90 {
		t.Fatalf("expected default max age, got %d", cfg.Space.MaxAgeDays)
	}
}

func TestLoadRejectsUnknownStrategy(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "copycat.toml")
	if err := os.WriteFile(configPath, []byte("[space]\nstrategy = \"random\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "min_free_gb") {
		t.Fatalf("sample config missing space section: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Space.Strategy != config.StrategyOldestFirst {
		t.Fatalf("unexpected sample strategy: %q", cfg.Space.Strategy)
	}
	if !strings.Contains(cfg.Paths.BackupDir, "copycat") {
		t.Fatalf("expected backup dir to contain copycat, got %q", cfg.Paths.BackupDir)
	}

	loaded, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists || loaded.Filter.MaxFileSizeMB != 100 {
		t.Fatalf("unexpected loaded sample: exists=%v max=%d", exists, loaded.Filter.MaxFileSizeMB)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Space.MinFreeGB = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative min free")
	}

	cfg = config.Default()
	cfg.Space.MaxTotalGB = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative max total")
	}

	cfg = config.Default()
	cfg.Space.MaxAgeDays = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative max age")
	}

	cfg = config.Default()
	cfg.Space.Strategy = "newest_first"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown strategy")
	}

	cfg = config.Default()
	cfg.Monitor.PollInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero poll interval")
	}

	cfg = config.Default()
	cfg.Filter.Extensions = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty extension list")
	}

	cfg = config.Default()
	cfg.Space.MaxTotalGB = 0
	cfg.Space.MaxAgeDays = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("zero limits disable passes and should validate: %v", err)
	}
}

func TestExpandPathHandlesTildeAndEnv(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("path layout differs on windows")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("COPYCAT_TEST_DIR", "data")

	got, err := config.ExpandPath("~/$COPYCAT_TEST_DIR/backup")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if want := filepath.Join(home, "data", "backup"); got != want {
		t.Fatalf("unexpected path: got %q want %q", got, want)
	}
}

func TestValidateRejectsStateOrLogsInsideBackupDir(t *testing.T) {
	base := t.TempDir()
	backup := filepath.Join(base, "backup")

	cases := []struct {
		name    string
		state   string
		logs    string
		wantErr bool
	}{
		{name: "separate", state: filepath.Join(base, "state"), logs: filepath.Join(base, "logs")},
		{name: "sibling with shared prefix", state: filepath.Join(base, "backup-state"), logs: filepath.Join(base, "logs")},
		{name: "state nested", state: filepath.Join(backup, "state"), logs: filepath.Join(base, "logs"), wantErr: true},
		{name: "state equals backup", state: backup, logs: filepath.Join(base, "logs"), wantErr: true},
		{name: "logs nested", state: filepath.Join(base, "state"), logs: filepath.Join(backup, "STICK", "logs"), wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.BackupDir = backup
			cfg.Paths.StateDir = tc.state
			cfg.Paths.LogDir = tc.logs
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected nested directory to be rejected")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadRejectsStateInsideBackupDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	backup := filepath.ToSlash(filepath.Join(dir, "backup"))
	content := "[paths]\nbackup_dir = \"" + backup + "\"\nstate_dir = \"" + backup + "/state\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "paths.state_dir") {
		t.Fatalf("expected state_dir error, got %v", err)
	}
}
