package daemonrun

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"copycat/internal/autostart"
	"copycat/internal/config"
	"copycat/internal/daemon"
	"copycat/internal/logging"
	"copycat/internal/preflight"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
	// Console receives human-facing log output. Nil means stdout.
	Console io.Writer
	// DaemonOptions are passed through to daemon.New.
	DaemonOptions []daemon.Option
}

// Run starts the copycat daemon and blocks until SIGINT, SIGTERM, or ctx
// cancellation.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runStamp := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("copycat-%s.log", runStamp))

	level := cfg.Logging.Level
	if strings.TrimSpace(opts.LogLevel) != "" {
		level = opts.LogLevel
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		Console:     opts.Console,
		FilePath:    logPath,
		Development: opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	runID := uuid.NewString()
	ctx := logging.WithRunID(signalCtx, runID)
	logger = logging.WithContext(ctx, logger)

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update copycat.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "copycat-*.log", Exclude: []string{logPath}},
	)
	logDependencySnapshot(logger, cfg)
	for _, check := range preflight.Failed(preflight.RunAll(cfg)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", check.Name),
			logging.String("detail", check.Detail),
			logging.String(logging.FieldImpact, "copycat keeps running; backups may fail until this is fixed"),
		)
	}

	d, err := daemon.New(ctx, cfg, logger, opts.DaemonOptions...)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logging.ErrorWithContext(logger, "daemon start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "stop the other copycat instance or remove a stale lock at "+cfg.LockPath()),
		)
		return err
	}

	pidPath := filepath.Join(cfg.Paths.StateDir, "copycat.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	<-ctx.Done()
	status := d.Status()
	logger.Info("copycat daemon shutting down",
		logging.String(logging.FieldEventType, "daemon_shutdown"),
		logging.Int("volumes_seen", len(status.Volumes)),
	)
	return nil
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "copycat.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	roots := make([]string, 0, len(cfg.Monitor.MediaRoots))
	for _, root := range cfg.Monitor.MediaRoots {
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			roots = append(roots, root)
		}
	}
	auto, autoErr := autostart.Installed()
	logger.Info("dependency snapshot",
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.String("backup_dir", cfg.Paths.BackupDir),
		logging.String("state_dir", cfg.Paths.StateDir),
		logging.String("media_roots_present", strings.Join(roots, ",")),
		logging.String("exclude_drives", strings.Join(cfg.Monitor.ExcludeDrives, ",")),
		logging.Int("extensions", len(cfg.Filter.Extensions)),
		logging.Bool("content_dedup", cfg.Filter.ContentDedup),
		logging.String("strategy", cfg.Space.Strategy),
		logging.Bool("autostart_installed", autoErr == nil && auto.Installed),
	)
}
