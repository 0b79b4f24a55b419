package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"copycat/internal/arrival"
	"copycat/internal/backup"
	"copycat/internal/config"
	"copycat/internal/logging"
	"copycat/internal/monitor"
	"copycat/internal/volume"
)

// Daemon owns the poll loop and enforces single-instance execution.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	components *Components
	loop       *monitor.Loop

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool             `json:"running"`
	BackupDir    string           `json:"backup_dir"`
	JournalPath  string           `json:"journal_path"`
	HistoryPath  string           `json:"history_path"`
	LockFilePath string           `json:"lock_path"`
	Volumes      []arrival.Volume `json:"volumes"`
}

// Option customizes daemon construction.
type Option func(*options)

type options struct {
	enumerator volume.Enumerator
	identifier monitor.Identifier
}

// WithEnumerator replaces the OS volume enumerator.
func WithEnumerator(e volume.Enumerator) Option {
	return func(o *options) { o.enumerator = e }
}

// WithIdentifier replaces the OS volume serial lookup.
func WithIdentifier(id monitor.Identifier) Option {
	return func(o *options) { o.identifier = id }
}

// New constructs a daemon with initialized dependencies. The instance lock is
// not taken until Start.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || logger == nil {
		return nil, errors.New("daemon requires config and logger")
	}
	o := options{
		enumerator: volume.NewSystemEnumerator(cfg.Monitor.ExcludeDrives, cfg.Monitor.MediaRoots),
		identifier: volume.NewIdentifier(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	components, err := OpenComponents(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	copier, err := backup.NewFromConfig(cfg, logger)
	if err != nil {
		_ = components.Close()
		return nil, err
	}

	loop, err := monitor.New(monitor.Deps{
		Enumerator: o.enumerator,
		Identifier: o.identifier,
		Store:      components.Store,
		Reclaimer:  components.Reclaimer,
		Copier:     copier,
		History:    components.History,
		Journal:    components.Journal,
	}, monitor.Options{
		Interval:        time.Duration(cfg.Monitor.PollInterval) * time.Second,
		Policy:          components.Policy,
		ProcessExisting: cfg.Monitor.ProcessExisting,
	}, logger)
	if err != nil {
		_ = components.Close()
		return nil, fmt.Errorf("create monitor: %w", err)
	}

	return &Daemon{
		cfg:        cfg,
		logger:     logger,
		components: components,
		loop:       loop,
		lockPath:   cfg.LockPath(),
	}, nil
}

// Start acquires the instance lock and launches the poll loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	lock, err := AcquireLock(d.lockPath)
	if err != nil {
		return err
	}
	if err := d.loop.Start(ctx); err != nil {
		_ = lock.Unlock()
		return fmt.Errorf("start monitor: %w", err)
	}
	d.lock = lock

	d.running.Store(true)
	d.logger.Info("copycat daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("lock", d.lockPath),
		logging.String("backup_dir", d.cfg.Paths.BackupDir),
	)
	return nil
}

// Stop waits for the in-flight volume to finish and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.loop.Stop()
	if d.lock != nil {
		if err := d.lock.Unlock(); err != nil {
			logging.WarnWithContext(d.logger, "failed to release daemon lock", "lock_release_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "the next start may report another instance running"),
			)
		}
		d.lock = nil
	}
	d.running.Store(false)
	d.logger.Info("copycat daemon stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return d.components.Close()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		BackupDir:    d.cfg.Paths.BackupDir,
		JournalPath:  d.cfg.JournalPath(),
		HistoryPath:  d.cfg.HistoryPath(),
		LockFilePath: d.lockPath,
		Volumes:      d.loop.Volumes(),
	}
}
