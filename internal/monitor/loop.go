package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"copycat/internal/arrival"
	"copycat/internal/backup"
	"copycat/internal/history"
	"copycat/internal/journal"
	"copycat/internal/logging"
	"copycat/internal/reclaim"
	"copycat/internal/volume"
)

// DefaultInterval is used when Options.Interval is not positive.
const DefaultInterval = 5 * time.Second

// Identifier resolves the identity of a mounted volume. A non-nil error
// accompanies the unstable fallback identity.
type Identifier interface {
	Resolve(mountPath string) (string, error)
}

// Copier copies matching files off a volume into destRoot.
type Copier interface {
	CopyMatchingFiles(ctx context.Context, vol volume.Mount, destRoot string) ([]backup.CopiedFile, error)
}

// HistoryRecorder persists volume arrivals.
type HistoryRecorder interface {
	Record(identity, label, mountPath string, now time.Time) (history.Record, error)
}

// JournalWriter records completed copies.
type JournalWriter interface {
	RecordCopies(ctx context.Context, copies []journal.Copy) error
}

// Store is the backup tree the loop reclaims space from and copies into.
type Store interface {
	reclaim.Store
	DestDir(label string, day time.Time) string
}

// Deps are the collaborators of a Loop. Journal may be nil.
type Deps struct {
	Enumerator volume.Enumerator
	Identifier Identifier
	Store      Store
	Reclaimer  *reclaim.Reclaimer
	Copier     Copier
	History    HistoryRecorder
	Journal    JournalWriter
}

// Options tune a Loop.
type Options struct {
	Interval        time.Duration
	Policy          reclaim.Policy
	ProcessExisting bool
	// SeenCapacity and RegistryCapacity default to arrival.DefaultCapacity.
	SeenCapacity     int
	RegistryCapacity int
	Now              func() time.Time
}

// Status values reported in an Outcome.
const (
	StatusCopied            = "copied"
	StatusAlreadySeen       = "already_seen"
	StatusInsufficientSpace = "insufficient_space"
	StatusCopyFailed        = "copy_failed"
)

// Outcome describes how one arrived volume was handled.
type Outcome struct {
	Mount      volume.Mount
	Identity   string
	Stable     bool
	Status     string
	Copied     int
	Duplicates int
	Reclaim    reclaim.Result
	Err        error
}

// Loop polls for removable volumes and backs up each newly arrived one. It
// owns the arrival tracker, the seen set, and the volume registry; all backup
// store mutations happen on the loop goroutine.
type Loop struct {
	deps     Deps
	opts     Options
	logger   *slog.Logger
	now      func() time.Time
	tracker  *arrival.Tracker
	seen     *arrival.SeenSet
	registry *arrival.Registry

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New validates deps and returns an idle Loop.
func New(deps Deps, opts Options, logger *slog.Logger) (*Loop, error) {
	switch {
	case deps.Enumerator == nil:
		return nil, errors.New("monitor: enumerator is required")
	case deps.Identifier == nil:
		return nil, errors.New("monitor: identifier is required")
	case deps.Store == nil:
		return nil, errors.New("monitor: store is required")
	case deps.Reclaimer == nil:
		return nil, errors.New("monitor: reclaimer is required")
	case deps.Copier == nil:
		return nil, errors.New("monitor: copier is required")
	case deps.History == nil:
		return nil, errors.New("monitor: history is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Loop{
		deps:     deps,
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "monitor"),
		now:      now,
		tracker:  arrival.NewTracker(),
		seen:     arrival.NewSeenSet(opts.SeenCapacity),
		registry: arrival.NewRegistry(opts.RegistryCapacity),
	}, nil
}

// Start runs the loop on its own goroutine until ctx is cancelled or Stop is called.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return errors.New("monitor already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.running = true

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		_ = l.Run(runCtx)
	}()
	return nil
}

// Stop cancels the loop and waits for any in-flight volume to finish.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	cancel := l.cancel
	l.running = false
	l.cancel = nil
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	l.wg.Wait()
}

// Run blocks, polling every interval until ctx is done. It returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("volume monitor started",
		logging.String(logging.FieldEventType, "monitor_started"),
		logging.Duration("interval", l.opts.Interval),
		logging.Bool("process_existing", l.opts.ProcessExisting),
	)
	if l.opts.ProcessExisting {
		l.Tick(ctx)
	} else {
		l.prime(ctx)
	}

	ticker := time.NewTicker(l.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("volume monitor stopped", logging.String(logging.FieldEventType, "monitor_stopped"))
			return ctx.Err()
		case <-ticker.C:
			if ctx.Err() != nil {
				continue
			}
			l.Tick(ctx)
		}
	}
}

// prime marks volumes mounted at startup as known without backing them up.
func (l *Loop) prime(ctx context.Context) {
	mounts := l.enumerate(ctx)
	paths := make([]string, 0, len(mounts))
	for _, m := range mounts {
		paths = append(paths, m.Path)
	}
	l.tracker.Prime(paths)
	if len(paths) > 0 {
		l.logger.Info("existing volumes ignored",
			logging.String(logging.FieldEventType, "existing_volumes_primed"),
			logging.Int("count", len(paths)),
		)
	}
}

// Tick runs one poll: enumerate, diff against the previous tick, and handle
// every arrival in mount path order.
func (l *Loop) Tick(ctx context.Context) []Outcome {
	mounts := l.enumerate(ctx)
	byPath := make(map[string]volume.Mount, len(mounts))
	paths := make([]string, 0, len(mounts))
	for _, m := range mounts {
		if _, dup := byPath[m.Path]; dup {
			continue
		}
		byPath[m.Path] = m
		paths = append(paths, m.Path)
	}

	arrived, departed := l.tracker.Poll(paths)
	for _, path := range departed {
		for _, v := range l.registry.AtMount(path) {
			l.registry.Remove(v.Identity)
			l.logger.Info("volume removed",
				logging.String(logging.FieldEventType, "volume_removed"),
				logging.String(logging.FieldVolumeID, v.Identity),
				logging.String(logging.FieldVolumeLabel, v.Label),
				logging.String(logging.FieldMount, path),
			)
		}
	}

	outcomes := make([]Outcome, 0, len(arrived))
	for _, path := range arrived {
		outcomes = append(outcomes, l.handleArrival(ctx, byPath[path]))
	}
	return outcomes
}

// enumerate lists mounted volumes. A failure is logged and treated as no
// volumes mounted for this tick.
func (l *Loop) enumerate(ctx context.Context) []volume.Mount {
	mounts, err := l.deps.Enumerator.List(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		logging.WarnWithContext(l.logger, "volume enumeration failed", "enumeration_failed",
			logging.Error(err),
			logging.String("kind", string(volume.KindOf(err))),
			logging.String(logging.FieldErrorHint, "check media_roots and drive permissions"),
			logging.String(logging.FieldImpact, "no volumes detected this poll"),
		)
		return nil
	}
	return mounts
}

func (l *Loop) handleArrival(ctx context.Context, mount volume.Mount) Outcome {
	identity, idErr := l.deps.Identifier.Resolve(mount.Path)
	label := mount.Label
	if label == "" {
		label = identity
	}
	mount.Label = label
	out := Outcome{Mount: mount, Identity: identity, Stable: idErr == nil}

	volCtx := logging.WithVolume(ctx, identity, label, mount.Path)
	logger := logging.WithContext(volCtx, l.logger)
	if idErr != nil {
		logging.WarnWithContext(logger, "volume serial unavailable; using session identity", "identity_fallback",
			logging.Error(idErr),
			logging.String("kind", string(volume.KindOf(idErr))),
			logging.String(logging.FieldErrorHint, "the volume may be backed up again after it is reinserted"),
			logging.String(logging.FieldImpact, "duplicate suppression is limited to this insertion"),
		)
	}

	now := l.now()
	if l.seen.Contains(identity) {
		l.registry.Observe(identity, mount.Path, label, now)
		logger.Info("volume already processed this session; skipping",
			logging.String(logging.FieldEventType, "volume_already_seen"),
		)
		out.Status = StatusAlreadySeen
		return out
	}
	l.seen.Add(identity)
	l.registry.Observe(identity, mount.Path, label, now)
	logger.Info("volume arrived",
		logging.String(logging.FieldEventType, "volume_arrived"),
		logging.Bool("stable_identity", out.Stable),
	)

	// Copy and reclaim finish even if shutdown begins mid-volume.
	workCtx := context.WithoutCancel(volCtx)
	defer l.recordHistory(logger, identity, label, mount.Path, now)

	out.Reclaim = l.deps.Reclaimer.EnsureSpace(workCtx, l.deps.Store, l.opts.Policy)
	if !out.Reclaim.Sufficient {
		logging.WarnWithContext(logger, "not enough free space after reclamation; skipping copy", "insufficient_space",
			logging.Bytes("free_bytes", int64(out.Reclaim.FreeBytes)),
			logging.Bytes("min_free_bytes", l.opts.Policy.MinFreeBytes),
			logging.String(logging.FieldErrorHint, "free space on the backup disk or lower space.min_free_gb"),
			logging.String(logging.FieldImpact, "volume not backed up"),
		)
		out.Status = StatusInsufficientSpace
		return out
	}

	dest := l.deps.Store.DestDir(label, now)
	files, err := l.deps.Copier.CopyMatchingFiles(workCtx, mount, dest)
	for _, f := range files {
		if f.Duplicate {
			out.Duplicates++
		} else {
			out.Copied++
		}
	}
	l.journal(workCtx, logger, identity, label, files, now)
	if err != nil {
		logging.ErrorWithContext(logger, "volume copy failed", "copy_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the volume is still mounted and readable"),
		)
		out.Status, out.Err = StatusCopyFailed, err
		return out
	}
	out.Status = StatusCopied
	return out
}

func (l *Loop) journal(ctx context.Context, logger *slog.Logger, identity, label string, files []backup.CopiedFile, now time.Time) {
	if l.deps.Journal == nil || len(files) == 0 {
		return
	}
	rows := make([]journal.Copy, 0, len(files))
	for _, f := range files {
		if f.Duplicate {
			continue
		}
		rows = append(rows, journal.Copy{
			VolumeID:   identity,
			Label:      label,
			SourcePath: f.Source,
			DestPath:   f.Dest,
			SizeBytes:  f.Size,
			CopiedAt:   now,
		})
	}
	if err := l.deps.Journal.RecordCopies(ctx, rows); err != nil {
		logging.WarnWithContext(logger, "copy journal write failed", "journal_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "copies missing from the journal; backups are unaffected"),
		)
	}
}

func (l *Loop) recordHistory(logger *slog.Logger, identity, label, mountPath string, now time.Time) {
	if _, err := l.deps.History.Record(identity, label, mountPath, now); err != nil {
		logging.WarnWithContext(logger, "arrival history write failed", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "arrival missing from history"),
		)
	}
}

// Volumes returns the volumes observed this run, most recently accessed first.
func (l *Loop) Volumes() []arrival.Volume {
	vols := l.registry.Snapshot()
	sort.SliceStable(vols, func(i, j int) bool {
		return vols[i].LastAccess.After(vols[j].LastAccess)
	})
	return vols
}

// Seen reports whether identity has been processed during this run.
func (l *Loop) Seen(identity string) bool {
	return l.seen.Contains(identity)
}
