package reclaim

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"copycat/internal/backupstore"
	"copycat/internal/logging"
)

// Store is the view of the backup tree the reclaimer works on. Every call
// reflects the current on-disk state.
type Store interface {
	Files() ([]backupstore.Entry, error)
	TotalSize() (int64, error)
	Remove(path string) error
	FreeBytes() (uint64, error)
}

// emptyDirPruner is implemented by stores that can drop folders left empty.
type emptyDirPruner interface {
	PruneEmptyDirs() int
}

// Result summarizes one reclamation run.
type Result struct {
	FilesDeleted    int   `json:"files_deleted"`
	SpaceFreedBytes int64 `json:"space_freed_bytes"`
	Errors          int   `json:"errors"`

	// FreeBytes is the free space measured after the passes.
	FreeBytes uint64 `json:"free_bytes"`
	// Sufficient reports whether free space meets MinFreeBytes. It is true
	// when free space could not be measured so a broken statfs does not
	// block copying forever.
	Sufficient  bool `json:"sufficient"`
	FreeUnknown bool `json:"free_unknown,omitempty"`
	// Skipped is set when free space was already above the floor and no
	// pass ran.
	Skipped     bool `json:"skipped"`
	SizePassRan bool `json:"size_pass_ran"`
	AgePassRan  bool `json:"age_pass_ran"`
}

func (r *Result) add(o Result) {
	r.FilesDeleted += o.FilesDeleted
	r.SpaceFreedBytes += o.SpaceFreedBytes
	r.Errors += o.Errors
	r.SizePassRan = r.SizePassRan || o.SizePassRan
	r.AgePassRan = r.AgePassRan || o.AgePassRan
}

// DeleteHook observes every file the reclaimer removes.
type DeleteHook func(ctx context.Context, entry backupstore.Entry)

// Reclaimer deletes backup files to satisfy a Policy. A Reclaimer holds no
// per-run state; callers must not run two passes over the same store at once.
type Reclaimer struct {
	logger   *slog.Logger
	now      func() time.Time
	onDelete DeleteHook
}

// Option customizes a Reclaimer.
type Option func(*Reclaimer)

// WithClock replaces time.Now for age computation.
func WithClock(now func() time.Time) Option {
	return func(r *Reclaimer) {
		if now != nil {
			r.now = now
		}
	}
}

// WithDeleteHook registers fn to run after each successful deletion.
func WithDeleteHook(fn DeleteHook) Option {
	return func(r *Reclaimer) { r.onDelete = fn }
}

func New(logger *slog.Logger, opts ...Option) *Reclaimer {
	r := &Reclaimer{
		logger: logging.NewComponentLogger(logger, "reclaim"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EnsureSpace runs the size pass and then the age pass when free space on the
// store's filesystem is below policy.MinFreeBytes, and reports whether enough
// space is available afterwards.
func (r *Reclaimer) EnsureSpace(ctx context.Context, store Store, policy Policy) Result {
	free, err := store.FreeBytes()
	if err != nil {
		logging.WarnWithContext(r.logger, "free space check failed; reclaiming anyway", "free_space_unknown",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that backup_dir is on a readable filesystem"),
			logging.String(logging.FieldImpact, "reclamation runs without a free space gate"),
		)
	} else if int64(free) >= policy.MinFreeBytes {
		return Result{FreeBytes: free, Sufficient: true, Skipped: true}
	}

	r.logger.Info("free space below floor; reclaiming",
		logging.String(logging.FieldEventType, "reclaim_started"),
		logging.Bytes("free_bytes", int64(free)),
		logging.Bytes("min_free_bytes", policy.MinFreeBytes),
	)

	res := r.Clean(ctx, store, policy)

	free, err = store.FreeBytes()
	switch {
	case err != nil:
		res.Sufficient, res.FreeUnknown = true, true
	default:
		res.FreeBytes = free
		res.Sufficient = int64(free) >= policy.MinFreeBytes
	}
	return res
}

// Clean runs both passes regardless of free space.
func (r *Reclaimer) Clean(ctx context.Context, store Store, policy Policy) Result {
	var res Result
	res.add(r.SizePass(ctx, store, policy))
	res.add(r.AgePass(ctx, store, policy))

	if res.FilesDeleted > 0 {
		if pruner, ok := store.(emptyDirPruner); ok {
			pruner.PruneEmptyDirs()
		}
	}
	r.logger.Info("reclamation finished",
		logging.String(logging.FieldEventType, "reclaim_finished"),
		logging.Int("files_deleted", res.FilesDeleted),
		logging.Bytes("space_freed_bytes", res.SpaceFreedBytes),
		logging.Int("errors", res.Errors),
	)
	return res
}

// SizePass deletes the oldest files, one at a time, until the store is at or
// below policy.MaxTotalBytes. The order is by modification time regardless
// of policy.Strategy, and the total is rescanned after every deletion.
func (r *Reclaimer) SizePass(ctx context.Context, store Store, policy Policy) Result {
	var res Result
	if policy.MaxTotalBytes <= 0 {
		return res
	}
	total, err := store.TotalSize()
	if err != nil {
		r.scanFailed("size", err)
		res.Errors++
		return res
	}
	if total <= policy.MaxTotalBytes {
		return res
	}
	res.SizePassRan = true

	files, err := store.Files()
	if err != nil {
		r.scanFailed("size", err)
		res.Errors++
		return res
	}
	sortOldestFirst(files)

	for _, entry := range files {
		if ctx.Err() != nil {
			break
		}
		if !r.remove(ctx, store, entry, &res) {
			continue
		}
		total, err = store.TotalSize()
		if err != nil {
			r.scanFailed("size", err)
			res.Errors++
			break
		}
		if total <= policy.MaxTotalBytes {
			break
		}
	}
	return res
}

// AgePass deletes every file older than policy.MaxAge, ordered by
// policy.Strategy. It does not depend on the size limit.
func (r *Reclaimer) AgePass(ctx context.Context, store Store, policy Policy) Result {
	var res Result
	if policy.MaxAge <= 0 {
		return res
	}
	res.AgePassRan = true

	files, err := store.Files()
	if err != nil {
		r.scanFailed("age", err)
		res.Errors++
		return res
	}
	if policy.Strategy == LargestFirst {
		sortLargestFirst(files)
	} else {
		sortOldestFirst(files)
	}

	now := r.now()
	for _, entry := range files {
		if ctx.Err() != nil {
			break
		}
		if now.Sub(entry.ModTime) <= policy.MaxAge {
			continue
		}
		r.remove(ctx, store, entry, &res)
	}
	return res
}

func (r *Reclaimer) remove(ctx context.Context, store Store, entry backupstore.Entry, res *Result) bool {
	if err := store.Remove(entry.Path); err != nil {
		res.Errors++
		logging.WarnWithContext(r.logger, "backup file delete failed; continuing", "reclaim_delete_failed",
			logging.String(logging.FieldPath, entry.Path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "file may be open in another program"),
			logging.String(logging.FieldImpact, "file stays in the backup store"),
		)
		return false
	}
	res.FilesDeleted++
	res.SpaceFreedBytes += entry.Size
	r.logger.Debug("backup file deleted",
		logging.String(logging.FieldPath, entry.Path),
		logging.Int64("size_bytes", entry.Size),
		logging.Time("modified_at", entry.ModTime),
	)
	if r.onDelete != nil {
		r.onDelete(ctx, entry)
	}
	return true
}

func (r *Reclaimer) scanFailed(pass string, err error) {
	logging.WarnWithContext(r.logger, "backup store scan failed; pass aborted", "reclaim_scan_failed",
		logging.String("pass", pass),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check backup_dir permissions"),
		logging.String(logging.FieldImpact, "no files reclaimed by this pass"),
	)
}

func sortOldestFirst(files []backupstore.Entry) {
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.Before(files[j].ModTime)
		}
		return files[i].Path < files[j].Path
	})
}

func sortLargestFirst(files []backupstore.Entry) {
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Size != files[j].Size {
			return files[i].Size > files[j].Size
		}
		return files[i].Path < files[j].Path
	})
}
