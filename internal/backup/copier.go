package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"copycat/internal/config"
	"copycat/internal/fileutil"
	"copycat/internal/logging"
	"copycat/internal/volume"
)

// CopiedFile is one matching file found on a volume.
type CopiedFile struct {
	Source string `json:"source"`
	// Dest is empty for duplicates.
	Dest      string    `json:"dest,omitempty"`
	Size      int64     `json:"size_bytes"`
	ModTime   time.Time `json:"modified_at"`
	Digest    uint64    `json:"digest"`
	Duplicate bool      `json:"duplicate,omitempty"`
}

// Copier copies matching files off a mounted volume.
type Copier struct {
	filter  *Filter
	digests *Digests
	logger  *slog.Logger
}

// New builds a Copier. digests may be nil to disable content deduplication.
func New(filter *Filter, digests *Digests, logger *slog.Logger) *Copier {
	return &Copier{
		filter:  filter,
		digests: digests,
		logger:  logging.NewComponentLogger(logger, "backup"),
	}
}

// NewFromConfig builds a Copier from the [filter] section.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Copier, error) {
	if cfg == nil {
		return nil, errors.New("backup: config is required")
	}
	filter, err := NewFilter(cfg.Filter.Extensions, cfg.MaxFileSizeBytes(), cfg.Filter.ExcludeGlobs)
	if err != nil {
		return nil, err
	}
	var digests *Digests
	if cfg.Filter.ContentDedup {
		digests = NewDigests(DefaultDigestCapacity)
	}
	return New(filter, digests, logger), nil
}

// CopyMatchingFiles walks vol and copies every matching file under destRoot,
// keeping paths relative to the volume root. Per-file failures are logged and
// skipped; an error is returned only when the volume cannot be walked at all
// or ctx is cancelled.
func (c *Copier) CopyMatchingFiles(ctx context.Context, vol volume.Mount, destRoot string) ([]CopiedFile, error) {
	logger := c.logger.With(
		logging.String(logging.FieldVolumeLabel, vol.Label),
		logging.String(logging.FieldMount, vol.Path),
	)
	var (
		copied   []CopiedFile
		failures int
		dupes    int
		bytes    int64
	)

	err := filepath.WalkDir(vol.Path, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == vol.Path {
				return walkErr
			}
			failures++
			logging.WarnWithContext(logger, "skipping unreadable path", "copy_walk_failed",
				logging.String(logging.FieldPath, path),
				logging.Error(walkErr),
				logging.String(logging.FieldErrorHint, "check volume permissions or run a filesystem check"),
				logging.String(logging.FieldImpact, "files under this path are not backed up"),
			)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if path == vol.Path {
			return nil
		}
		rel, err := filepath.Rel(vol.Path, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if c.filter.ExcludedDir(rel) {
				logger.Debug("excluded directory", logging.String(logging.FieldPath, rel))
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || c.filter.Excluded(rel) || !c.filter.MatchesExtension(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			failures++
			logging.WarnWithContext(logger, "stat failed; skipping file", "copy_stat_failed",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "file not backed up"),
			)
			return nil
		}
		if !c.filter.WithinSize(info.Size()) {
			logger.Debug("file exceeds size limit",
				logging.String(logging.FieldPath, rel),
				logging.Bytes("size", info.Size()),
			)
			return nil
		}

		file, ok := c.copyOne(logger, path, filepath.Join(destRoot, filepath.FromSlash(rel)), info)
		if !ok {
			failures++
			return nil
		}
		if file.Duplicate {
			dupes++
		} else {
			bytes += file.Size
		}
		copied = append(copied, file)
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return copied, err
		}
		return copied, fmt.Errorf("walk %s: %w", vol.Path, err)
	}

	logger.Info("volume copy complete",
		logging.String(logging.FieldEventType, "copy_completed"),
		logging.Int("files_copied", len(copied)-dupes),
		logging.Int("duplicates", dupes),
		logging.Int("failures", failures),
		logging.Bytes("copied_bytes", bytes),
		logging.String("dest", destRoot),
	)
	return copied, nil
}

func (c *Copier) copyOne(logger *slog.Logger, src, dst string, info fs.FileInfo) (CopiedFile, bool) {
	file := CopiedFile{Source: src, Size: info.Size(), ModTime: info.ModTime()}

	if c.digests != nil {
		sum, size, err := fileutil.HashFile(src)
		if err != nil {
			logging.WarnWithContext(logger, "hash failed; skipping file", "copy_hash_failed",
				logging.String(logging.FieldPath, src),
				logging.Error(err),
				logging.String(logging.FieldImpact, "file not backed up"),
			)
			return file, false
		}
		if c.digests.Seen(sum, size) {
			logger.Debug("duplicate content; skipping", logging.String(logging.FieldPath, src))
			file.Digest, file.Size, file.Duplicate = sum, size, true
			return file, true
		}
	}

	written, digest, err := fileutil.CopyFileVerified(src, dst)
	if err != nil {
		logging.WarnWithContext(logger, "copy failed; skipping file", "copy_failed",
			logging.String(logging.FieldPath, src),
			logging.String("dest", dst),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check free space and permissions on backup_dir"),
			logging.String(logging.FieldImpact, "file not backed up"),
		)
		return file, false
	}
	if c.digests != nil {
		c.digests.Remember(digest, file.Size)
	}
	file.Dest, file.Digest = written, digest
	logger.Debug("copied file", logging.String(logging.FieldPath, src), logging.String("dest", written))
	return file, true
}
