package backupstore

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"copycat/internal/logging"
)

// DateLayout names the per-day folders under each volume label.
const DateLayout = "2006-01-02"

// StatfsFunc reports filesystem capacity for the filesystem holding path.
type StatfsFunc func(path string) (total uint64, free uint64, err error)

// Entry is one file in the backup tree. Entries are discovered by walking
// the tree; nothing persists them.
type Entry struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size_bytes"`
	ModTime time.Time `json:"modified_at"`
}

// Store is the on-disk tree of copied files laid out as
// <root>/<label>/<YYYY-MM-DD>/<relative path>.
type Store struct {
	root   string
	logger *slog.Logger
	statfs StatfsFunc
}

// Option customizes a Store.
type Option func(*Store)

// WithStatfs replaces the filesystem capacity query.
func WithStatfs(fn StatfsFunc) Option {
	return func(s *Store) {
		if fn != nil {
			s.statfs = fn
		}
	}
}

// New returns a Store rooted at root. The directory does not need to exist yet.
func New(root string, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		root:   filepath.Clean(root),
		logger: logging.NewComponentLogger(logger, "backupstore"),
		statfs: realStatfs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Root() string { return s.root }

// DestDir returns the folder a volume's files are copied into on day.
func (s *Store) DestDir(label string, day time.Time) string {
	return filepath.Join(s.root, SanitizeLabel(label), day.Format(DateLayout))
}

// Files lists every regular file under <label>/<date>/ below the root. Files
// sitting directly in the root or in a label folder are not backup entries
// and are never offered for reclamation. A missing root is an empty store.
func (s *Store) Files() ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.root && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			if path == s.root {
				return err
			}
			s.logger.Warn("backup store entry unreadable; skipped",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
				logging.String(logging.FieldEventType, "store_entry_skipped"),
			)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if label, day := s.split(path); label == "" || day == "" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			// Removed between listing and stat.
			return nil
		}
		entries = append(entries, Entry{Path: path, Size: info.Size(), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("backupstore: scan %s: %w", s.root, err)
	}
	return entries, nil
}

// TotalSize sums the size of every file by rescanning the tree.
func (s *Store) TotalSize() (int64, error) {
	entries, err := s.Files()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, e := range entries {
		total += e.Size
	}
	return total, nil
}

// Remove deletes one file. Paths outside the root are refused.
func (s *Store) Remove(path string) error {
	if !s.contains(path) {
		return fmt.Errorf("backupstore: refusing to remove %q outside %q", path, s.root)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("backupstore: remove: %w", err)
	}
	return nil
}

// FreeBytes reports the bytes available on the filesystem holding the store.
func (s *Store) FreeBytes() (uint64, error) {
	_, free, err := s.statfs(existingAncestor(s.root))
	if err != nil {
		return 0, fmt.Errorf("backupstore: statfs: %w", err)
	}
	return free, nil
}

// Usage summarizes the store for status output.
type Usage struct {
	Root         string         `json:"root"`
	Files        int            `json:"files"`
	TotalBytes   int64          `json:"total_bytes"`
	FreeBytes    uint64         `json:"free_bytes"`
	TotalFSBytes uint64         `json:"total_fs_bytes"`
	Oldest       time.Time      `json:"oldest,omitempty"`
	Newest       time.Time      `json:"newest,omitempty"`
	Labels       []LabelSummary `json:"labels"`
}

// LabelSummary aggregates the files copied from one volume label.
type LabelSummary struct {
	Label      string `json:"label"`
	Days       int    `json:"days"`
	Files      int    `json:"files"`
	TotalBytes int64  `json:"total_bytes"`
}

// Usage scans the store and queries the filesystem.
func (s *Store) Usage() (Usage, error) {
	u := Usage{Root: s.root}
	entries, err := s.Files()
	if err != nil {
		return u, err
	}
	totalFS, free, err := s.statfs(existingAncestor(s.root))
	if err != nil {
		return u, fmt.Errorf("backupstore: statfs: %w", err)
	}
	u.FreeBytes, u.TotalFSBytes = free, totalFS

	labels := map[string]*LabelSummary{}
	days := map[string]map[string]struct{}{}
	for _, e := range entries {
		u.Files++
		u.TotalBytes += e.Size
		if u.Oldest.IsZero() || e.ModTime.Before(u.Oldest) {
			u.Oldest = e.ModTime
		}
		if e.ModTime.After(u.Newest) {
			u.Newest = e.ModTime
		}
		label, day := s.split(e.Path)
		sum, ok := labels[label]
		if !ok {
			sum = &LabelSummary{Label: label}
			labels[label] = sum
			days[label] = map[string]struct{}{}
		}
		sum.Files++
		sum.TotalBytes += e.Size
		if day != "" {
			days[label][day] = struct{}{}
		}
	}
	for label, sum := range labels {
		sum.Days = len(days[label])
		u.Labels = append(u.Labels, *sum)
	}
	sort.Slice(u.Labels, func(i, j int) bool { return u.Labels[i].Label < u.Labels[j].Label })
	return u, nil
}

// PruneEmptyDirs removes empty directories below the root, deepest first.
// The root itself is kept.
func (s *Store) PruneEmptyDirs() int {
	var dirs []string
	_ = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != s.root {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() && path != s.root {
			dirs = append(dirs, path)
		}
		return nil
	})
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })

	removed := 0
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}
		if err := os.Remove(dir); err == nil {
			removed++
		}
	}
	return removed
}

// split returns the label and date folder a file path lives under.
func (s *Store) split(path string) (label, day string) {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return "", ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) >= 3 {
		return parts[0], parts[1]
	}
	if len(parts) == 2 {
		return parts[0], ""
	}
	return "", ""
}

func (s *Store) contains(path string) bool {
	rel, err := filepath.Rel(s.root, filepath.Clean(path))
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// existingAncestor walks up from path until it finds something that exists,
// so free space can be queried before the store is created.
func existingAncestor(path string) string {
	for {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}
