package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"copycat/internal/logging"
)

// DefaultMaxRecords caps the history file when no limit is configured.
const DefaultMaxRecords = 100

// Record is one device in the arrival history.
type Record struct {
	Identity   string    `json:"identity"`
	Label      string    `json:"label"`
	MountPath  string    `json:"mount_path,omitempty"`
	FirstSeen  time.Time `json:"first_seen"`
	LastAccess time.Time `json:"last_access"`
	Arrivals   int       `json:"arrivals"`
}

// Log is the on-disk arrival history. Every Record call reads the file,
// applies the change, trims it, and writes it back.
type Log struct {
	path       string
	maxRecords int
	logger     *slog.Logger
	mu         sync.Mutex
}

// New returns a Log backed by path. The file is created on first Record.
func New(path string, maxRecords int, logger *slog.Logger) *Log {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	return &Log{
		path:       path,
		maxRecords: maxRecords,
		logger:     logging.NewComponentLogger(logger, "history"),
	}
}

func (l *Log) Path() string { return l.path }

// Record notes an arrival of identity at now. An existing record keeps its
// FirstSeen; a new one starts with FirstSeen == LastAccess.
func (l *Log) Record(identity, label, mountPath string, now time.Time) (Record, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return Record{}, errors.New("history: identity cannot be empty")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.load()
	if err != nil {
		return Record{}, err
	}

	var rec *Record
	for i := range records {
		if records[i].Identity == identity {
			rec = &records[i]
			break
		}
	}
	if rec == nil {
		records = append(records, Record{Identity: identity, FirstSeen: now})
		rec = &records[len(records)-1]
	}
	rec.LastAccess = now
	rec.Arrivals++
	if label != "" {
		rec.Label = label
	}
	if mountPath != "" {
		rec.MountPath = mountPath
	}
	saved := *rec

	records = trim(records, l.maxRecords)
	if err := l.save(records); err != nil {
		return Record{}, err
	}
	l.logger.Debug("arrival recorded",
		logging.String(logging.FieldVolumeID, identity),
		logging.Int("arrivals", saved.Arrivals),
	)
	return saved, nil
}

// List returns the stored records, most recent access first.
func (l *Log) List() ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	records, err := l.load()
	if err != nil {
		return nil, err
	}
	sortRecent(records)
	return records, nil
}

// trim keeps the max records with the latest LastAccess.
func trim(records []Record, max int) []Record {
	sortRecent(records)
	if len(records) > max {
		records = records[:max]
	}
	return records
}

func sortRecent(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].LastAccess.After(records[j].LastAccess)
	})
}

func (l *Log) load() ([]Record, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("history: read %s: %w", l.path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		logging.WarnWithContext(l.logger, "history file unreadable; starting fresh", "history_corrupt",
			logging.String(logging.FieldPath, l.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the file is rewritten on the next arrival"),
			logging.String(logging.FieldImpact, "earlier arrival history is discarded"),
		)
		return nil, nil
	}
	return records, nil
}

func (l *Log) save(records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("history: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("history: create directory: %w", err)
	}
	tmpPath := l.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("history: write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, l.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("history: rename temp file: %w", err)
	}
	return nil
}
