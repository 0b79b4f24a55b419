package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"copycat/internal/backupstore"
	"copycat/internal/logging"
	"copycat/internal/reclaim"
)

// Copy is one file copied off a volume.
type Copy struct {
	ID          int64      `json:"id"`
	VolumeID    string     `json:"volume_id"`
	Label       string     `json:"label"`
	SourcePath  string     `json:"source_path"`
	DestPath    string     `json:"dest_path"`
	SizeBytes   int64      `json:"size_bytes"`
	CopiedAt    time.Time  `json:"copied_at"`
	ReclaimedAt *time.Time `json:"reclaimed_at,omitempty"`
}

// Stats aggregates the journal.
type Stats struct {
	Copies      int   `json:"copies"`
	Reclaimed   int   `json:"reclaimed"`
	CopiedBytes int64 `json:"copied_bytes"`
	LiveBytes   int64 `json:"live_bytes"`
}

// Journal records copies and reclamations in SQLite.
type Journal struct {
	db   *sql.DB
	path string
}

// Open creates or opens the journal database at path and applies migrations.
func Open(ctx context.Context, path string) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("journal: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("journal: create directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// The daemon and CLI commands share the file; one connection per process
	// keeps SQLite locking simple.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	j := &Journal{db: db, path: path}
	if err := j.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

func (j *Journal) Path() string { return j.path }

// RecordCopies inserts copies in a single transaction.
func (j *Journal) RecordCopies(ctx context.Context, copies []Copy) error {
	if len(copies) == 0 {
		return nil
	}
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("journal: begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO copies (
        volume_id, label, source_path, dest_path, size_bytes, copied_at
    ) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("journal: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range copies {
		copiedAt := c.CopiedAt
		if copiedAt.IsZero() {
			copiedAt = time.Now()
		}
		if _, err := stmt.ExecContext(ctx, c.VolumeID, c.Label, c.SourcePath, c.DestPath, c.SizeBytes, formatTime(copiedAt)); err != nil {
			return fmt.Errorf("journal: insert %s: %w", c.DestPath, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("journal: commit: %w", err)
	}
	return nil
}

// MarkReclaimed stamps every live row whose destination is destPath and
// returns how many rows changed.
func (j *Journal) MarkReclaimed(ctx context.Context, destPath string, at time.Time) (int64, error) {
	res, err := j.db.ExecContext(ctx,
		`UPDATE copies SET reclaimed_at = ? WHERE dest_path = ? AND reclaimed_at IS NULL`,
		formatTime(at), destPath)
	if err != nil {
		return 0, fmt.Errorf("journal: mark reclaimed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("journal: rows affected: %w", err)
	}
	return n, nil
}

// Recent returns up to limit copies, newest first. limit <= 0 means 50.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Copy, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, `SELECT id, volume_id, label, source_path, dest_path, size_bytes, copied_at, reclaimed_at
        FROM copies ORDER BY copied_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: query recent: %w", err)
	}
	defer rows.Close()

	var out []Copy
	for rows.Next() {
		var (
			c         Copy
			copiedAt  string
			reclaimed sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.VolumeID, &c.Label, &c.SourcePath, &c.DestPath, &c.SizeBytes, &copiedAt, &reclaimed); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		c.CopiedAt = parseTime(copiedAt)
		if reclaimed.Valid {
			t := parseTime(reclaimed.String)
			c.ReclaimedAt = &t
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: iterate: %w", err)
	}
	return out, nil
}

// Stats summarizes every row in the journal.
func (j *Journal) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	row := j.db.QueryRowContext(ctx, `SELECT
        COUNT(1),
        COALESCE(SUM(CASE WHEN reclaimed_at IS NOT NULL THEN 1 ELSE 0 END), 0),
        COALESCE(SUM(size_bytes), 0),
        COALESCE(SUM(CASE WHEN reclaimed_at IS NULL THEN size_bytes ELSE 0 END), 0)
        FROM copies`)
	if err := row.Scan(&s.Copies, &s.Reclaimed, &s.CopiedBytes, &s.LiveBytes); err != nil {
		return s, fmt.Errorf("journal: stats: %w", err)
	}
	return s, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ReclaimHook marks journal rows reclaimed as the reclaimer deletes their
// destination files. Journal failures are logged and never stop reclamation.
func (j *Journal) ReclaimHook(logger *slog.Logger) reclaim.DeleteHook {
	logger = logging.NewComponentLogger(logger, "journal")
	return func(ctx context.Context, entry backupstore.Entry) {
		if _, err := j.MarkReclaimed(ctx, entry.Path, time.Now()); err != nil {
			logging.WarnWithContext(logger, "journal reclaim update failed", "journal_reclaim_failed",
				logging.String(logging.FieldPath, entry.Path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "journal shows a deleted file as live"),
			)
		}
	}
}
