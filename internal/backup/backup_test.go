package backup_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"copycat/internal/backup"
	"copycat/internal/config"
	"copycat/internal/logging"
	"copycat/internal/volume"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func relPaths(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	sort.Strings(out)
	return out
}

func newCopier(t *testing.T, dedup bool) *backup.Copier {
	t.Helper()
	filter, err := backup.NewFilter(
		[]string{".pdf", ".docx", "txt"},
		16,
		[]string{"System Volume Information/**", "$RECYCLE.BIN/**", "**/*.tmp.txt"},
	)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	var digests *backup.Digests
	if dedup {
		digests = backup.NewDigests(0)
	}
	return backup.New(filter, digests, logging.NewNop())
}

func TestCopyMatchingFilesFiltersAndKeepsLayout(t *testing.T) {
	src := t.TempDir()
	dest := filepath.Join(t.TempDir(), "KINGSTON", "2026-04-01")

	writeFile(t, filepath.Join(src, "report.PDF"), "pdf")
	writeFile(t, filepath.Join(src, "docs", "notes.txt"), "notes")
	writeFile(t, filepath.Join(src, "docs", "photo.raw"), "raw")
	writeFile(t, filepath.Join(src, "docs", "big.docx"), "this file is far too large")
	writeFile(t, filepath.Join(src, "docs", "scratch.tmp.txt"), "tmp")
	writeFile(t, filepath.Join(src, "system volume information", "IndexerVolumeGuid.txt"), "guid")
	writeFile(t, filepath.Join(src, "$RECYCLE.BIN", "S-1-5", "deleted.pdf"), "gone")

	copied, err := newCopier(t, false).CopyMatchingFiles(context.Background(), volume.Mount{Path: src, Label: "KINGSTON"}, dest)
	if err != nil {
		t.Fatalf("CopyMatchingFiles: %v", err)
	}
	if len(copied) != 2 {
		t.Fatalf("expected 2 copied files, got %d: %+v", len(copied), copied)
	}

	got := relPaths(t, dest)
	want := []string{"docs/notes.txt", "report.PDF"}
	if len(got) != len(want) {
		t.Fatalf("dest files = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dest files = %v, want %v", got, want)
		}
	}
}

func TestCopyMatchingFilesPreservesMtimeAndAvoidsOverwrite(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	writeFile(t, filepath.Join(src, "a.pdf"), "first")
	mtime := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := os.Chtimes(filepath.Join(src, "a.pdf"), mtime, mtime); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dest, "a.pdf"), "existing")

	copied, err := newCopier(t, false).CopyMatchingFiles(context.Background(), volume.Mount{Path: src}, dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(copied) != 1 || copied[0].Dest != filepath.Join(dest, "a_1.pdf") {
		t.Fatalf("unexpected result %+v", copied)
	}
	info, err := os.Stat(copied[0].Dest)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(mtime) {
		t.Fatalf("mtime = %v, want %v", info.ModTime(), mtime)
	}
	if data, _ := os.ReadFile(filepath.Join(dest, "a.pdf")); string(data) != "existing" {
		t.Fatalf("existing file overwritten: %q", data)
	}
}

func TestCopyMatchingFilesContentDedupAcrossVolumes(t *testing.T) {
	c := newCopier(t, true)
	first := t.TempDir()
	second := t.TempDir()
	writeFile(t, filepath.Join(first, "a.pdf"), "same")
	writeFile(t, filepath.Join(second, "renamed.pdf"), "same")
	writeFile(t, filepath.Join(second, "other.pdf"), "different")

	dest := t.TempDir()
	if _, err := c.CopyMatchingFiles(context.Background(), volume.Mount{Path: first}, filepath.Join(dest, "one")); err != nil {
		t.Fatal(err)
	}
	copied, err := c.CopyMatchingFiles(context.Background(), volume.Mount{Path: second}, filepath.Join(dest, "two"))
	if err != nil {
		t.Fatal(err)
	}

	var dupes, fresh int
	for _, f := range copied {
		if f.Duplicate {
			dupes++
			if f.Dest != "" || filepath.Base(f.Source) != "renamed.pdf" {
				t.Fatalf("unexpected duplicate %+v", f)
			}
		} else {
			fresh++
		}
	}
	if dupes != 1 || fresh != 1 {
		t.Fatalf("dupes=%d fresh=%d, want 1/1", dupes, fresh)
	}
	if got := relPaths(t, filepath.Join(dest, "two")); len(got) != 1 || got[0] != "other.pdf" {
		t.Fatalf("second volume dest = %v", got)
	}
}

func TestCopyMatchingFilesMissingVolume(t *testing.T) {
	_, err := newCopier(t, false).CopyMatchingFiles(context.Background(), volume.Mount{Path: filepath.Join(t.TempDir(), "gone")}, t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing volume root")
	}
}

func TestCopyMatchingFilesCancelled(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "a.pdf"), "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newCopier(t, false).CopyMatchingFiles(ctx, volume.Mount{Path: src}, t.TempDir()); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestFilter(t *testing.T) {
	f, err := backup.NewFilter([]string{".PDF", "docx"}, 0, []string{"System Volume Information/**"})
	if err != nil {
		t.Fatal(err)
	}
	if !f.MatchesExtension("Scan.pdf") || !f.MatchesExtension("a.DOCX") {
		t.Fatal("expected case-insensitive extension match")
	}
	if f.MatchesExtension("archive.pdf.zip") || f.MatchesExtension("pdf") {
		t.Fatal("unexpected extension match")
	}
	if !f.WithinSize(1 << 40) {
		t.Fatal("zero max size means unlimited")
	}
	if !f.ExcludedDir("System Volume Information") || !f.Excluded("SYSTEM VOLUME INFORMATION/x.pdf") {
		t.Fatal("expected exclusion to match case-insensitively")
	}
	if f.ExcludedDir("Documents") {
		t.Fatal("unexpected directory exclusion")
	}
}

func TestDigestsEvictOldest(t *testing.T) {
	d := backup.NewDigests(2)
	d.Remember(1, 10)
	d.Remember(2, 10)
	d.Remember(1, 10)
	d.Remember(3, 10)
	if d.Len() != 2 {
		t.Fatalf("Len = %d", d.Len())
	}
	if d.Seen(1, 10) {
		t.Fatal("oldest digest should be evicted")
	}
	if !d.Seen(2, 10) || !d.Seen(3, 10) {
		t.Fatal("newer digests should be retained")
	}
	if d.Seen(2, 11) {
		t.Fatal("size is part of the key")
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Filter.ContentDedup = true
	if _, err := backup.NewFromConfig(&cfg, logging.NewNop()); err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if _, err := backup.NewFromConfig(nil, nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}
