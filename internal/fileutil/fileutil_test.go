package fileutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.pdf")
	dst := filepath.Join(dir, "out", "nested", "dst.pdf")

	content := []byte("hello world")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}
	mtime := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	if err := os.Chtimes(src, mtime, mtime); err != nil {
		t.Fatal(err)
	}

	written, digest, err := CopyFileVerified(src, dst)
	if err != nil {
		t.Fatal(err)
	}
	if written != dst {
		t.Fatalf("written = %q, want %q", written, dst)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(mtime) {
		t.Fatalf("mtime = %v, want %v", info.ModTime(), mtime)
	}

	hashed, size, err := HashFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if hashed != digest || size != int64(len(content)) {
		t.Fatalf("HashFile = %x/%d, copy digest %x", hashed, size, digest)
	}
}

func TestCopyFileVerifiedNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "report.txt")
	if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "report_1.txt"), []byte("older"), 0o644); err != nil {
		t.Fatal(err)
	}

	written, _, err := CopyFileVerified(src, dst)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "report_2.txt"); written != want {
		t.Fatalf("written = %q, want %q", written, want)
	}
	if got, _ := os.ReadFile(dst); string(got) != "old" {
		t.Fatalf("original destination was modified: %q", got)
	}
}

func TestCopyFileVerifiedMissingSource(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := CopyFileVerified(filepath.Join(dir, "missing"), filepath.Join(dir, "dst")); err == nil {
		t.Fatal("expected error for missing source")
	}
	if _, err := os.Stat(filepath.Join(dir, "dst")); !os.IsNotExist(err) {
		t.Fatalf("destination should not exist, stat err = %v", err)
	}
}

func TestCreateUniqueWithoutExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "README")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	f, name, err := CreateUnique(path, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	_ = f.Close()
	if name != filepath.Join(dir, "README_1") {
		t.Fatalf("name = %q", name)
	}
}
