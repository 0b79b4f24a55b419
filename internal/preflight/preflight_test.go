package preflight

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"copycat/internal/reclaim"
	"copycat/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if CheckDirectoryAccess("test", f).Passed {
		t.Fatal("expected failure for file path")
	}
}

type fixedFree struct {
	free uint64
	err  error
}

func (f fixedFree) FreeBytes() (uint64, error) { return f.free, f.err }

func TestCheckFreeSpace(t *testing.T) {
	policy := reclaim.Policy{MinFreeBytes: 1 << 30}
	if !CheckFreeSpace(fixedFree{free: 2 << 30}, policy).Passed {
		t.Fatal("expected pass above floor")
	}
	if CheckFreeSpace(fixedFree{free: 1 << 20}, policy).Passed {
		t.Fatal("expected failure below floor")
	}
	if CheckFreeSpace(fixedFree{err: errors.New("statfs broke")}, policy).Passed {
		t.Fatal("expected failure when free space is unknown")
	}
}

func TestCheckMediaRoots(t *testing.T) {
	dir := t.TempDir()
	if !CheckMediaRoots([]string{filepath.Join(dir, "missing"), dir}).Passed {
		t.Fatal("one present root should pass")
	}
	if CheckMediaRoots([]string{filepath.Join(dir, "missing")}).Passed {
		t.Fatal("no present roots should fail")
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSpace(0, 50, 90), testsupport.WithEnsureDirs())
	results := RunAll(cfg)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %+v", results)
	}
	failed := Failed(results)
	// The test media root is never created.
	if len(failed) != 1 || failed[0].Name != "Media roots" {
		t.Fatalf("unexpected failures %+v", failed)
	}
}
