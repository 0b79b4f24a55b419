package daemon_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"copycat/internal/daemon"
	"copycat/internal/logging"
	"copycat/internal/testsupport"
	"copycat/internal/volume"
)

type staticEnumerator struct {
	mu     sync.Mutex
	mounts []volume.Mount
}

func (e *staticEnumerator) set(mounts ...volume.Mount) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mounts = mounts
}

func (e *staticEnumerator) List(context.Context) ([]volume.Mount, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]volume.Mount(nil), e.mounts...), nil
}

type fixedIdentifier string

func (f fixedIdentifier) Resolve(string) (string, error) { return string(f), nil }

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	d, err := daemon.New(ctx, cfg, logging.NewNop(), daemon.WithEnumerator(&staticEnumerator{}))
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		_ = d.Close()
	})

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !d.Status().Running {
		t.Fatal("expected daemon to report running")
	}
	if !daemon.LockHeld(cfg.LockPath()) {
		t.Fatal("expected instance lock to be held")
	}

	// Second start should fail
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}
	if _, err := daemon.AcquireLock(cfg.LockPath()); !errors.Is(err, daemon.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("expected daemon to be stopped")
	}
	lock, err := daemon.AcquireLock(cfg.LockPath())
	if err != nil {
		t.Fatalf("lock should be free after Stop: %v", err)
	}
	_ = lock.Unlock()
}

func TestDaemonBacksUpArrivedVolume(t *testing.T) {
	// A zero free-space floor keeps the test independent of the host disk.
	cfg := testsupport.NewConfig(t, testsupport.WithSpace(0, 50, 90), testsupport.WithEnsureDirs())
	ctx := context.Background()

	media := filepath.Join(testsupport.BaseDir(cfg), "stick")
	testsupport.WriteFile(t, filepath.Join(media, "docs", "plan.pdf"), 128)
	testsupport.WriteFile(t, filepath.Join(media, "song.mp3"), 128)

	enum := &staticEnumerator{}
	d, err := daemon.New(ctx, cfg, logging.NewNop(),
		daemon.WithEnumerator(enum),
		daemon.WithIdentifier(fixedIdentifier("USB_0A1B2C3D")),
	)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		_ = d.Close()
	})
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	enum.set(volume.Mount{Path: media, Label: "STICK"})

	day := time.Now().Format("2006-01-02")
	want := filepath.Join(cfg.Paths.BackupDir, "STICK", day, "docs", "plan.pdf")
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(want); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", want)
		}
		time.Sleep(20 * time.Millisecond)
	}
	d.Stop()

	if _, err := os.Stat(filepath.Join(cfg.Paths.BackupDir, "STICK", day, "song.mp3")); !os.IsNotExist(err) {
		t.Fatalf("non-matching file should not be copied, stat err = %v", err)
	}

	status := d.Status()
	if len(status.Volumes) != 1 || status.Volumes[0].Identity != "USB_0A1B2C3D" {
		t.Fatalf("unexpected volumes %+v", status.Volumes)
	}
}

func TestOpenComponentsRejectsInvalidPolicy(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSpace(-1, 50, 90))
	if _, err := daemon.OpenComponents(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatal("expected invalid policy error")
	}
}
