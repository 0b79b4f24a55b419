//go:build !windows

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInstallAndUninstall(t *testing.T) {
	env := setupCLITestEnv(t)
	desktop := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "autostart", "copycat.desktop")

	out, _, err := runCLI(t, []string{"install"}, env.configPath)
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	requireContains(t, out, desktop)
	requireContains(t, out, " run")

	out, _, err = runCLI(t, []string{"uninstall"}, env.configPath)
	if err != nil {
		t.Fatalf("uninstall: %v", err)
	}
	requireContains(t, out, "Removed autostart entry")
	if _, err := os.Stat(desktop); !os.IsNotExist(err) {
		t.Fatalf("desktop entry should be gone, stat err = %v", err)
	}

	out, _, err = runCLI(t, []string{"uninstall"}, env.configPath)
	if err != nil {
		t.Fatal(err)
	}
	requireContains(t, out, "not installed")
}
