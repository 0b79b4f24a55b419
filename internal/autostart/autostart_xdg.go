//go:build !windows

package autostart

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DesktopPath is the XDG autostart entry, honoring XDG_CONFIG_HOME.
func DesktopPath() (string, error) {
	base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "autostart", Name+".desktop"), nil
}

func desktopEntry(exe string) []byte {
	var buf bytes.Buffer
	buf.WriteString("[Desktop Entry]\n")
	buf.WriteString("Type=Application\n")
	buf.WriteString("Name=" + Name + "\n")
	buf.WriteString("Comment=Back up documents from removable drives\n")
	buf.WriteString("Exec=" + CommandLine(exe, RunArgs...) + "\n")
	buf.WriteString("Terminal=false\n")
	buf.WriteString("NoDisplay=true\n")
	buf.WriteString("X-GNOME-Autostart-enabled=true\n")
	return buf.Bytes()
}

// Install writes the autostart desktop entry for exe.
func Install(exe string) error {
	path, err := DesktopPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create autostart dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, desktopEntry(exe), 0o644); err != nil {
		return fmt.Errorf("write desktop entry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("install desktop entry: %w", err)
	}
	return nil
}

// Uninstall removes the desktop entry. A missing entry is not an error.
func Uninstall() error {
	path, err := DesktopPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove desktop entry: %w", err)
	}
	return nil
}

// Installed reports whether the desktop entry exists and what it launches.
func Installed() (Status, error) {
	path, err := DesktopPath()
	if err != nil {
		return Status{}, err
	}
	status := Status{Location: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return status, nil
		}
		return status, fmt.Errorf("read desktop entry: %w", err)
	}
	status.Installed = true
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if cmd, ok := strings.CutPrefix(strings.TrimSpace(scanner.Text()), "Exec="); ok {
			status.Command = cmd
			break
		}
	}
	return status, nil
}
