//go:build windows

package autostart

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`

func location() string { return `HKCU\` + runKeyPath + `\` + Name }

// Install registers exe to start at login under the current user's Run key.
func Install(exe string) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open run key: %w", err)
	}
	defer key.Close()

	if err := key.SetStringValue(Name, CommandLine(exe, RunArgs...)); err != nil {
		return fmt.Errorf("set run value: %w", err)
	}
	return nil
}

// Uninstall removes the Run value. A missing value is not an error.
func Uninstall() error {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open run key: %w", err)
	}
	defer key.Close()

	if err := key.DeleteValue(Name); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("delete run value: %w", err)
	}
	return nil
}

// Installed reports whether the Run value exists and what it launches.
func Installed() (Status, error) {
	status := Status{Location: location()}
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return status, nil
		}
		return status, fmt.Errorf("open run key: %w", err)
	}
	defer key.Close()

	value, _, err := key.GetStringValue(Name)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return status, nil
		}
		return status, fmt.Errorf("read run value: %w", err)
	}
	status.Installed = true
	status.Command = value
	return status, nil
}
