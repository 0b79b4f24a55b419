package autostart

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Name identifies the startup entry on every platform.
const Name = "copycat"

// RunArgs are appended to the executable in the startup entry.
var RunArgs = []string{"run"}

// Status describes the current startup entry.
type Status struct {
	Installed bool   `json:"installed"`
	Location  string `json:"location"`
	Command   string `json:"command,omitempty"`
}

// CommandLine quotes exe and appends args, the form both the Windows Run key
// and XDG Exec lines accept.
func CommandLine(exe string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, `"`+exe+`"`)
	parts = append(parts, args...)
	return strings.Join(parts, " ")
}

// Executable resolves the running binary, following symlinks.
func Executable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}
