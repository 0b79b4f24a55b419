package volume

import (
	"context"
	"strings"
)

// Mount is a mounted removable volume reported by an Enumerator.
type Mount struct {
	Path  string
	Label string
}

// Enumerator lists the removable volumes currently mounted.
type Enumerator interface {
	List(ctx context.Context) ([]Mount, error)
}

// SystemEnumerator enumerates removable volumes using the host OS.
//
// On Windows it walks drive letters and keeps DRIVE_REMOVABLE ones. Elsewhere
// it treats every mount point directly below one of the media roots as a
// removable volume.
type SystemEnumerator struct {
	exclude map[string]struct{}
	roots   []string
}

// NewSystemEnumerator builds an enumerator. excludeDrives holds drive letters
// (Windows) or mount directory names (elsewhere) that are never reported.
func NewSystemEnumerator(excludeDrives, mediaRoots []string) *SystemEnumerator {
	exclude := make(map[string]struct{}, len(excludeDrives))
	for _, d := range excludeDrives {
		d = strings.ToUpper(strings.TrimRight(strings.TrimSpace(d), ":\\/"))
		if d != "" {
			exclude[d] = struct{}{}
		}
	}
	return &SystemEnumerator{exclude: exclude, roots: append([]string(nil), mediaRoots...)}
}

func (e *SystemEnumerator) excluded(name string) bool {
	_, ok := e.exclude[strings.ToUpper(name)]
	return ok
}
