//go:build !windows

package volume

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// List returns the mount points found directly below the configured media
// roots. A root that does not exist is skipped; any other failure aborts the
// listing with a typed error.
func (e *SystemEnumerator) List(ctx context.Context) ([]Mount, error) {
	var mounts []Mount
	for _, root := range e.roots {
		if err := ctx.Err(); err != nil {
			return mounts, err
		}
		found, err := e.listRoot(root)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, wrapError("list drives", root, KindEnumeration, err)
		}
		mounts = append(mounts, found...)
	}
	return mounts, nil
}

func (e *SystemEnumerator) listRoot(root string) ([]Mount, error) {
	var rootStat unix.Stat_t
	if err := unix.Stat(root, &rootStat); err != nil {
		return nil, &fs.PathError{Op: "stat", Path: root, Err: err}
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var mounts []Mount
	for _, entry := range entries {
		if !entry.IsDir() || e.excluded(entry.Name()) {
			continue
		}
		path := filepath.Join(root, entry.Name())
		var st unix.Stat_t
		if err := unix.Stat(path, &st); err != nil {
			// A volume that vanished or is unreadable mid-scan is simply absent this tick.
			continue
		}
		if st.Dev == rootStat.Dev {
			continue
		}
		mounts = append(mounts, Mount{Path: path, Label: entry.Name()})
	}
	return mounts, nil
}
