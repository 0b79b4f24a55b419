//go:build linux

package volume

import (
	"os"
	"path/filepath"
)

const (
	mountInfoPath = "/proc/self/mountinfo"
	byUUIDDir     = "/dev/disk/by-uuid"
)

func readSerial(mountPath string) (uint32, error) {
	f, err := os.Open(mountInfoPath)
	if err != nil {
		return 0, wrapError("read serial", mountPath, KindUnsupported, err)
	}
	defer f.Close()

	entry, err := findMount(f, mountPath)
	if err != nil {
		return 0, &Error{Kind: KindNotFound, Op: "read serial", Path: mountPath, Err: err}
	}
	return serialFromUUIDLinks(byUUIDDir, entry.Source, mountPath)
}

// serialFromUUIDLinks finds the by-uuid symlink pointing at device and parses
// its name as a filesystem serial.
func serialFromUUIDLinks(dir, device, mountPath string) (uint32, error) {
	target, err := filepath.EvalSymlinks(device)
	if err != nil {
		return 0, wrapError("read serial", mountPath, KindNotFound, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, wrapError("read serial", mountPath, KindUnsupported, err)
	}
	for _, entry := range entries {
		resolved, err := filepath.EvalSymlinks(filepath.Join(dir, entry.Name()))
		if err != nil || resolved != target {
			continue
		}
		if serial, ok := parseFSUUID(entry.Name()); ok {
			return serial, nil
		}
		return 0, unsupported("read serial", mountPath)
	}
	return 0, &Error{Kind: KindNotFound, Op: "read serial", Path: mountPath, Err: os.ErrNotExist}
}
