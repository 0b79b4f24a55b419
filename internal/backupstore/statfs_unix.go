//go:build !windows

package backupstore

import "golang.org/x/sys/unix"

func realStatfs(path string) (uint64, uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, 0, err
	}
	bsize := uint64(st.Bsize)
	return st.Blocks * bsize, uint64(st.Bavail) * bsize, nil
}
