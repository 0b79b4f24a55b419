//go:build windows

package backupstore

import "golang.org/x/sys/windows"

func realStatfs(path string) (uint64, uint64, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, 0, err
	}
	var available, total, totalFree uint64
	if err := windows.GetDiskFreeSpaceEx(p, &available, &total, &totalFree); err != nil {
		return 0, 0, err
	}
	return total, available, nil
}
