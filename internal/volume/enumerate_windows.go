//go:build windows

package volume

import (
	"context"

	"golang.org/x/sys/windows"
)

// List returns every removable drive letter that is not excluded.
func (e *SystemEnumerator) List(ctx context.Context) ([]Mount, error) {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return nil, &Error{Kind: KindEnumeration, Op: "list drives", Err: err}
	}

	var mounts []Mount
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return mounts, err
		}
		letter := string(rune('A' + i))
		if e.excluded(letter) {
			continue
		}
		root := letter + `:\`
		p, err := windows.UTF16PtrFromString(root)
		if err != nil {
			continue
		}
		if windows.GetDriveType(p) != windows.DRIVE_REMOVABLE {
			continue
		}
		label := volumeLabel(root)
		if label == "" {
			label = IdentityPrefix + letter
		}
		mounts = append(mounts, Mount{Path: root, Label: label})
	}
	return mounts, nil
}
