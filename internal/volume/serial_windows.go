//go:build windows

package volume

import (
	"errors"

	"golang.org/x/sys/windows"
)

func readSerial(mountPath string) (uint32, error) {
	root, err := windows.UTF16PtrFromString(driveRoot(mountPath))
	if err != nil {
		return 0, &Error{Kind: KindNotFound, Op: "read serial", Path: mountPath, Err: err}
	}
	var serial uint32
	if err := windows.GetVolumeInformation(root, nil, 0, &serial, nil, nil, nil, 0); err != nil {
		return 0, classifyWin32("read serial", mountPath, err)
	}
	return serial, nil
}

// volumeLabel returns the volume name, or "" when it cannot be read.
func volumeLabel(root string) string {
	p, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return ""
	}
	var name [windows.MAX_PATH + 1]uint16
	if err := windows.GetVolumeInformation(p, &name[0], uint32(len(name)), nil, nil, nil, nil, 0); err != nil {
		return ""
	}
	return windows.UTF16ToString(name[:])
}

func classifyWin32(op, path string, err error) error {
	switch {
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return &Error{Kind: KindPermission, Op: op, Path: path, Err: err}
	case errors.Is(err, windows.ERROR_NOT_READY), errors.Is(err, windows.ERROR_PATH_NOT_FOUND),
		errors.Is(err, windows.ERROR_FILE_NOT_FOUND), errors.Is(err, windows.ERROR_INVALID_DRIVE):
		return &Error{Kind: KindNotFound, Op: op, Path: path, Err: err}
	}
	return &Error{Kind: KindUnsupported, Op: op, Path: path, Err: err}
}

// driveRoot turns "E:", "E:\" or "E:\sub" into "E:\".
func driveRoot(mountPath string) string {
	if len(mountPath) >= 2 && mountPath[1] == ':' {
		return mountPath[:2] + `\`
	}
	return mountPath
}
