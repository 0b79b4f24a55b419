//go:build !linux && !windows

package volume

func readSerial(mountPath string) (uint32, error) {
	return 0, unsupported("read serial", mountPath)
}
