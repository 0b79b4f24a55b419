package preflight

import "os"

// Windows ACLs are not reflected in the mode bits, so probe with a real file.
func checkWritable(path string) error {
	f, err := os.CreateTemp(path, ".copycat-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
