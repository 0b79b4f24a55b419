package volume

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

// mountEntry is one line of /proc/self/mountinfo.
type mountEntry struct {
	MountPoint string
	FSType     string
	Source     string
}

// findMount returns the entry mounted at mountPoint. Later lines win because
// they stack on top of earlier mounts at the same path.
func findMount(r io.Reader, mountPoint string) (mountEntry, error) {
	want := filepath.Clean(mountPoint)
	var found mountEntry
	ok := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		entry, valid := parseMountInfoLine(scanner.Text())
		if !valid || entry.MountPoint != want {
			continue
		}
		found, ok = entry, true
	}
	if err := scanner.Err(); err != nil {
		return mountEntry{}, fmt.Errorf("read mountinfo: %w", err)
	}
	if !ok {
		return mountEntry{}, fmt.Errorf("no mount at %s", want)
	}
	return found, nil
}

func parseMountInfoLine(line string) (mountEntry, bool) {
	left, right, ok := strings.Cut(line, " - ")
	if !ok {
		return mountEntry{}, false
	}
	pre := strings.Fields(left)
	post := strings.Fields(right)
	if len(pre) < 5 || len(post) < 2 {
		return mountEntry{}, false
	}
	return mountEntry{
		MountPoint: unescapeMountField(pre[4]),
		FSType:     post[0],
		Source:     unescapeMountField(post[1]),
	}, true
}

// unescapeMountField decodes the octal escapes (\040 for space) the kernel
// uses in mountinfo paths.
func unescapeMountField(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+4 <= len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
