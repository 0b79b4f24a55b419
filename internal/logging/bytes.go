package logging

import "github.com/dustin/go-humanize"

// FormatBytes renders a byte count with binary units (1.0 GiB), matching how
// the reclamation limits are configured.
func FormatBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}
