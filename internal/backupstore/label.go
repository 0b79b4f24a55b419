package backupstore

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SanitizeLabel turns a volume label into a single safe path segment. Labels
// are NFC-normalized so the same stick produces one folder whether the OS
// reports a composed or decomposed name.
func SanitizeLabel(label string) string {
	label = norm.NFC.String(strings.TrimSpace(label))
	var b strings.Builder
	for _, r := range label {
		switch {
		case r < 0x20, strings.ContainsRune(`<>:"/\|?*`, r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), ". ")
	if out == "" {
		return "UNLABELED"
	}
	return out
}
