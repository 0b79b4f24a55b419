package backup

import (
	"fmt"
	"path"
	"strings"

	"github.com/gobwas/glob"
	"golang.org/x/text/cases"
)

// Filter decides which files on a volume are worth copying. Extension and
// glob matching are case-insensitive since removable media is usually FAT or
// exFAT.
type Filter struct {
	extensions map[string]struct{}
	maxSize    int64
	excludes   []glob.Glob
	raw        []string
}

// NewFilter compiles exclusion globs. Patterns use '/' as the separator and
// are matched against paths relative to the volume root. maxSize <= 0 means
// no per-file limit.
func NewFilter(extensions []string, maxSize int64, excludeGlobs []string) (*Filter, error) {
	f := &Filter{
		extensions: make(map[string]struct{}, len(extensions)),
		maxSize:    maxSize,
	}
	for _, ext := range extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.extensions[fold(ext)] = struct{}{}
	}
	for _, pattern := range excludeGlobs {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(fold(pattern), '/')
		if err != nil {
			return nil, fmt.Errorf("compile exclude glob %q: %w", pattern, err)
		}
		f.excludes = append(f.excludes, g)
		f.raw = append(f.raw, pattern)
	}
	return f, nil
}

// ExcludedDir reports whether the walk should not descend into rel.
func (f *Filter) ExcludedDir(rel string) bool {
	rel = fold(rel)
	return f.matchesExclude(rel) || f.matchesExclude(rel+"/")
}

// Excluded reports whether the file at rel matches an exclusion glob.
func (f *Filter) Excluded(rel string) bool {
	return f.matchesExclude(fold(rel))
}

// MatchesExtension reports whether name carries one of the configured extensions.
func (f *Filter) MatchesExtension(name string) bool {
	ext := path.Ext(name)
	if ext == "" {
		return false
	}
	_, ok := f.extensions[fold(ext)]
	return ok
}

// WithinSize reports whether size is under the configured ceiling.
func (f *Filter) WithinSize(size int64) bool {
	return f.maxSize <= 0 || size <= f.maxSize
}

// Patterns returns the exclusion globs as configured.
func (f *Filter) Patterns() []string {
	return append([]string(nil), f.raw...)
}

func (f *Filter) matchesExclude(rel string) bool {
	for _, g := range f.excludes {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// fold applies Unicode case folding. Casers are stateful, so each call builds its own.
func fold(s string) string {
	return cases.Fold().String(s)
}
