package arrival

import (
	"sort"
)

// Tracker computes which mount paths appeared or disappeared between polls.
// It is owned by a single poll loop and is not safe for concurrent use.
type Tracker struct {
	known map[string]struct{}
}

// NewTracker returns a tracker with no known mounts.
func NewTracker() *Tracker {
	return &Tracker{known: make(map[string]struct{})}
}

// Poll diffs current against the mounts seen on the previous call and then
// remembers current. Both results are sorted and never share an element.
func (t *Tracker) Poll(current []string) (arrived, departed []string) {
	next := make(map[string]struct{}, len(current))
	for _, path := range current {
		if path == "" {
			continue
		}
		next[path] = struct{}{}
	}

	for path := range next {
		if _, ok := t.known[path]; !ok {
			arrived = append(arrived, path)
		}
	}
	for path := range t.known {
		if _, ok := next[path]; !ok {
			departed = append(departed, path)
		}
	}
	t.known = next

	sort.Strings(arrived)
	sort.Strings(departed)
	return arrived, departed
}

// Prime marks current as already known without reporting arrivals, so
// volumes mounted before startup are not processed.
func (t *Tracker) Prime(current []string) {
	t.Poll(current)
}

// Known returns the mount paths seen on the last poll, sorted.
func (t *Tracker) Known() []string {
	out := make([]string, 0, len(t.known))
	for path := range t.known {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}
