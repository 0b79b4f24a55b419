package arrival

import "sync"

// DefaultCapacity bounds the seen set and the volume registry.
const DefaultCapacity = 100

// SeenSet remembers device identities already processed during this run.
// When full, the oldest-inserted identities are dropped; lookups do not
// refresh an entry's position.
type SeenSet struct {
	mu       sync.Mutex
	capacity int
	order    []string
	members  map[string]struct{}
}

// NewSeenSet returns an empty set. capacity <= 0 selects DefaultCapacity.
func NewSeenSet(capacity int) *SeenSet {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &SeenSet{capacity: capacity, members: make(map[string]struct{}, capacity)}
}

// Contains reports whether id has been added and not yet evicted.
func (s *SeenSet) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.members[id]
	return ok
}

// Add inserts id and returns false when it was already present.
func (s *SeenSet) Add(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[id]; ok {
		return false
	}
	s.members[id] = struct{}{}
	s.order = append(s.order, id)
	if overflow := len(s.order) - s.capacity; overflow > 0 {
		for _, old := range s.order[:overflow] {
			delete(s.members, old)
		}
		s.order = append(s.order[:0:0], s.order[overflow:]...)
	}
	return true
}

func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Items returns the retained identities, oldest first.
func (s *SeenSet) Items() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}
