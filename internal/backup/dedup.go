package backup

import "sync"

// DefaultDigestCapacity bounds the content digests remembered per process.
const DefaultDigestCapacity = 10000

type digestKey struct {
	sum  uint64
	size int64
}

// Digests remembers content hashes of copied files for the life of the
// process. When full the oldest digest is evicted first.
type Digests struct {
	mu       sync.Mutex
	capacity int
	order    []digestKey
	set      map[digestKey]struct{}
}

func NewDigests(capacity int) *Digests {
	if capacity <= 0 {
		capacity = DefaultDigestCapacity
	}
	return &Digests{
		capacity: capacity,
		set:      make(map[digestKey]struct{}, capacity),
	}
}

// Seen reports whether a file with this digest and size was already copied.
func (d *Digests) Seen(sum uint64, size int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.set[digestKey{sum, size}]
	return ok
}

// Remember records a digest, evicting the oldest entry when at capacity.
func (d *Digests) Remember(sum uint64, size int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := digestKey{sum, size}
	if _, ok := d.set[key]; ok {
		return
	}
	if len(d.order) >= d.capacity {
		oldest := d.order[0]
		d.order = d.order[1:]
		delete(d.set, oldest)
	}
	d.order = append(d.order, key)
	d.set[key] = struct{}{}
}

func (d *Digests) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.order)
}
