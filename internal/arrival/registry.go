package arrival

import (
	"sync"
	"time"
)

// Volume is a removable volume observed by the poll loop.
type Volume struct {
	Identity   string
	MountPath  string
	Label      string
	FirstSeen  time.Time
	LastAccess time.Time
}

// Registry holds the volumes currently mounted. A volume leaves it when it
// is unmounted or, once over capacity, oldest-inserted first.
type Registry struct {
	mu       sync.Mutex
	capacity int
	order    []string
	volumes  map[string]*Volume
}

// NewRegistry returns an empty registry. capacity <= 0 selects DefaultCapacity.
func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{capacity: capacity, volumes: make(map[string]*Volume)}
}

// Observe records a detection of identity. A repeat detection only refreshes
// LastAccess and the mount details; it does not change eviction order.
func (r *Registry) Observe(identity, mountPath, label string, now time.Time) Volume {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.volumes[identity]; ok {
		v.LastAccess = now
		v.MountPath = mountPath
		if label != "" {
			v.Label = label
		}
		return *v
	}

	v := &Volume{Identity: identity, MountPath: mountPath, Label: label, FirstSeen: now, LastAccess: now}
	r.volumes[identity] = v
	r.order = append(r.order, identity)
	for len(r.order) > r.capacity {
		delete(r.volumes, r.order[0])
		r.order = r.order[1:]
	}
	return *v
}

// AtMount returns the volumes last seen at mountPath.
func (r *Registry) AtMount(mountPath string) []Volume {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Volume
	for _, id := range r.order {
		if v := r.volumes[id]; v.MountPath == mountPath {
			out = append(out, *v)
		}
	}
	return out
}

// Remove drops identity from the registry. It reports whether the volume was
// registered.
func (r *Registry) Remove(identity string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.volumes[identity]; !ok {
		return false
	}
	delete(r.volumes, identity)
	for i, id := range r.order {
		if id == identity {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the volume registered under identity.
func (r *Registry) Get(identity string) (Volume, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.volumes[identity]
	if !ok {
		return Volume{}, false
	}
	return *v, true
}

// Snapshot returns the registered volumes in insertion order.
func (r *Registry) Snapshot() []Volume {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Volume, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.volumes[id])
	}
	return out
}
