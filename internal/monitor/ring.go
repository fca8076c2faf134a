package monitor

import "sync"

// Ring keeps the most recent snapshots in a fixed-size buffer. It is safe for
// concurrent use: the sampling job appends while API handlers read.
type Ring struct {
	mu    sync.RWMutex
	buf   []Snapshot
	next  int
	count int
}

// NewRing allocates a ring holding at most size snapshots.
func NewRing(size int) *Ring {
	if size <= 0 {
		size = 1200
	}
	return &Ring{buf: make([]Snapshot, size)}
}

// Push appends a snapshot, evicting the oldest when full.
func (r *Ring) Push(snap Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = snap
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Latest returns the most recent snapshot and whether one exists.
func (r *Ring) Latest() (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.count == 0 {
		return Snapshot{}, false
	}
	idx := (r.next - 1 + len(r.buf)) % len(r.buf)
	return r.buf[idx], true
}

// All returns the buffered snapshots in chronological order.
func (r *Ring) All() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Snapshot, 0, r.count)
	start := r.next - r.count
	for i := 0; i < r.count; i++ {
		out = append(out, r.buf[(start+i+len(r.buf))%len(r.buf)])
	}
	return out
}

// Len reports the number of buffered snapshots.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}
