package envelope

// Ring is a fixed-capacity circular buffer of float64 values. Once full, each
// push overwrites the oldest entry, so envelope history never grows without
// bound however long a session runs.
type Ring struct {
	values []float64
	head   int // next write position
	count  int
}

// NewRing creates a Ring holding at most capacity values.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring{values: make([]float64, capacity)}
}

// Push appends a value, overwriting the oldest entry when full.
func (r *Ring) Push(v float64) {
	r.values[r.head] = v
	r.head = (r.head + 1) % len(r.values)
	if r.count < len(r.values) {
		r.count++
	}
}

// Len returns the number of values currently stored.
func (r *Ring) Len() int {
	return r.count
}

// Cap returns the fixed capacity.
func (r *Ring) Cap() int {
	return len(r.values)
}

// Last returns the most recently pushed value, or 0 if empty.
func (r *Ring) Last() float64 {
	if r.count == 0 {
		return 0
	}
	return r.values[(r.head-1+len(r.values))%len(r.values)]
}

// Snapshot returns the stored values oldest-first in a new slice.
func (r *Ring) Snapshot() []float64 {
	out := make([]float64, r.count)
	start := (r.head - r.count + len(r.values)) % len(r.values)
	for i := 0; i < r.count; i++ {
		out[i] = r.values[(start+i)%len(r.values)]
	}
	return out
}

// Reset discards all stored values.
func (r *Ring) Reset() {
	r.head = 0
	r.count = 0
}
