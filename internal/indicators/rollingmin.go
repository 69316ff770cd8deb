package indicators

// RollingMin tracks the minimum over the last `window` values using a fixed
// ring buffer. Window sizes here are small (14), so a linear scan per update
// is cheaper than a monotonic deque.
type RollingMin struct {
	buf  []float64
	next int
	size int
}

// NewRollingMin builds a rolling minimum over the given window.
func NewRollingMin(window int) *RollingMin {
	return &RollingMin{buf: make([]float64, window)}
}

// Update pushes a value and returns the minimum of the current window.
func (r *RollingMin) Update(v float64) float64 {
	r.buf[r.next] = v
	r.next = (r.next + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}

	min := r.buf[0]
	for i := 1; i < r.size; i++ {
		if r.buf[i] < min {
			min = r.buf[i]
		}
	}
	return min
}

// Full reports whether the window has been filled.
func (r *RollingMin) Full() bool {
	return r.size == len(r.buf)
}
