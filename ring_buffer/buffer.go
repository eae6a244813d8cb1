package ring_buffer

// bufImpl keeps the most recent samples so the capture loop can prepend the
// audio heard just before voice detection triggered. Without it the first
// syllable of a command is usually lost.
type bufImpl struct {
	buffer []int16
	head   int
	filled int
}

func New(size int) *bufImpl {
	return &bufImpl{
		buffer: make([]int16, size),
	}
}

func (r *bufImpl) Add(samples []int16) {
	for _, s := range samples {
		r.buffer[r.head] = s
		r.head = (r.head + 1) % len(r.buffer)

		if r.filled < len(r.buffer) {
			r.filled++
		}
	}
}

// Read returns the buffered samples oldest-first. Before the buffer has
// wrapped, only the samples actually written are returned.
func (r *bufImpl) Read() []int16 {
	samples := make([]int16, r.filled)

	start := (r.head - r.filled + len(r.buffer)) % len(r.buffer)
	for i := 0; i < r.filled; i++ {
		samples[i] = r.buffer[(start+i)%len(r.buffer)]
	}

	return samples
}

func (r *bufImpl) Clear() {
	r.head = 0
	r.filled = 0
}
