package scale_state

import (
	"fmt"
	"sync"
)

// Vector is the scale of the placed object on all three axes. Every write in
// this system moves all three components by the same delta, so the components
// only ever differ if the initial scale was non-uniform.
type Vector struct {
	X float64
	Y float64
	Z float64
}

// Bounds is the clamping policy applied on every write. Max <= 0 means
// unbounded above.
type Bounds struct {
	Min float64
	Max float64
}

type stateImpl struct {
	mu    sync.Mutex
	scale Vector
}

type Config struct {
	Initial Vector
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	return &stateImpl{
		scale: cfg.Initial,
	}, nil
}

func (s *stateImpl) Get() Vector {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.scale
}

// Apply adds delta to every component and clamps each one under the given
// bounds. The read-modify-write runs under the mutex, so two concurrent
// applies can never interleave or tear the vector.
func (s *stateImpl) Apply(delta float64, bounds Bounds) Vector {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scale.X = clamp(s.scale.X+delta, bounds)
	s.scale.Y = clamp(s.scale.Y+delta, bounds)
	s.scale.Z = clamp(s.scale.Z+delta, bounds)

	return s.scale
}

func clamp(v float64, bounds Bounds) float64 {
	if v < bounds.Min {
		return bounds.Min
	}

	if bounds.Max > 0 && v > bounds.Max {
		return bounds.Max
	}

	return v
}
