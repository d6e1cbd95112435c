// Package reasoner implements the stochastic subgradient engine that drives
// both inference and weight learning: a variable arena holding current atom
// truth values and an epoch-based driver that walks the objective terms and
// applies diminishing gradient steps.
package reasoner

import "fmt"

// Store is the mutable variable arena the driver updates. Terms address
// variables by arena index and never own them; the store outlives any single
// reasoner run.
type Store interface {
	// Value returns the current value of the variable at index.
	Value(index int) float32
	Len() int
	// Set writes a value, clamped into [0,1].
	Set(index int, value float32)
	// ClampStep applies x := clamp(x - delta, 0, 1) and returns the
	// absolute change actually applied.
	ClampStep(index int, delta float32) float32
	// Concurrent reports whether ClampStep is safe to call from multiple
	// goroutines at once.
	Concurrent() bool
	// Snapshot copies the current values out.
	Snapshot() []float32
}

// clamp01 bounds a value into the unit interval; atom values are soft truth
// values and a subgradient step can overshoot either side.
func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// VariableStore is the default single-threaded arena: a dense float32 slice
// addressed by variable handle.
type VariableStore struct {
	values []float32
}

// NewVariableStore allocates an arena of n variables, all zero.
func NewVariableStore(n int) *VariableStore {
	return &VariableStore{values: make([]float32, n)}
}

// NewVariableStoreFrom allocates an arena seeded with the given values,
// clamped into [0,1].
func NewVariableStoreFrom(values []float32) *VariableStore {
	s := NewVariableStore(len(values))
	for i, v := range values {
		s.values[i] = clamp01(v)
	}
	return s
}

func (s *VariableStore) Value(index int) float32 { return s.values[index] }
func (s *VariableStore) Len() int                { return len(s.values) }
func (s *VariableStore) Concurrent() bool        { return false }

func (s *VariableStore) Set(index int, value float32) {
	s.values[index] = clamp01(value)
}

func (s *VariableStore) ClampStep(index int, delta float32) float32 {
	old := s.values[index]
	next := clamp01(old - delta)
	s.values[index] = next
	if next > old {
		return next - old
	}
	return old - next
}

func (s *VariableStore) Snapshot() []float32 {
	out := make([]float32, len(s.values))
	copy(out, s.values)
	return out
}

func (s *VariableStore) String() string {
	return fmt.Sprintf("VariableStore(%d variables)", len(s.values))
}
