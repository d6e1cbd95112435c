package reasoner

import (
	"math"
	"sync/atomic"
)

// AtomicVariableStore is the arena variant for the parallel scheduler.
// Values are float32 bits held in atomic uint32 cells; ClampStep is a
// compare-and-swap loop, so concurrent workers may apply steps against a
// slightly stale read but never lose an update.
type AtomicVariableStore struct {
	cells []atomic.Uint32
}

// NewAtomicVariableStore allocates an atomic arena of n variables, all zero.
func NewAtomicVariableStore(n int) *AtomicVariableStore {
	return &AtomicVariableStore{cells: make([]atomic.Uint32, n)}
}

// NewAtomicVariableStoreFrom allocates an atomic arena seeded with the given
// values, clamped into [0,1].
func NewAtomicVariableStoreFrom(values []float32) *AtomicVariableStore {
	s := NewAtomicVariableStore(len(values))
	for i, v := range values {
		s.cells[i].Store(math.Float32bits(clamp01(v)))
	}
	return s
}

func (s *AtomicVariableStore) Value(index int) float32 {
	return math.Float32frombits(s.cells[index].Load())
}

func (s *AtomicVariableStore) Len() int         { return len(s.cells) }
func (s *AtomicVariableStore) Concurrent() bool { return true }

func (s *AtomicVariableStore) Set(index int, value float32) {
	s.cells[index].Store(math.Float32bits(clamp01(value)))
}

func (s *AtomicVariableStore) ClampStep(index int, delta float32) float32 {
	for {
		oldBits := s.cells[index].Load()
		old := math.Float32frombits(oldBits)
		next := clamp01(old - delta)
		if s.cells[index].CompareAndSwap(oldBits, math.Float32bits(next)) {
			if next > old {
				return next - old
			}
			return old - next
		}
	}
}

func (s *AtomicVariableStore) Snapshot() []float32 {
	out := make([]float32, len(s.cells))
	for i := range s.cells {
		out[i] = s.Value(i)
	}
	return out
}
