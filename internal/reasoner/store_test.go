package reasoner

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariableStoreClamping(t *testing.T) {
	s := NewVariableStore(2)
	s.Set(0, 1.7)
	assert.Equal(t, float32(1), s.Value(0), "writes clamp above 1")
	s.Set(0, -0.4)
	assert.Equal(t, float32(0), s.Value(0), "writes clamp below 0")

	s.Set(1, 0.5)
	moved := s.ClampStep(1, 0.2)
	assert.InDelta(t, 0.2, moved, 1e-6)
	assert.InDelta(t, 0.3, s.Value(1), 1e-6)

	// Overshooting step: only the clamped portion counts as movement.
	moved = s.ClampStep(1, 1.0)
	assert.InDelta(t, 0.3, moved, 1e-6)
	assert.Equal(t, float32(0), s.Value(1))

	// Negative delta moves the value up.
	moved = s.ClampStep(1, -2.0)
	assert.InDelta(t, 1.0, moved, 1e-6)
	assert.Equal(t, float32(1), s.Value(1))
}

func TestVariableStoreFromSeeds(t *testing.T) {
	s := NewVariableStoreFrom([]float32{0.25, 3, -1})
	assert.Equal(t, []float32{0.25, 1, 0}, s.Snapshot())
	assert.Equal(t, 3, s.Len())
	assert.False(t, s.Concurrent())
}

func TestAtomicVariableStoreMatchesSerial(t *testing.T) {
	serial := NewVariableStoreFrom([]float32{0.9, 0.1})
	at := NewAtomicVariableStoreFrom([]float32{0.9, 0.1})
	assert.True(t, at.Concurrent())

	for _, delta := range []float32{0.3, -0.05, 2.0, -2.0} {
		ms := serial.ClampStep(0, delta)
		ma := at.ClampStep(0, delta)
		assert.InDelta(t, ms, ma, 1e-6)
		assert.InDelta(t, serial.Value(0), at.Value(0), 1e-6)
	}
}

func TestAtomicVariableStoreConcurrentSteps(t *testing.T) {
	s := NewAtomicVariableStoreFrom([]float32{1.0})

	const workers = 8
	const steps = 1000
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < steps; i++ {
				s.ClampStep(0, 0.0001)
			}
		}()
	}
	wg.Wait()

	// 8000 steps of 1e-4 from 1.0 lands on the lower bound; no update may
	// be lost or escape [0,1].
	v := s.Value(0)
	assert.GreaterOrEqual(t, v, float32(0))
	assert.InDelta(t, 0.2, v, 1e-2)
}
