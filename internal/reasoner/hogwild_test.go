package reasoner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"softlogic/internal/term"
)

func TestParallelRequiresConcurrentStore(t *testing.T) {
	hinge := mustHinge(t, []int{0}, []float32{1}, 0, 1, 1)
	cfg := DefaultConfig()
	cfg.Workers = 4

	_, err := New(cfg, []term.ObjectiveTerm{hinge}, NewVariableStore(1))
	assert.Error(t, err, "plain store must be rejected for the relaxed scheduler")

	_, err = New(cfg, []term.ObjectiveTerm{hinge}, NewAtomicVariableStore(1))
	assert.NoError(t, err)
}

func TestParallelRunConverges(t *testing.T) {
	defer goleak.VerifyNone(t)

	// Many independent hinges over a shared arena; the relaxed scheduler
	// must reach the same fixed point as the serial scan: every variable
	// driven below its hinge threshold, where the term deactivates.
	const n = 64
	terms := make([]term.ObjectiveTerm, 0, n)
	initial := make([]float32, n)
	for i := 0; i < n; i++ {
		h, err := term.NewHyperplane([]int{i}, []float32{1}, 0.25)
		require.NoError(t, err)
		hinge, err := term.NewHingeLoss(h, 1, 2.0)
		require.NoError(t, err)
		terms = append(terms, hinge)
		initial[i] = 0.3
	}
	store := NewAtomicVariableStoreFrom(initial)

	cfg := DefaultConfig()
	cfg.Workers = 4
	cfg.MaxEpochs = 500
	cfg.Tolerance = 1e-5
	r, err := New(cfg, terms, store)
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Canceled)
	assert.True(t, res.Converged)
	assert.InDelta(t, 0, res.FinalObjective, 1e-4)

	for i := 0; i < n; i++ {
		v := store.Value(i)
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(0.26), "variable %d should settle at or below its hinge threshold", i)
	}
}

func TestParallelCancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	hinge := mustHinge(t, []int{0}, []float32{1}, -2, 1, 0.0001)
	store := NewAtomicVariableStoreFrom([]float32{1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := DefaultConfig()
	cfg.Workers = 2
	r, err := New(cfg, []term.ObjectiveTerm{hinge}, store)
	require.NoError(t, err)

	res, err := r.Run(ctx)
	require.NoError(t, err)
	assert.True(t, res.Canceled)
}
