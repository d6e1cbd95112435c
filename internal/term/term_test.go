package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// values is a minimal ValueReader over a slice.
type values []float32

func (v values) Value(i int) float32 { return v[i] }

func TestNewHyperplaneValidation(t *testing.T) {
	tests := []struct {
		name    string
		indices []int
		coeffs  []float32
		wantErr bool
	}{
		{"valid", []int{0, 2}, []float32{1, -1}, false},
		{"empty", nil, nil, true},
		{"zero coefficient", []int{0, 1}, []float32{1, 0}, true},
		{"length mismatch", []int{0, 1}, []float32{1}, true},
		{"negative index", []int{-1}, []float32{1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHyperplane(tt.indices, tt.coeffs, 0.5)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHyperplaneDot(t *testing.T) {
	h, err := NewHyperplane([]int{0, 1}, []float32{1, -2}, 0.25)
	require.NoError(t, err)

	vals := values{0.5, 0.5}
	assert.InDelta(t, 0.5-1.0-0.25, h.Dot(vals), 1e-6)
	assert.Equal(t, 2, h.Size())
	assert.Equal(t, 1, h.MaxIndex())
}

func TestHyperplaneImmutable(t *testing.T) {
	indices := []int{0, 1}
	coeffs := []float32{1, 1}
	h, err := NewHyperplane(indices, coeffs, 0)
	require.NoError(t, err)

	indices[0] = 7
	coeffs[0] = 9
	assert.Equal(t, 0, h.VariableIndex(0))
	assert.Equal(t, float32(1), h.Coefficient(0))
}

func TestHingeLoss(t *testing.T) {
	h, err := NewHyperplane([]int{0}, []float32{1}, 0.3)
	require.NoError(t, err)
	hinge, err := NewHingeLoss(h, 2.0, 1.0)
	require.NoError(t, err)

	// Violated side: dot = 1.0 - 0.3 = 0.7.
	vals := values{1.0}
	assert.InDelta(t, 2.0*0.7, hinge.Evaluate(vals), 1e-6)
	assert.True(t, hinge.IsActive(0.7))

	// Satisfied side contributes nothing and must be inactive.
	vals[0] = 0.1
	assert.Equal(t, float32(0), hinge.Evaluate(vals))
	assert.False(t, hinge.IsActive(-0.2))
	assert.False(t, hinge.IsActive(0))
}

func TestHingeLossGradientSchedule(t *testing.T) {
	h, err := NewHyperplane([]int{0}, []float32{-0.5}, 0)
	require.NoError(t, err)
	hinge, err := NewHingeLoss(h, 3.0, 2.0)
	require.NoError(t, err)

	// weight * (lr / iteration) * coeff
	assert.InDelta(t, 3.0*(2.0/1.0)*-0.5, hinge.ComputeGradient(1, 0, 0.4), 1e-6)
	assert.InDelta(t, 3.0*(2.0/4.0)*-0.5, hinge.ComputeGradient(4, 0, 0.4), 1e-6)
}

func TestSquaredHingeLoss(t *testing.T) {
	h, err := NewHyperplane([]int{0}, []float32{1}, 0.5)
	require.NoError(t, err)
	sq, err := NewSquaredHingeLoss(h, 1.5, 1.0)
	require.NoError(t, err)

	vals := values{1.0} // dot = 0.5
	assert.InDelta(t, 1.5*0.25, sq.Evaluate(vals), 1e-6)
	assert.True(t, sq.IsActive(0.5))
	assert.False(t, sq.IsActive(-0.1))

	// Gradient picks up the 2*dot chain factor.
	assert.InDelta(t, 1.5*1.0*2*0.5*1.0, sq.ComputeGradient(1, 0, 0.5), 1e-6)
}

func TestLinearLossAlwaysActive(t *testing.T) {
	h, err := NewHyperplane([]int{0}, []float32{1}, 0)
	require.NoError(t, err)
	lin, err := NewLinearLoss(h, 0.1, 1.0)
	require.NoError(t, err)

	assert.True(t, lin.IsActive(-5))
	assert.True(t, lin.IsActive(0))
	assert.True(t, lin.IsActive(5))

	vals := values{0.8}
	assert.InDelta(t, 0.1*0.8, lin.Evaluate(vals), 1e-6)
	assert.InDelta(t, 0.1*1.0*1.0, lin.ComputeGradient(1, 0, 0.8), 1e-6)
}

func TestTermConstructionErrors(t *testing.T) {
	h, err := NewHyperplane([]int{0}, []float32{1}, 0)
	require.NoError(t, err)

	_, err = NewHingeLoss(h, -1, 1)
	assert.Error(t, err, "negative weight")

	_, err = NewHingeLoss(h, 1, 0)
	assert.Error(t, err, "zero learning rate")

	_, err = NewSquaredHingeLoss(nil, 1, 1)
	assert.Error(t, err, "nil hyperplane")
}

func TestSetWeight(t *testing.T) {
	h, err := NewHyperplane([]int{0}, []float32{1}, 0)
	require.NoError(t, err)
	hinge, err := NewHingeLoss(h, 1.0, 1.0)
	require.NoError(t, err)

	hinge.SetWeight(4.0)
	assert.Equal(t, float32(4.0), hinge.Weight())
	vals := values{1.0}
	assert.InDelta(t, 4.0, hinge.Evaluate(vals), 1e-6)
}
