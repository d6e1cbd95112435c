// Package term implements the objective terms that make up a softlogic
// optimization problem: weighted potentials over a linear function of
// ground-atom truth values.
package term

import "fmt"

// ValueReader is the read-only view of the variable arena a term needs to
// evaluate itself. The reasoner's variable store implements it.
type ValueReader interface {
	Value(index int) float32
}

// Hyperplane is the affine function coeffs^T * x - constant over a fixed set
// of variables, addressed by arena index. Immutable after construction.
type Hyperplane struct {
	indices  []int
	coeffs   []float32
	constant float32
}

// NewHyperplane validates and builds a hyperplane. Every coefficient must be
// non-zero and the variable list non-empty; a zero-coefficient entry would
// contribute no gradient and indicates a grounding bug.
func NewHyperplane(indices []int, coeffs []float32, constant float32) (*Hyperplane, error) {
	if len(indices) == 0 {
		return nil, fmt.Errorf("hyperplane must reference at least one variable")
	}
	if len(indices) != len(coeffs) {
		return nil, fmt.Errorf("hyperplane has %d variables but %d coefficients", len(indices), len(coeffs))
	}
	for i, c := range coeffs {
		if c == 0 {
			return nil, fmt.Errorf("zero coefficient for variable %d at position %d", indices[i], i)
		}
		if indices[i] < 0 {
			return nil, fmt.Errorf("negative variable index %d at position %d", indices[i], i)
		}
	}

	h := &Hyperplane{
		indices:  make([]int, len(indices)),
		coeffs:   make([]float32, len(coeffs)),
		constant: constant,
	}
	copy(h.indices, indices)
	copy(h.coeffs, coeffs)
	return h, nil
}

// Size returns the number of referenced variables.
func (h *Hyperplane) Size() int { return len(h.indices) }

// VariableIndex returns the arena index of the variable at the given position.
func (h *Hyperplane) VariableIndex(pos int) int { return h.indices[pos] }

// Coefficient returns the coefficient at the given position.
func (h *Hyperplane) Coefficient(pos int) float32 { return h.coeffs[pos] }

// Constant returns the constant subtracted from the linear combination.
func (h *Hyperplane) Constant() float32 { return h.constant }

// Dot computes coeffs^T * x - constant against the current variable values.
func (h *Hyperplane) Dot(vals ValueReader) float32 {
	var sum float32
	for i, idx := range h.indices {
		sum += h.coeffs[i] * vals.Value(idx)
	}
	return sum - h.constant
}

// MaxIndex returns the largest arena index referenced by the hyperplane.
func (h *Hyperplane) MaxIndex() int {
	max := h.indices[0]
	for _, idx := range h.indices[1:] {
		if idx > max {
			max = idx
		}
	}
	return max
}
