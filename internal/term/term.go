package term

import "fmt"

// ObjectiveTerm is one weighted potential weight * g(coeffs^T * x - constant).
// The three methods differ per loss family; everything else is shared.
//
// ComputeGradient returns the step to subtract from the variable at the given
// hyperplane position, already scaled by the diminishing schedule
// learningRate/iteration. The driver must only call it when IsActive reports
// true for the current dot value, and with a 1-based iteration counter.
type ObjectiveTerm interface {
	// Evaluate returns the current potential value weight * g(dot).
	Evaluate(vals ValueReader) float32
	// IsActive reports whether the gradient is non-zero at the given dot.
	IsActive(dot float32) bool
	// ComputeGradient returns the step for the variable at hyperplane
	// position pos, for the given global iteration.
	ComputeGradient(iteration int64, pos int, dot float32) float32

	Hyperplane() *Hyperplane
	Weight() float32
	// SetWeight replaces the term weight. Weight learning calls this between
	// reasoner runs; it must not be called while a run is in flight.
	SetWeight(weight float32)
}

// base carries the state every loss family shares.
type base struct {
	hyperplane   *Hyperplane
	weight       float32
	learningRate float32
}

func newBase(hyperplane *Hyperplane, weight, learningRate float32) (base, error) {
	if hyperplane == nil {
		return base{}, fmt.Errorf("term requires a hyperplane")
	}
	if weight < 0 {
		return base{}, fmt.Errorf("term weight must be non-negative, got %v", weight)
	}
	if learningRate <= 0 {
		return base{}, fmt.Errorf("term learning rate must be positive, got %v", learningRate)
	}
	return base{hyperplane: hyperplane, weight: weight, learningRate: learningRate}, nil
}

func (b *base) Hyperplane() *Hyperplane { return b.hyperplane }
func (b *base) Weight() float32         { return b.weight }
func (b *base) SetWeight(w float32)     { b.weight = w }

// step is the shared schedule factor weight * (learningRate / iteration).
func (b *base) step(iteration int64) float32 {
	return b.weight * (b.learningRate / float32(iteration))
}
