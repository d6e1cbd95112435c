package term

// HingeLossTerm is a potential of the form weight * max(0, coeffs^T * x - constant).
// It is the workhorse loss for grounded soft-logic rules: positive dot means
// the rule is violated by exactly dot.
type HingeLossTerm struct {
	base
}

// NewHingeLoss builds a hinge-loss term over the given hyperplane.
func NewHingeLoss(hyperplane *Hyperplane, weight, learningRate float32) (*HingeLossTerm, error) {
	b, err := newBase(hyperplane, weight, learningRate)
	if err != nil {
		return nil, err
	}
	return &HingeLossTerm{base: b}, nil
}

func (t *HingeLossTerm) Evaluate(vals ValueReader) float32 {
	dot := t.hyperplane.Dot(vals)
	if dot <= 0 {
		return 0
	}
	return t.weight * dot
}

// IsActive reports true only on the violated side of the hinge. At dot <= 0
// the subgradient is zero and no step may be applied.
func (t *HingeLossTerm) IsActive(dot float32) bool { return dot > 0 }

func (t *HingeLossTerm) ComputeGradient(iteration int64, pos int, dot float32) float32 {
	return t.step(iteration) * t.hyperplane.Coefficient(pos)
}
