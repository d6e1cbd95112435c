package term

// SquaredHingeLossTerm is a potential of the form
// weight * max(0, coeffs^T * x - constant)^2. The squared surface is smooth
// at the hinge and penalizes large violations more steeply, which rules
// request with a squared exponent.
type SquaredHingeLossTerm struct {
	base
}

// NewSquaredHingeLoss builds a squared hinge-loss term over the given hyperplane.
func NewSquaredHingeLoss(hyperplane *Hyperplane, weight, learningRate float32) (*SquaredHingeLossTerm, error) {
	b, err := newBase(hyperplane, weight, learningRate)
	if err != nil {
		return nil, err
	}
	return &SquaredHingeLossTerm{base: b}, nil
}

func (t *SquaredHingeLossTerm) Evaluate(vals ValueReader) float32 {
	dot := t.hyperplane.Dot(vals)
	if dot <= 0 {
		return 0
	}
	return t.weight * dot * dot
}

func (t *SquaredHingeLossTerm) IsActive(dot float32) bool { return dot > 0 }

// ComputeGradient chains d/dx (dot^2) = 2 * dot * coeff through the schedule.
func (t *SquaredHingeLossTerm) ComputeGradient(iteration int64, pos int, dot float32) float32 {
	return t.step(iteration) * 2 * dot * t.hyperplane.Coefficient(pos)
}
