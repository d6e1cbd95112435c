package term

// LinearLossTerm is an always-active potential weight * (coeffs^T * x - constant).
// With a single unit coefficient and zero constant it acts as a negative
// prior: a constant downward pull on one target variable.
type LinearLossTerm struct {
	base
}

// NewLinearLoss builds a linear-loss term over the given hyperplane.
func NewLinearLoss(hyperplane *Hyperplane, weight, learningRate float32) (*LinearLossTerm, error) {
	b, err := newBase(hyperplane, weight, learningRate)
	if err != nil {
		return nil, err
	}
	return &LinearLossTerm{base: b}, nil
}

func (t *LinearLossTerm) Evaluate(vals ValueReader) float32 {
	return t.weight * t.hyperplane.Dot(vals)
}

func (t *LinearLossTerm) IsActive(dot float32) bool { return true }

func (t *LinearLossTerm) ComputeGradient(iteration int64, pos int, dot float32) float32 {
	return t.step(iteration) * t.hyperplane.Coefficient(pos)
}
