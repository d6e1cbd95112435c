package eval

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"softlogic/internal/model"
)

func inferredAtom(pred, arg string, v float32) model.Atom {
	return model.Atom{Predicate: pred, Args: []string{arg}, Value: v}
}

func TestAlign(t *testing.T) {
	inferred := []model.Atom{
		inferredAtom("Active", "b", 0.9),
		inferredAtom("Active", "a", 0.2),
		inferredAtom("Active", "c", 0.5), // no truth
	}
	truth := []model.Atom{
		inferredAtom("Active", "a", 0.0),
		inferredAtom("Active", "b", 1.0),
		inferredAtom("Active", "d", 1.0), // never inferred
	}

	pairs, err := Align(inferred, truth)
	require.NoError(t, err)

	want := []Pair{
		{Key: "Active(a)", Inferred: 0.2, Truth: 0.0},
		{Key: "Active(b)", Inferred: 0.9, Truth: 1.0},
	}
	if diff := cmp.Diff(want, pairs, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("aligned pairs mismatch (-want +got):\n%s", diff)
	}
}

func TestAlignEmptyIntersection(t *testing.T) {
	inferred := []model.Atom{inferredAtom("Active", "a", 0.2)}
	truth := []model.Atom{inferredAtom("Active", "b", 1.0)}

	_, err := Align(inferred, truth)
	require.Error(t, err)
}

func TestContinuous(t *testing.T) {
	pairs := []Pair{
		{Inferred: 0.2, Truth: 0.0},
		{Inferred: 0.9, Truth: 1.0},
		{Inferred: 0.5, Truth: 0.5},
	}
	m := Continuous(pairs)
	assert.Equal(t, 3, m.Count)
	assert.InDelta(t, 0.1, m.MAE, 1e-9)
	assert.InDelta(t, (0.04+0.01)/3, m.MSE, 1e-9)
}

func TestDiscrete(t *testing.T) {
	pairs := []Pair{
		{Inferred: 0.9, Truth: 1.0}, // true positive
		{Inferred: 0.8, Truth: 0.0}, // false positive
		{Inferred: 0.1, Truth: 1.0}, // false negative
		{Inferred: 0.2, Truth: 0.0}, // true negative
	}
	m, err := Discrete(pairs, 0.5)
	require.NoError(t, err)

	assert.Equal(t, 1, m.TruePositives)
	assert.Equal(t, 1, m.FalsePositives)
	assert.Equal(t, 1, m.FalseNegatives)
	assert.Equal(t, 1, m.TrueNegatives)
	assert.InDelta(t, 0.5, m.Precision, 1e-9)
	assert.InDelta(t, 0.5, m.Recall, 1e-9)
	assert.InDelta(t, 0.5, m.F1, 1e-9)
	assert.InDelta(t, 0.5, m.Accuracy, 1e-9)
}

func TestDiscreteDegenerate(t *testing.T) {
	pairs := []Pair{
		{Inferred: 0.1, Truth: 0.0},
		{Inferred: 0.2, Truth: 0.0},
	}
	m, err := Discrete(pairs, 0.5)
	require.NoError(t, err)

	// No positives anywhere: rates stay zero instead of dividing by zero.
	assert.Zero(t, m.Precision)
	assert.Zero(t, m.Recall)
	assert.Zero(t, m.F1)
	assert.InDelta(t, 1.0, m.Accuracy, 1e-9)
}

func TestDiscreteThresholdValidation(t *testing.T) {
	_, err := Discrete(nil, 1.5)
	require.Error(t, err)
	_, err = Discrete(nil, -0.1)
	require.Error(t, err)
}
