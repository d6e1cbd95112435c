package learning

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"softlogic/internal/grounding"
	"softlogic/internal/model"
	"softlogic/internal/reasoner"
)

// Two rules pull the same target in opposite directions. With truth saying
// the target is fully true, learning must suppress the contradicting rule.
func learnFixture(t *testing.T) (*model.Model, *grounding.Result, []model.Atom) {
	t.Helper()
	m, err := model.ParseModel(strings.NewReader(
		"1.0: Signal(A) -> Active(A)\n" +
			"1.0: Signal(A) -> !Active(A)\n"))
	require.NoError(t, err)

	observed := []model.Atom{
		{Predicate: "Signal", Args: []string{"n1"}, Value: 1.0, Observed: true},
	}
	targets := []model.Atom{
		{Predicate: "Active", Args: []string{"n1"}, Value: 0.5},
	}
	g, err := grounding.Ground(m, observed, targets, grounding.Config{LearningRate: 1})
	require.NoError(t, err)

	truth := []model.Atom{
		{Predicate: "Active", Args: []string{"n1"}, Value: 1.0},
	}
	return m, g, truth
}

func TestLearnSuppressesContradictingRule(t *testing.T) {
	m, g, truth := learnFixture(t)

	cfg := DefaultConfig()
	cfg.Reasoner.Seed = 7
	res, err := Learn(context.Background(), m, g, truth, cfg)
	require.NoError(t, err)

	require.Len(t, res.Weights, 2)
	assert.Greater(t, res.Weights[0], res.Weights[1])
	assert.Less(t, res.Weights[1], float32(1.0))
	assert.GreaterOrEqual(t, res.Weights[1], float32(0.0))

	// The fitted model must be written back onto the rules and live terms.
	assert.Equal(t, res.Weights[0], m.Rules[0].Weight)
	assert.Equal(t, res.Weights[1], m.Rules[1].Weight)

	// Inference under the learned weights should favor the truth.
	store := reasoner.NewVariableStoreFrom(g.Initial)
	r, err := reasoner.New(cfg.Reasoner, g.Terms, store)
	require.NoError(t, err)
	defer r.Close()
	_, err = r.Run(context.Background())
	require.NoError(t, err)
	assert.Greater(t, store.Value(0), float32(0.5))
}

func TestLearnWithParallelReasoner(t *testing.T) {
	m, g, truth := learnFixture(t)

	cfg := DefaultConfig()
	cfg.Reasoner.Workers = 2
	cfg.Reasoner.Seed = 7
	res, err := Learn(context.Background(), m, g, truth, cfg)
	require.NoError(t, err)

	// Same fixture as the serial test: the contradicting rule still loses.
	require.Len(t, res.Weights, 2)
	assert.Greater(t, res.Weights[0], res.Weights[1])
	assert.Less(t, res.Weights[1], float32(1.0))
}

func TestLearnRequiresTruthCoverage(t *testing.T) {
	m, g, _ := learnFixture(t)

	_, err := Learn(context.Background(), m, g, nil, DefaultConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no truth value")
}

func TestLearnIgnoresTruthOutsideGrounding(t *testing.T) {
	m, g, truth := learnFixture(t)
	truth = append(truth, model.Atom{
		Predicate: "Active", Args: []string{"ghost"}, Value: 1.0,
	})

	cfg := DefaultConfig()
	cfg.Steps = 2
	_, err := Learn(context.Background(), m, g, truth, cfg)
	require.NoError(t, err)
}

func TestLearnValidatesConfig(t *testing.T) {
	m, g, truth := learnFixture(t)

	cfg := DefaultConfig()
	cfg.Steps = 0
	_, err := Learn(context.Background(), m, g, truth, cfg)
	require.Error(t, err)

	cfg = DefaultConfig()
	cfg.StepSize = 0
	_, err = Learn(context.Background(), m, g, truth, cfg)
	require.Error(t, err)
}

func TestLearnCancellationKeepsPartialWeights(t *testing.T) {
	m, g, truth := learnFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Learn(ctx, m, g, truth, DefaultConfig())
	require.NoError(t, err)
	assert.Zero(t, res.Steps)
	assert.Equal(t, []float32{1.0, 1.0}, res.Weights)
}

func TestLearnPerfectWeightsStayPut(t *testing.T) {
	m, err := model.ParseModel(strings.NewReader("2.0: Signal(A) -> Active(A)\n"))
	require.NoError(t, err)

	observed := []model.Atom{
		{Predicate: "Signal", Args: []string{"n1"}, Value: 1.0, Observed: true},
	}
	targets := []model.Atom{
		{Predicate: "Active", Args: []string{"n1"}, Value: 0.5},
	}
	g, err := grounding.Ground(m, observed, targets, grounding.Config{LearningRate: 1})
	require.NoError(t, err)

	truth := []model.Atom{
		{Predicate: "Active", Args: []string{"n1"}, Value: 1.0},
	}

	cfg := DefaultConfig()
	cfg.Steps = 5
	res, err := Learn(context.Background(), m, g, truth, cfg)
	require.NoError(t, err)

	// Inference already drives the target to the truth, so both
	// incompatibilities vanish and the weight never moves.
	assert.InDelta(t, 2.0, float64(res.Weights[0]), 1e-4)
}
