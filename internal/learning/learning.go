// Package learning fits rule weights from labeled data. It implements the
// voted-perceptron style of max-likelihood estimation: each step runs
// inference under the current weights, compares each rule's incompatibility
// at the inferred state against its incompatibility at the ground truth, and
// nudges the weight along the difference.
package learning

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"softlogic/internal/grounding"
	"softlogic/internal/logging"
	"softlogic/internal/model"
	"softlogic/internal/reasoner"
	"softlogic/internal/term"
)

// Config controls the perceptron loop.
type Config struct {
	// Steps is the number of weight updates to run.
	Steps int
	// StepSize scales each weight update.
	StepSize float32
	// Reasoner configures the inference runs inside each step.
	Reasoner reasoner.Config
}

// DefaultConfig mirrors common voted-perceptron settings.
func DefaultConfig() Config {
	return Config{
		Steps:    25,
		StepSize: 1.0,
		Reasoner: reasoner.DefaultConfig(),
	}
}

// Result reports the fitted weights and the loop's trajectory.
type Result struct {
	// Weights holds the final per-rule weights, indexed like the model's
	// rule list.
	Weights []float32
	// Steps is the number of updates performed.
	Steps int
}

type sliceReader []float32

func (s sliceReader) Value(i int) float32 { return s[i] }

// Learn fits the model's rule weights against truth atoms. Every target
// variable in the grounding must have a truth value; the model's rules are
// updated in place and the grounding's live terms receive the final weights.
func Learn(ctx context.Context, m *model.Model, g *grounding.Result, truth []model.Atom, cfg Config) (*Result, error) {
	if cfg.Steps <= 0 {
		return nil, fmt.Errorf("learning requires at least one step, got %d", cfg.Steps)
	}
	if cfg.StepSize <= 0 {
		return nil, fmt.Errorf("learning step size must be positive, got %g", cfg.StepSize)
	}

	truthValues := make([]float32, len(g.Variables))
	covered := make([]bool, len(g.Variables))
	for _, a := range truth {
		idx, ok := g.Index[a.Key()]
		if !ok {
			// Truth for atoms outside the grounding carries no signal.
			continue
		}
		truthValues[idx] = a.Value
		covered[idx] = true
	}
	for i, ok := range covered {
		if !ok {
			return nil, fmt.Errorf("no truth value for target atom %s", g.Variables[i].Key())
		}
	}

	weights := make([]float32, len(m.Rules))
	for i, r := range m.Rules {
		weights[i] = r.Weight
	}
	truthIncomp := ruleIncompatibilities(m, g, sliceReader(truthValues))

	log := logging.Learning()
	res := &Result{}
	for step := 0; step < cfg.Steps; step++ {
		select {
		case <-ctx.Done():
			log.Info("learning canceled", zap.Int("steps", res.Steps))
			return finish(m, g, weights, res)
		default:
		}

		if err := g.RuleWeights(weights); err != nil {
			return nil, err
		}
		var store reasoner.Store
		if cfg.Reasoner.Workers > 1 {
			store = reasoner.NewAtomicVariableStoreFrom(g.Initial)
		} else {
			store = reasoner.NewVariableStoreFrom(g.Initial)
		}
		r, err := reasoner.New(cfg.Reasoner, g.Terms, store)
		if err != nil {
			return nil, err
		}
		_, err = r.Run(ctx)
		r.Close()
		if err != nil {
			return nil, fmt.Errorf("inference during learning step %d: %w", step, err)
		}

		inferredIncomp := ruleIncompatibilities(m, g, store)
		moved := float32(0)
		for i := range weights {
			delta := cfg.StepSize * (inferredIncomp[i] - truthIncomp[i])
			next := weights[i] + delta
			if next < 0 {
				next = 0
			}
			if d := next - weights[i]; d > 0 {
				moved += d
			} else {
				moved -= d
			}
			weights[i] = next
		}
		res.Steps++
		log.Debug("perceptron step",
			zap.Int("step", step),
			zap.Float32("weight_movement", moved))
	}

	return finish(m, g, weights, res)
}

func finish(m *model.Model, g *grounding.Result, weights []float32, res *Result) (*Result, error) {
	if err := g.RuleWeights(weights); err != nil {
		return nil, err
	}
	for i, r := range m.Rules {
		r.Weight = weights[i]
	}
	res.Weights = weights
	logging.Learning().Info("learning complete",
		zap.Int("steps", res.Steps),
		zap.Float32s("weights", weights))
	return res, nil
}

// ruleIncompatibilities sums each rule's distance to satisfaction over its
// groundings at the given assignment. Squared rules square the distance,
// matching their potential.
func ruleIncompatibilities(m *model.Model, g *grounding.Result, vals term.ValueReader) []float32 {
	out := make([]float32, len(m.Rules))
	for i := range g.GroundRules {
		gr := &g.GroundRules[i]
		d := gr.Distance(vals)
		if m.Rules[gr.RuleIndex].Squared {
			d = d * d
		}
		out[gr.RuleIndex] += d
	}
	return out
}
