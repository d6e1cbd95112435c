// Package eval scores inferred atom values against held-out truth.
package eval

import (
	"fmt"
	"math"
	"sort"

	"softlogic/internal/model"
)

// ContinuousMetrics compares soft truth values directly.
type ContinuousMetrics struct {
	Count int
	MAE   float64
	MSE   float64
}

// DiscreteMetrics thresholds both sides and scores the resulting labels.
type DiscreteMetrics struct {
	Threshold                       float64
	TruePositives, FalsePositives   int
	TrueNegatives, FalseNegatives   int
	Precision, Recall, F1, Accuracy float64
}

// Pair is one atom scored by both the inference run and the truth data.
type Pair struct {
	Key      string
	Inferred float64
	Truth    float64
}

// Align matches inferred atoms with truth atoms by key. Truth atoms with no
// inferred counterpart are ignored; an empty intersection is an error.
func Align(inferred []model.Atom, truth []model.Atom) ([]Pair, error) {
	truthByKey := make(map[string]float64, len(truth))
	for _, a := range truth {
		truthByKey[a.Key()] = float64(a.Value)
	}

	var pairs []Pair
	for _, a := range inferred {
		v, ok := truthByKey[a.Key()]
		if !ok {
			continue
		}
		pairs = append(pairs, Pair{Key: a.Key(), Inferred: float64(a.Value), Truth: v})
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no inferred atom matches any truth atom")
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
	return pairs, nil
}

// Continuous computes mean absolute and mean squared error over the pairs.
func Continuous(pairs []Pair) ContinuousMetrics {
	m := ContinuousMetrics{Count: len(pairs)}
	for _, p := range pairs {
		d := p.Inferred - p.Truth
		m.MAE += math.Abs(d)
		m.MSE += d * d
	}
	if m.Count > 0 {
		m.MAE /= float64(m.Count)
		m.MSE /= float64(m.Count)
	}
	return m
}

// Discrete thresholds every pair at the given cutoff and computes the usual
// classification metrics. Values at or above the threshold count as positive.
func Discrete(pairs []Pair, threshold float64) (DiscreteMetrics, error) {
	if threshold < 0 || threshold > 1 {
		return DiscreteMetrics{}, fmt.Errorf("threshold must lie in [0,1], got %g", threshold)
	}
	m := DiscreteMetrics{Threshold: threshold}
	for _, p := range pairs {
		pred := p.Inferred >= threshold
		actual := p.Truth >= threshold
		switch {
		case pred && actual:
			m.TruePositives++
		case pred && !actual:
			m.FalsePositives++
		case !pred && actual:
			m.FalseNegatives++
		default:
			m.TrueNegatives++
		}
	}

	if m.TruePositives+m.FalsePositives > 0 {
		m.Precision = float64(m.TruePositives) / float64(m.TruePositives+m.FalsePositives)
	}
	if m.TruePositives+m.FalseNegatives > 0 {
		m.Recall = float64(m.TruePositives) / float64(m.TruePositives+m.FalseNegatives)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	total := len(pairs)
	if total > 0 {
		m.Accuracy = float64(m.TruePositives+m.TrueNegatives) / float64(total)
	}
	return m, nil
}
