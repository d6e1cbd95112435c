// Package grounding expands weighted logical rules against a set of ground
// atoms into objective terms. The relational join behind each rule is
// delegated to the Mangle Datalog engine: every atom becomes a fact, every
// rule body a derived predicate, and each derived tuple one grounding.
package grounding

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"softlogic/internal/logging"
	"softlogic/internal/model"
	"softlogic/internal/term"
)

// Config controls term construction.
type Config struct {
	// LearningRate is the base step size stamped onto every term.
	LearningRate float32
	// PriorWeight, when positive, adds a linear negative prior per target
	// variable, pulling unsupported atoms toward zero.
	PriorWeight float32
}

// GroundRule records one rule instantiation for reporting, whether or not
// it produced an objective term.
type GroundRule struct {
	// RuleIndex points into the model's rule list.
	RuleIndex int
	// Substitution maps rule variables to constants.
	Substitution map[string]string
	// Term is the potential produced for this grounding; nil when every
	// referenced atom is observed or coefficients cancelled out.
	Term term.ObjectiveTerm
	// ConstantDot is the dot value for term-less groundings, fixed by the
	// observed values alone.
	ConstantDot float32
}

// Distance returns the grounding's distance to satisfaction under the
// current variable values.
func (g *GroundRule) Distance(vals term.ValueReader) float32 {
	dot := g.ConstantDot
	if g.Term != nil {
		dot = g.Term.Hyperplane().Dot(vals)
	}
	if dot < 0 {
		return 0
	}
	return dot
}

// Result is the output of one grounding pass: the term collection, the
// variable arena layout, and the per-grounding report data.
type Result struct {
	// Terms is the full objective-term collection, priors included.
	Terms []term.ObjectiveTerm
	// TermRules maps each term to its rule index; -1 marks prior terms.
	TermRules []int
	// Variables lists the target atoms in arena order.
	Variables []model.Atom
	// Index maps atom keys to arena indices.
	Index map[string]int
	// Initial holds the arena's starting values.
	Initial []float32
	// GroundRules lists every rule instantiation, including term-less ones.
	GroundRules []GroundRule
}

// RuleWeights pushes per-rule weights onto the live term collection.
// Weight learning calls this between reasoner runs.
func (r *Result) RuleWeights(weights []float32) error {
	for i, t := range r.Terms {
		ruleIdx := r.TermRules[i]
		if ruleIdx < 0 {
			continue
		}
		if ruleIdx >= len(weights) {
			return fmt.Errorf("no weight for rule %d", ruleIdx)
		}
		t.SetWeight(weights[ruleIdx])
	}
	return nil
}

// Ground expands every rule in the model against the loaded atoms. Observed
// and target atoms must not overlap; every predicate a rule references must
// have atoms or the rule simply produces no groundings.
func Ground(m *model.Model, observed, targets []model.Atom, cfg Config) (*Result, error) {
	if cfg.LearningRate <= 0 {
		return nil, fmt.Errorf("grounding requires a positive learning rate, got %g", cfg.LearningRate)
	}

	res := &Result{Index: make(map[string]int)}
	observedValues := make(map[string]float32, len(observed))
	for _, a := range observed {
		observedValues[a.Key()] = a.Value
	}
	for _, a := range targets {
		key := a.Key()
		if _, ok := observedValues[key]; ok {
			return nil, fmt.Errorf("atom %s is both observed and a target", key)
		}
		if _, ok := res.Index[key]; ok {
			continue
		}
		res.Index[key] = len(res.Variables)
		res.Variables = append(res.Variables, a)
		res.Initial = append(res.Initial, a.Value)
	}

	subs, err := groundSubstitutions(m, append(append([]model.Atom{}, observed...), targets...))
	if err != nil {
		return nil, err
	}

	for ruleIdx, rule := range m.Rules {
		for _, sub := range subs[ruleIdx] {
			gr, err := buildGroundRule(rule, ruleIdx, sub, observedValues, res.Index, cfg)
			if err != nil {
				return nil, err
			}
			if gr.Term != nil {
				res.Terms = append(res.Terms, gr.Term)
				res.TermRules = append(res.TermRules, ruleIdx)
			}
			res.GroundRules = append(res.GroundRules, gr)
		}
	}

	if cfg.PriorWeight > 0 {
		for i := range res.Variables {
			h, err := term.NewHyperplane([]int{i}, []float32{1}, 0)
			if err != nil {
				return nil, err
			}
			prior, err := term.NewLinearLoss(h, cfg.PriorWeight, cfg.LearningRate)
			if err != nil {
				return nil, err
			}
			res.Terms = append(res.Terms, prior)
			res.TermRules = append(res.TermRules, -1)
		}
	}

	logging.Grounding().Info("grounding complete",
		zap.Int("rules", len(m.Rules)),
		zap.Int("ground_rules", len(res.GroundRules)),
		zap.Int("terms", len(res.Terms)),
		zap.Int("variables", len(res.Variables)))
	return res, nil
}

// buildGroundRule turns one substitution into a hyperplane and potential
// using the Lukasiewicz distance to satisfaction
// max(0, sum(T(body_i)) - (k-1) - T(head)).
func buildGroundRule(rule *model.Rule, ruleIdx int, sub map[string]string, observedValues map[string]float32, index map[string]int, cfg Config) (GroundRule, error) {
	gr := GroundRule{RuleIndex: ruleIdx, Substitution: sub}

	constant := float32(len(rule.Body) - 1)
	coeffs := make(map[int]float32)

	addLiteral := func(lit model.Literal, sign float32) error {
		coeff := sign
		if lit.Negated {
			// T(!A) = 1 - value(A): flip the coefficient and absorb the 1.
			coeff = -sign
			constant -= sign
		}

		args := make([]string, len(lit.Variables))
		for i, v := range lit.Variables {
			c, ok := sub[v]
			if !ok {
				return fmt.Errorf("rule %d: no binding for variable %s", ruleIdx, v)
			}
			args[i] = c
		}
		key := model.Atom{Predicate: lit.Predicate, Args: args}.Key()

		if v, ok := observedValues[key]; ok {
			constant -= coeff * v
			return nil
		}
		idx, ok := index[key]
		if !ok {
			// The Datalog join only binds against loaded atoms, so a miss
			// here is a grounding bug, not missing data.
			return fmt.Errorf("rule %d: grounding references unknown atom %s", ruleIdx, key)
		}
		coeffs[idx] += coeff
		return nil
	}

	for _, lit := range rule.Body {
		if err := addLiteral(lit, 1); err != nil {
			return gr, err
		}
	}
	if err := addLiteral(rule.Head, -1); err != nil {
		return gr, err
	}

	var indices []int
	for idx, c := range coeffs {
		if c != 0 {
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)
	values := make([]float32, len(indices))
	for i, idx := range indices {
		values[i] = coeffs[idx]
	}
	if len(indices) == 0 {
		// Fully observed or self-cancelling grounding: no potential, but
		// the instantiation still exists for satisfaction reporting.
		gr.ConstantDot = -constant
		return gr, nil
	}

	h, err := term.NewHyperplane(indices, values, constant)
	if err != nil {
		return gr, err
	}
	if rule.Squared {
		gr.Term, err = term.NewSquaredHingeLoss(h, rule.Weight, cfg.LearningRate)
	} else {
		gr.Term, err = term.NewHingeLoss(h, rule.Weight, cfg.LearningRate)
	}
	if err != nil {
		return gr, err
	}
	return gr, nil
}
