package grounding

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"
	"go.uber.org/zap"

	"softlogic/internal/logging"
	"softlogic/internal/model"
)

// groundSubstitutions runs the relational part of grounding: every rule
// becomes a derived Datalog predicate whose body joins all of the rule's
// literals, head included, so a rule only instantiates over atoms that were
// actually loaded. The result holds, per rule, one substitution map for each
// derived tuple.
func groundSubstitutions(m *model.Model, atoms []model.Atom) ([][]map[string]string, error) {
	// Predicate names inside the Datalog program are positional (p0, p1, ...)
	// so model predicate names never collide with Mangle's lexical rules.
	names := make([]string, 0, len(m.Predicates))
	for name := range m.Predicates {
		names = append(names, name)
	}
	sort.Strings(names)
	predIndex := make(map[string]int, len(names))
	for i, name := range names {
		predIndex[name] = i
	}

	ruleVars := make([][]string, len(m.Rules))
	source := buildProgram(m, names, predIndex, ruleVars)

	unit, err := parse.Unit(strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("internal grounding program failed to parse: %w", err)
	}
	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, fmt.Errorf("internal grounding program failed analysis: %w", err)
	}

	store := factstore.NewSimpleInMemoryStore()
	for _, a := range atoms {
		idx, ok := predIndex[a.Predicate]
		if !ok {
			// Atoms for predicates no rule mentions cannot influence any
			// grounding; skip them rather than fail the whole pass.
			continue
		}
		if len(a.Args) != m.Predicates[a.Predicate] {
			return nil, fmt.Errorf("atom %s has %d arguments, the rules use %s with arity %d", a.Key(), len(a.Args), a.Predicate, m.Predicates[a.Predicate])
		}
		args := make([]ast.BaseTerm, len(a.Args))
		for i, arg := range a.Args {
			args[i] = ast.String(arg)
		}
		store.Add(ast.Atom{
			Predicate: ast.PredicateSym{Symbol: fmt.Sprintf("p%d", idx), Arity: len(a.Args)},
			Args:      args,
		})
	}

	stats, err := mengine.EvalProgramWithStats(programInfo, store)
	if err != nil {
		return nil, fmt.Errorf("grounding evaluation failed: %w", err)
	}
	logging.Grounding().Debug("datalog grounding pass",
		zap.Int("atoms", len(atoms)),
		zap.Any("stats", stats))

	subs := make([][]map[string]string, len(m.Rules))
	for ruleIdx := range m.Rules {
		vars := ruleVars[ruleIdx]
		sym := ast.PredicateSym{Symbol: fmt.Sprintf("g%d", ruleIdx), Arity: len(vars)}
		err := store.GetFacts(ast.NewQuery(sym), func(atom ast.Atom) error {
			sub := make(map[string]string, len(vars))
			for i, v := range vars {
				c, ok := atom.Args[i].(ast.Constant)
				if !ok || c.Type != ast.StringType {
					return fmt.Errorf("rule %d produced a non-string binding for %s", ruleIdx, v)
				}
				sub[v] = c.Symbol
			}
			subs[ruleIdx] = append(subs[ruleIdx], sub)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return subs, nil
}

// buildProgram emits the Mangle source for the model: one declared base
// predicate per model predicate, and per rule a derived predicate over the
// rule's variables. It records each rule's variable order in ruleVars.
func buildProgram(m *model.Model, names []string, predIndex map[string]int, ruleVars [][]string) string {
	var b strings.Builder
	for i, name := range names {
		b.WriteString(fmt.Sprintf("Decl p%d(", i))
		for j := 0; j < m.Predicates[name]; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "X%d", j)
		}
		b.WriteString(").\n")
	}

	for ruleIdx, rule := range m.Rules {
		vars := rule.Variables()
		ruleVars[ruleIdx] = vars
		varNames := make(map[string]string, len(vars))
		for i, v := range vars {
			varNames[v] = fmt.Sprintf("V%d", i)
		}

		fmt.Fprintf(&b, "g%d(", ruleIdx)
		for i, v := range vars {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(varNames[v])
		}
		b.WriteString(") :- ")

		// Negation in a rule flips the potential, not the join: every
		// literal, the head included, must match a loaded atom.
		literals := append(append([]model.Literal{}, rule.Body...), rule.Head)
		for i, lit := range literals {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "p%d(", predIndex[lit.Predicate])
			for j, v := range lit.Variables {
				if j > 0 {
					b.WriteString(", ")
				}
				b.WriteString(varNames[v])
			}
			b.WriteString(")")
		}
		b.WriteString(".\n")
	}
	return b.String()
}
