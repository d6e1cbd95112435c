// Package model holds the logical side of a softlogic problem: predicates,
// ground atoms, and weighted rules parsed from a model file. The grounding
// engine expands rules against loaded atoms; this package only represents
// and validates them.
package model

import (
	"fmt"
	"sort"
	"strings"
)

// Predicate declares a relation by name and arity. Closed predicates are
// fully observed: every atom not listed in the data is false. Open
// predicates have unknown (target) atoms to be inferred.
type Predicate struct {
	Name   string
	Arity  int
	Closed bool
}

// Atom is one ground atom: a predicate applied to constant arguments, with a
// truth value in [0,1]. Observed atoms keep their value fixed; target atoms
// are the unknowns.
type Atom struct {
	Predicate string
	Args      []string
	Value     float32
	Observed  bool
}

// Key returns the canonical identity string for the atom, used to dedupe
// and to index the variable arena.
func (a Atom) Key() string {
	return fmt.Sprintf("%s(%s)", a.Predicate, strings.Join(a.Args, ","))
}

// Literal is one predicate application inside a rule, over rule variables.
type Literal struct {
	Predicate string
	Variables []string
	Negated   bool
}

func (l Literal) String() string {
	neg := ""
	if l.Negated {
		neg = "!"
	}
	return fmt.Sprintf("%s%s(%s)", neg, l.Predicate, strings.Join(l.Variables, ","))
}

// Rule is one weighted implication Body1 & ... & BodyK -> Head. Squared
// selects the squared hinge potential for its groundings.
type Rule struct {
	Weight  float32
	Squared bool
	Body    []Literal
	Head    Literal
	Line    int
}

func (r *Rule) String() string {
	parts := make([]string, len(r.Body))
	for i, l := range r.Body {
		parts[i] = l.String()
	}
	s := fmt.Sprintf("%g: %s -> %s", r.Weight, strings.Join(parts, " & "), r.Head.String())
	if r.Squared {
		s += " ^2"
	}
	return s
}

// Variables returns the sorted distinct rule variables across body and head.
func (r *Rule) Variables() []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range r.Body {
		for _, v := range l.Variables {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	for _, v := range r.Head.Variables {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// Validate enforces the structural invariants a rule needs before grounding:
// a non-negative weight, a non-empty body, and safety (every head variable
// bound in the body, so groundings are finite).
func (r *Rule) Validate() error {
	if r.Weight < 0 {
		return fmt.Errorf("line %d: rule weight must be non-negative, got %g", r.Line, r.Weight)
	}
	if len(r.Body) == 0 {
		return fmt.Errorf("line %d: rule has no body literals", r.Line)
	}
	bound := make(map[string]bool)
	for _, l := range r.Body {
		if len(l.Variables) == 0 {
			return fmt.Errorf("line %d: literal %s has no arguments", r.Line, l.Predicate)
		}
		for _, v := range l.Variables {
			bound[v] = true
		}
	}
	for _, v := range r.Head.Variables {
		if !bound[v] {
			return fmt.Errorf("line %d: head variable %s is not bound in the body", r.Line, v)
		}
	}
	return nil
}

// Model is a parsed rule set plus the predicate signatures inferred from it.
type Model struct {
	Rules      []*Rule
	Predicates map[string]int // name -> arity, inferred from literals
}

// CheckPredicates verifies every predicate used by the rules against the
// declared signatures from the data definition.
func (m *Model) CheckPredicates(declared map[string]Predicate) error {
	for name, arity := range m.Predicates {
		decl, ok := declared[name]
		if !ok {
			return fmt.Errorf("rules use predicate %s but the data does not declare it", name)
		}
		if decl.Arity != arity {
			return fmt.Errorf("predicate %s used with arity %d but declared with arity %d", name, arity, decl.Arity)
		}
	}
	return nil
}
