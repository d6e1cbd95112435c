package model

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// A model file is line oriented:
//
//	// friendship is transitive-ish
//	2.5: Friends(A,B) & Likes(B,X) -> Likes(A,X)
//	1.0: Friends(A,B) & !Likes(B,X) -> !Likes(A,X) ^2
//
// Blank lines and lines starting with // or # are ignored.

var literalRe = regexp.MustCompile(`^(!?)\s*([A-Za-z_][A-Za-z0-9_]*)\s*\(\s*([^)]*?)\s*\)$`)

// ParseModelFile parses a model file from disk.
func ParseModelFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer f.Close()
	m, err := ParseModel(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ParseModel parses a rule set from a reader.
func ParseModel(r io.Reader) (*Model, error) {
	m := &Model{Predicates: make(map[string]int)}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}

		rule, err := parseRule(line, lineNo)
		if err != nil {
			return nil, err
		}
		if err := rule.Validate(); err != nil {
			return nil, err
		}
		for _, l := range append(append([]Literal{}, rule.Body...), rule.Head) {
			if arity, ok := m.Predicates[l.Predicate]; ok && arity != len(l.Variables) {
				return nil, fmt.Errorf("line %d: predicate %s used with arity %d and %d", lineNo, l.Predicate, arity, len(l.Variables))
			}
			m.Predicates[l.Predicate] = len(l.Variables)
		}
		m.Rules = append(m.Rules, rule)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	if len(m.Rules) == 0 {
		return nil, fmt.Errorf("model contains no rules")
	}
	return m, nil
}

func parseRule(line string, lineNo int) (*Rule, error) {
	rest := line

	// Weight prefix "w:".
	colon := strings.Index(rest, ":")
	if colon < 0 {
		return nil, fmt.Errorf("line %d: missing weight prefix %q", lineNo, line)
	}
	weight, err := strconv.ParseFloat(strings.TrimSpace(rest[:colon]), 32)
	if err != nil {
		return nil, fmt.Errorf("line %d: bad rule weight %q: %w", lineNo, rest[:colon], err)
	}
	rest = strings.TrimSpace(rest[colon+1:])

	// Squared suffix "^2".
	squared := false
	if strings.HasSuffix(rest, "^2") {
		squared = true
		rest = strings.TrimSpace(strings.TrimSuffix(rest, "^2"))
	}

	parts := strings.Split(rest, "->")
	if len(parts) != 2 {
		return nil, fmt.Errorf("line %d: rule must have exactly one implication ->", lineNo)
	}

	var body []Literal
	for _, tok := range strings.Split(parts[0], "&") {
		lit, err := parseLiteral(tok, lineNo)
		if err != nil {
			return nil, err
		}
		body = append(body, lit)
	}
	head, err := parseLiteral(parts[1], lineNo)
	if err != nil {
		return nil, err
	}

	return &Rule{
		Weight:  float32(weight),
		Squared: squared,
		Body:    body,
		Head:    head,
		Line:    lineNo,
	}, nil
}

func parseLiteral(tok string, lineNo int) (Literal, error) {
	tok = strings.TrimSpace(tok)
	match := literalRe.FindStringSubmatch(tok)
	if match == nil {
		return Literal{}, fmt.Errorf("line %d: malformed literal %q", lineNo, tok)
	}

	args := strings.Split(match[3], ",")
	vars := make([]string, 0, len(args))
	for _, a := range args {
		a = strings.TrimSpace(a)
		if a == "" {
			return Literal{}, fmt.Errorf("line %d: empty argument in literal %q", lineNo, tok)
		}
		vars = append(vars, a)
	}

	return Literal{
		Predicate: match[2],
		Variables: vars,
		Negated:   match[1] == "!",
	}, nil
}
