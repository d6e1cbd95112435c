package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"softlogic/internal/grounding"
	"softlogic/internal/logging"
	"softlogic/internal/model"
	"softlogic/internal/term"
)

// writeInferredFiles writes one TSV per predicate under dir, one atom per
// line: args, then the inferred value.
func writeInferredFiles(dir string, atoms []model.Atom) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	byPredicate := make(map[string][]model.Atom)
	for _, a := range atoms {
		byPredicate[a.Predicate] = append(byPredicate[a.Predicate], a)
	}

	for pred, group := range byPredicate {
		sort.Slice(group, func(i, j int) bool { return group[i].Key() < group[j].Key() })

		path := filepath.Join(dir, pred+".txt")
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		w := bufio.NewWriter(f)
		for _, a := range group {
			fmt.Fprintf(w, "%s\t%g\n", strings.Join(a.Args, "\t"), a.Value)
		}
		if err := w.Flush(); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		logging.CLI().Debug("wrote inferred values",
			zap.String("predicate", pred),
			zap.String("file", path),
			zap.Int("atoms", len(group)))
	}
	return nil
}

// writeGroundRules dumps every rule instantiation with its distance to
// satisfaction under the final values.
func writeGroundRules(dir string, m *model.Model, g *grounding.Result, vals term.ValueReader) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, "ground_rules.txt")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	var total float64
	for i := range g.GroundRules {
		gr := &g.GroundRules[i]
		d := gr.Distance(vals)
		total += float64(d)

		vars := make([]string, 0, len(gr.Substitution))
		for v := range gr.Substitution {
			vars = append(vars, v)
		}
		sort.Strings(vars)
		bindings := make([]string, len(vars))
		for j, v := range vars {
			bindings[j] = fmt.Sprintf("%s=%s", v, gr.Substitution[v])
		}
		fmt.Fprintf(w, "%g\t{%s}\t%s\n", d, strings.Join(bindings, ", "), m.Rules[gr.RuleIndex].String())
	}
	fmt.Fprintf(w, "# total distance to satisfaction: %g over %d ground rules\n", total, len(g.GroundRules))
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
