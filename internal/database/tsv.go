package database

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"softlogic/internal/logging"
	"softlogic/internal/model"
)

// LoadTSV reads tab-separated ground atoms for one predicate into a
// partition. Each line carries arity constant arguments, optionally followed
// by a truth value column; without one, observations and truth default to
// 1.0 and targets to the 0.5 initial guess.
func (s *Store) LoadTSV(partition, predicate string, arity int, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	defaultValue := float32(defaultObservedValue)
	if partition == PartitionTargets {
		defaultValue = defaultTargetValue
	}

	var atoms []model.Atom
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		value := defaultValue
		switch len(fields) {
		case arity:
		case arity + 1:
			v, err := strconv.ParseFloat(strings.TrimSpace(fields[arity]), 32)
			if err != nil {
				return 0, fmt.Errorf("%s:%d: bad truth value %q: %w", path, lineNo, fields[arity], err)
			}
			if v < 0 || v > 1 {
				return 0, fmt.Errorf("%s:%d: truth value %g outside [0,1]", path, lineNo, v)
			}
			value = float32(v)
			fields = fields[:arity]
		default:
			return 0, fmt.Errorf("%s:%d: expected %d or %d columns for %s, got %d",
				path, lineNo, arity, arity+1, predicate, len(fields))
		}

		args := make([]string, arity)
		for i, fld := range fields {
			args[i] = strings.TrimSpace(fld)
			if args[i] == "" {
				return 0, fmt.Errorf("%s:%d: empty argument in column %d", path, lineNo, i+1)
			}
		}

		atoms = append(atoms, model.Atom{
			Predicate: predicate,
			Args:      args,
			Value:     value,
			Observed:  partition == PartitionObservations,
		})
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read data file: %w", err)
	}

	if err := s.InsertAtoms(partition, atoms); err != nil {
		return 0, err
	}
	logging.Database().Debug("loaded data file",
		zap.String("path", path),
		zap.String("partition", partition),
		zap.String("predicate", predicate),
		zap.Int("atoms", len(atoms)))
	return len(atoms), nil
}
