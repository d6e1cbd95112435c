package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"softlogic/internal/model"
)

// PredicateSpec declares one predicate in the data definition.
type PredicateSpec struct {
	Name   string `yaml:"name"`
	Arity  int    `yaml:"arity"`
	Closed bool   `yaml:"closed"`
}

// DataSpec is the data definition: predicate declarations plus the TSV files
// feeding each partition. File paths are relative to the definition file.
type DataSpec struct {
	Predicates   []PredicateSpec     `yaml:"predicates"`
	Observations map[string][]string `yaml:"observations"`
	Targets      map[string][]string `yaml:"targets"`
	Truth        map[string][]string `yaml:"truth"`

	dir string
}

// LoadDataSpec reads and validates a data definition file.
func LoadDataSpec(path string) (*DataSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data definition: %w", err)
	}
	var spec DataSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse data definition %s: %w", path, err)
	}
	spec.dir = filepath.Dir(path)
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &spec, nil
}

// Validate checks predicate declarations and partition references.
func (s *DataSpec) Validate() error {
	if len(s.Predicates) == 0 {
		return fmt.Errorf("data definition declares no predicates")
	}
	decls := make(map[string]PredicateSpec, len(s.Predicates))
	for _, p := range s.Predicates {
		if p.Name == "" {
			return fmt.Errorf("predicate with empty name")
		}
		if p.Arity < 1 {
			return fmt.Errorf("predicate %s must have arity of at least 1, got %d", p.Name, p.Arity)
		}
		if _, dup := decls[p.Name]; dup {
			return fmt.Errorf("predicate %s declared twice", p.Name)
		}
		decls[p.Name] = p
	}

	check := func(section string, files map[string][]string) error {
		for name := range files {
			decl, ok := decls[name]
			if !ok {
				return fmt.Errorf("%s references undeclared predicate %s", section, name)
			}
			if section != "observations" && decl.Closed {
				return fmt.Errorf("closed predicate %s cannot appear under %s", name, section)
			}
		}
		return nil
	}
	if err := check("observations", s.Observations); err != nil {
		return err
	}
	if err := check("targets", s.Targets); err != nil {
		return err
	}
	return check("truth", s.Truth)
}

// Declared returns the predicate declarations keyed by name, in the form the
// model checker consumes.
func (s *DataSpec) Declared() map[string]model.Predicate {
	out := make(map[string]model.Predicate, len(s.Predicates))
	for _, p := range s.Predicates {
		out[p.Name] = model.Predicate{Name: p.Name, Arity: p.Arity, Closed: p.Closed}
	}
	return out
}

// Arity returns the declared arity for a predicate.
func (s *DataSpec) Arity(name string) (int, bool) {
	for _, p := range s.Predicates {
		if p.Name == name {
			return p.Arity, true
		}
	}
	return 0, false
}

// Resolve turns a file reference from the definition into an absolute-ish
// path rooted at the definition file's directory.
func (s *DataSpec) Resolve(file string) string {
	if filepath.IsAbs(file) || s.dir == "" {
		return file
	}
	return filepath.Join(s.dir, file)
}
