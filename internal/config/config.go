// Package config loads runtime configuration and the data definition for a
// softlogic problem. Both are YAML; a handful of SOFTLOGIC_* environment
// variables override the runtime file for scripted runs.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"softlogic/internal/reasoner"
)

// Config is the full runtime configuration.
type Config struct {
	Database  Database  `yaml:"database"`
	Grounding Grounding `yaml:"grounding"`
	Reasoner  Reasoner  `yaml:"reasoner"`
	Learning  Learning  `yaml:"learning"`
	Eval      Eval      `yaml:"eval"`
	Output    Output    `yaml:"output"`
}

type Database struct {
	// Path is the sqlite database file; ":memory:" keeps everything in RAM.
	Path string `yaml:"path"`
}

type Grounding struct {
	LearningRate float32 `yaml:"learning_rate"`
	PriorWeight  float32 `yaml:"prior_weight"`
}

type Reasoner struct {
	MaxEpochs int     `yaml:"max_epochs"`
	Tolerance float32 `yaml:"tolerance"`
	Metric    string  `yaml:"metric"`
	Shuffle   *bool   `yaml:"shuffle"`
	Seed      int64   `yaml:"seed"`
	Workers   int     `yaml:"workers"`
}

type Learning struct {
	Steps    int     `yaml:"steps"`
	StepSize float32 `yaml:"step_size"`
}

type Eval struct {
	Threshold float64 `yaml:"threshold"`
}

type Output struct {
	// Dir receives per-predicate result files.
	Dir string `yaml:"dir"`
	// GroundRules enables the ground-rule satisfaction report.
	GroundRules bool `yaml:"ground_rules"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	rc := reasoner.DefaultConfig()
	return Config{
		Database:  Database{Path: ":memory:"},
		Grounding: Grounding{LearningRate: 1.0},
		Reasoner: Reasoner{
			MaxEpochs: rc.MaxEpochs,
			Tolerance: rc.Tolerance,
			Metric:    "movement",
			Seed:      rc.Seed,
			Workers:   rc.Workers,
		},
		Learning: Learning{Steps: 25, StepSize: 1.0},
		Eval:     Eval{Threshold: 0.5},
		Output:   Output{Dir: "inferred"},
	}
}

// Load reads a YAML config file over the defaults, then applies environment
// overrides. An empty path means defaults plus environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SOFTLOGIC_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("SOFTLOGIC_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SOFTLOGIC_WORKERS: %w", err)
		}
		c.Reasoner.Workers = n
	}
	if v := os.Getenv("SOFTLOGIC_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SOFTLOGIC_SEED: %w", err)
		}
		c.Reasoner.Seed = n
	}
	if v := os.Getenv("SOFTLOGIC_MAX_EPOCHS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SOFTLOGIC_MAX_EPOCHS: %w", err)
		}
		c.Reasoner.MaxEpochs = n
	}
	return nil
}

// Validate rejects values the downstream packages would also reject, so the
// failure carries a config-level message instead of a mid-run one.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Grounding.LearningRate <= 0 {
		return fmt.Errorf("grounding.learning_rate must be positive, got %g", c.Grounding.LearningRate)
	}
	if c.Grounding.PriorWeight < 0 {
		return fmt.Errorf("grounding.prior_weight must be non-negative, got %g", c.Grounding.PriorWeight)
	}
	if c.Reasoner.MaxEpochs <= 0 {
		return fmt.Errorf("reasoner.max_epochs must be positive, got %d", c.Reasoner.MaxEpochs)
	}
	if c.Reasoner.Tolerance < 0 {
		return fmt.Errorf("reasoner.tolerance must be non-negative, got %g", c.Reasoner.Tolerance)
	}
	if _, err := reasoner.ParseMetric(c.Reasoner.Metric); err != nil {
		return fmt.Errorf("reasoner.metric: %w", err)
	}
	if c.Reasoner.Workers < 1 {
		return fmt.Errorf("reasoner.workers must be at least 1, got %d", c.Reasoner.Workers)
	}
	if c.Learning.Steps <= 0 {
		return fmt.Errorf("learning.steps must be positive, got %d", c.Learning.Steps)
	}
	if c.Learning.StepSize <= 0 {
		return fmt.Errorf("learning.step_size must be positive, got %g", c.Learning.StepSize)
	}
	if c.Eval.Threshold < 0 || c.Eval.Threshold > 1 {
		return fmt.Errorf("eval.threshold must lie in [0,1], got %g", c.Eval.Threshold)
	}
	return nil
}

// ReasonerConfig converts the YAML section into the reasoner's own config.
func (c *Config) ReasonerConfig() (reasoner.Config, error) {
	metric, err := reasoner.ParseMetric(c.Reasoner.Metric)
	if err != nil {
		return reasoner.Config{}, err
	}
	rc := reasoner.DefaultConfig()
	rc.MaxEpochs = c.Reasoner.MaxEpochs
	rc.Tolerance = c.Reasoner.Tolerance
	rc.Metric = metric
	if c.Reasoner.Shuffle != nil {
		rc.Shuffle = *c.Reasoner.Shuffle
	}
	rc.Seed = c.Reasoner.Seed
	rc.Workers = c.Reasoner.Workers
	return rc, nil
}
