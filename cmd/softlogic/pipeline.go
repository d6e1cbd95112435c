package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"softlogic/internal/config"
	"softlogic/internal/database"
	"softlogic/internal/grounding"
	"softlogic/internal/logging"
	"softlogic/internal/model"
)

// problem bundles everything both commands need after setup: the parsed
// model, the atom store, and the grounding result.
type problem struct {
	runID string
	cfg   config.Config
	spec  *config.DataSpec
	model *model.Model
	store *database.Store
	gres  *grounding.Result
}

// Flag overrides applied on top of the config file.
var (
	flagDatabase    string
	flagOutput      string
	flagGroundRules bool
	flagThreshold   float64
)

func addOverrideFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagDatabase, "database", "", "Atom database path (overrides config)")
	cmd.Flags().StringVar(&flagOutput, "output-dir", "", "Directory for inferred value files (overrides config)")
	cmd.Flags().BoolVar(&flagGroundRules, "groundrules", false, "Write the ground-rule satisfaction report")
	cmd.Flags().Float64Var(&flagThreshold, "eval-threshold", -1, "Discretization threshold for evaluation (overrides config)")
}

// loadProblem parses the rule file and data definition, loads every data
// file into the store's partitions, and grounds the model.
func loadProblem(modelPath, dataPath string) (*problem, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if flagDatabase != "" {
		cfg.Database.Path = flagDatabase
	}
	if flagOutput != "" {
		cfg.Output.Dir = flagOutput
	}
	if flagGroundRules {
		cfg.Output.GroundRules = true
	}
	if flagThreshold >= 0 {
		cfg.Eval.Threshold = flagThreshold
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m, err := model.ParseModelFile(modelPath)
	if err != nil {
		return nil, err
	}
	spec, err := config.LoadDataSpec(dataPath)
	if err != nil {
		return nil, err
	}
	if err := m.CheckPredicates(spec.Declared()); err != nil {
		return nil, err
	}

	store, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	p := &problem{runID: uuid.NewString(), cfg: cfg, spec: spec, model: m, store: store}
	log := logging.CLI().With(zap.String("run_id", p.runID))
	log.Info("problem loaded",
		zap.String("model", modelPath),
		zap.String("data", dataPath),
		zap.Int("rules", len(m.Rules)))

	sections := []struct {
		partition string
		files     map[string][]string
	}{
		{database.PartitionObservations, spec.Observations},
		{database.PartitionTargets, spec.Targets},
		{database.PartitionTruth, spec.Truth},
	}
	for _, sec := range sections {
		for pred, files := range sec.files {
			arity, ok := spec.Arity(pred)
			if !ok {
				return nil, fmt.Errorf("partition %s references undeclared predicate %s", sec.partition, pred)
			}
			for _, f := range files {
				n, err := store.LoadTSV(sec.partition, pred, arity, spec.Resolve(f))
				if err != nil {
					p.close()
					return nil, err
				}
				log.Debug("data file loaded",
					zap.String("partition", sec.partition),
					zap.String("predicate", pred),
					zap.String("file", f),
					zap.Int("atoms", n))
			}
		}
	}

	observed, err := store.AtomsInPartition(database.PartitionObservations)
	if err != nil {
		p.close()
		return nil, err
	}
	targets, err := store.AtomsInPartition(database.PartitionTargets)
	if err != nil {
		p.close()
		return nil, err
	}
	if len(targets) == 0 {
		p.close()
		return nil, fmt.Errorf("no target atoms loaded; nothing to infer")
	}

	p.gres, err = grounding.Ground(m, observed, targets, grounding.Config{
		LearningRate: cfg.Grounding.LearningRate,
		PriorWeight:  cfg.Grounding.PriorWeight,
	})
	if err != nil {
		p.close()
		return nil, err
	}
	return p, nil
}

func (p *problem) close() {
	if p.store != nil {
		if err := p.store.Close(); err != nil {
			logging.CLI().Warn("closing atom store", zap.Error(err))
		}
	}
}

// inferredAtoms pairs the arena's final values with their atoms.
func (p *problem) inferredAtoms(values []float32) []model.Atom {
	out := make([]model.Atom, len(p.gres.Variables))
	for i, a := range p.gres.Variables {
		a.Value = values[i]
		out[i] = a
	}
	return out
}
