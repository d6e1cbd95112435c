package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"softlogic/internal/database"
	"softlogic/internal/eval"
	"softlogic/internal/logging"
	"softlogic/internal/reasoner"
)

var inferCmd = &cobra.Command{
	Use:   "infer [model file] [data file]",
	Short: "Infer soft truth values for the target atoms",
	Long: `Grounds the rules against the loaded atoms and runs stochastic
subgradient descent over the resulting objective. Inferred values are
written back to the database, to per-predicate files under the output
directory, and scored against the truth partition when one is loaded.`,
	Args: cobra.ExactArgs(2),
	RunE: runInfer,
}

func init() {
	addOverrideFlags(inferCmd)
}

func runInfer(cmd *cobra.Command, args []string) error {
	p, err := loadProblem(args[0], args[1])
	if err != nil {
		return err
	}
	defer p.close()

	rcfg, err := p.cfg.ReasonerConfig()
	if err != nil {
		return err
	}
	var store reasoner.Store
	if rcfg.Workers > 1 {
		store = reasoner.NewAtomicVariableStoreFrom(p.gres.Initial)
	} else {
		store = reasoner.NewVariableStoreFrom(p.gres.Initial)
	}
	r, err := reasoner.New(rcfg, p.gres.Terms, store)
	if err != nil {
		return err
	}
	defer r.Close()

	res, err := r.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("inference failed: %w", err)
	}
	log := logging.CLI().With(zap.String("run_id", p.runID))
	log.Info("inference finished",
		zap.Int("epochs", res.Epochs),
		zap.Bool("converged", res.Converged),
		zap.Bool("canceled", res.Canceled),
		zap.Float32("objective", r.Objective()))

	inferred := p.inferredAtoms(store.Snapshot())
	if err := p.store.WriteInferred(inferred); err != nil {
		return err
	}
	if err := writeInferredFiles(p.cfg.Output.Dir, inferred); err != nil {
		return err
	}
	if p.cfg.Output.GroundRules {
		if err := writeGroundRules(p.cfg.Output.Dir, p.model, p.gres, store); err != nil {
			return err
		}
	}

	truth, err := p.store.AtomsInPartition(database.PartitionTruth)
	if err != nil {
		return err
	}
	if len(truth) > 0 {
		pairs, err := eval.Align(inferred, truth)
		if err != nil {
			return err
		}
		cont := eval.Continuous(pairs)
		disc, err := eval.Discrete(pairs, p.cfg.Eval.Threshold)
		if err != nil {
			return err
		}
		fmt.Printf("Evaluation over %d atoms: MAE=%.4f MSE=%.4f\n", cont.Count, cont.MAE, cont.MSE)
		fmt.Printf("At threshold %.2f: precision=%.4f recall=%.4f F1=%.4f accuracy=%.4f\n",
			disc.Threshold, disc.Precision, disc.Recall, disc.F1, disc.Accuracy)
	}

	fmt.Printf("Inferred %d atoms in %d epochs (objective %.6f); results in %s\n",
		len(inferred), res.Epochs, r.Objective(), p.cfg.Output.Dir)
	return nil
}
