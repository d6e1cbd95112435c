package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"softlogic/internal/database"
	"softlogic/internal/learning"
	"softlogic/internal/logging"
	"softlogic/internal/model"
)

var learnedModelPath string

var learnCmd = &cobra.Command{
	Use:   "learn [model file] [data file]",
	Short: "Fit rule weights against the truth partition",
	Long: `Runs voted-perceptron weight learning: each step infers target values
under the current weights and moves every rule weight toward agreement
with the truth partition. The fitted model is written as a new rule file.`,
	Args: cobra.ExactArgs(2),
	RunE: runLearn,
}

func init() {
	learnCmd.Flags().StringVarP(&learnedModelPath, "output", "o", "", "Path for the learned rule file (default: <model>-learned.psl next to the input)")
	addOverrideFlags(learnCmd)
}

func runLearn(cmd *cobra.Command, args []string) error {
	p, err := loadProblem(args[0], args[1])
	if err != nil {
		return err
	}
	defer p.close()

	truth, err := p.store.AtomsInPartition(database.PartitionTruth)
	if err != nil {
		return err
	}
	if len(truth) == 0 {
		return fmt.Errorf("learning needs a truth partition; the data definition loads none")
	}

	rcfg, err := p.cfg.ReasonerConfig()
	if err != nil {
		return err
	}
	res, err := learning.Learn(cmd.Context(), p.model, p.gres, truth, learning.Config{
		Steps:    p.cfg.Learning.Steps,
		StepSize: p.cfg.Learning.StepSize,
		Reasoner: rcfg,
	})
	if err != nil {
		return err
	}
	logging.CLI().Info("weights fitted",
		zap.String("run_id", p.runID),
		zap.Int("steps", res.Steps),
		zap.Float32s("weights", res.Weights))

	out := learnedModelPath
	if out == "" {
		base := args[0]
		out = base[:len(base)-len(filepath.Ext(base))] + "-learned.psl"
	}
	if err := writeModel(out, p.model); err != nil {
		return err
	}
	fmt.Printf("Learned %d rule weights in %d steps; model written to %s\n", len(res.Weights), res.Steps, out)
	return nil
}

// writeModel emits the model as a rule file the parser accepts back.
func writeModel(path string, m *model.Model) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	for _, r := range m.Rules {
		fmt.Fprintln(w, r.String())
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
