package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"softlogic/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string

	version = "0.3.0"
)

var rootCmd = &cobra.Command{
	Use:   "softlogic",
	Short: "softlogic - weighted logic inference over soft truth values",
	Long: `softlogic grounds weighted logical rules against relational data and
infers soft truth values for the unknowns by stochastic subgradient descent.

A problem is three inputs: a rule file, a data definition, and TSV data
files. Rules are weighted implications over predicates; atoms live in three
partitions (observations, targets, truth). Inference fills in the targets;
learning fits the rule weights against the truth partition.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Init(verbose)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the softlogic version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("softlogic %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Runtime configuration file (YAML)")

	rootCmd.AddCommand(inferCmd)
	rootCmd.AddCommand(learnCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.CLI().Info("shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
