// Package logging provides categorized zap loggers for softlogic.
// A single root logger is built at startup; packages fetch named child
// loggers per category. Before Init the loggers are no-ops, so library
// code may log unconditionally.
package logging

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names a subsystem log stream.
type Category string

const (
	CategoryCLI       Category = "cli"       // Launcher, argument handling, output
	CategoryGrounding Category = "grounding" // Rule expansion against the data
	CategoryReasoner  Category = "reasoner"  // SGD epochs, convergence
	CategoryLearning  Category = "learning"  // Weight learning iterations
	CategoryDatabase  Category = "database"  // Atom store operations
)

var (
	mu       sync.RWMutex
	root     = zap.NewNop()
	children = make(map[Category]*zap.Logger)
)

// Init builds the process-wide root logger. verbose switches the level to
// debug. Call once at startup; later calls replace the root and invalidate
// cached category loggers.
func Init(verbose bool) error {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	Replace(logger)
	return nil
}

// Replace swaps in a prebuilt root logger. Tests use it with zaptest.
func Replace(logger *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	root = logger
	children = make(map[Category]*zap.Logger)
}

// L returns the named logger for a category.
func L(category Category) *zap.Logger {
	mu.RLock()
	if l, ok := children[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := children[category]; ok {
		return l
	}
	l := root.Named(string(category))
	children[category] = l
	return l
}

// Sync flushes buffered log entries. Call at shutdown.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = root.Sync()
}

// Per-category accessors, matching how call sites read.

func CLI() *zap.Logger       { return L(CategoryCLI) }
func Grounding() *zap.Logger { return L(CategoryGrounding) }
func Reasoner() *zap.Logger  { return L(CategoryReasoner) }
func Learning() *zap.Logger  { return L(CategoryLearning) }
func Database() *zap.Logger  { return L(CategoryDatabase) }
