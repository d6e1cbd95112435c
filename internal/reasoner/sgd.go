package reasoner

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"

	"go.uber.org/zap"

	"softlogic/internal/logging"
	"softlogic/internal/term"
)

// Config controls a reasoner run.
type Config struct {
	// MaxEpochs caps the number of full passes over the term collection.
	MaxEpochs int
	// Tolerance is the convergence threshold for the tracked metric.
	Tolerance float32
	// Metric selects what the convergence monitor tracks.
	Metric Metric
	// Shuffle reshuffles term visitation order every epoch. The scan is
	// stochastic either way; reshuffling avoids systematic bias from a
	// fixed grounding order.
	Shuffle bool
	// Seed seeds the shuffle RNG, making trajectories reproducible.
	Seed int64
	// Workers selects the parallel scheduler when > 1. The relaxed mode
	// changes the numerical trajectory and must be opted into explicitly;
	// it also requires a concurrent-safe store.
	Workers int
}

// DefaultConfig returns the settings used when a caller has no opinion.
func DefaultConfig() Config {
	return Config{
		MaxEpochs: 200,
		Tolerance: 1e-4,
		Metric:    MetricMovement,
		Shuffle:   true,
		Seed:      1,
		Workers:   1,
	}
}

// Result reports the outcome of a run. Hitting the epoch cap is not an
// error: Converged is simply false. Cancellation is likewise a normal,
// distinct outcome.
type Result struct {
	FinalObjective float32
	Epochs         int
	Converged      bool
	Canceled       bool
}

type state int

const (
	stateInitialized state = iota
	stateRunning
	stateDone
	stateClosed
)

// Reasoner walks the term collection epoch by epoch, applying per-variable
// subgradient steps with the shared diminishing schedule. It mutates the
// store it was handed but does not own it; callers read the final values
// from the store after Run returns.
type Reasoner struct {
	cfg     Config
	terms   []term.ObjectiveTerm
	store   Store
	monitor *Monitor

	// iteration is 1-based and incremented once per term visit, shared
	// across epochs and across all workers so the step schedule decays
	// consistently over the whole run.
	iteration atomic.Int64

	rng   *rand.Rand
	order []int
	st    state
	log   *zap.Logger
}

// New binds a term collection to a variable store. Every hyperplane index is
// validated against the store bounds here; an out-of-range reference is a
// grounding bug and fatal before any optimization begins.
func New(cfg Config, terms []term.ObjectiveTerm, store Store) (*Reasoner, error) {
	if store == nil {
		return nil, fmt.Errorf("reasoner requires a variable store")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Workers > 1 && !store.Concurrent() {
		return nil, fmt.Errorf("parallel scheduler (%d workers) requires a concurrent-safe store", cfg.Workers)
	}
	for i, t := range terms {
		h := t.Hyperplane()
		if h == nil {
			return nil, fmt.Errorf("term %d has no hyperplane", i)
		}
		if h.MaxIndex() >= store.Len() {
			return nil, fmt.Errorf("term %d references variable %d but store holds %d", i, h.MaxIndex(), store.Len())
		}
	}

	monitor, err := NewMonitor(cfg.Metric, cfg.Tolerance, cfg.MaxEpochs)
	if err != nil {
		return nil, err
	}

	order := make([]int, len(terms))
	for i := range order {
		order[i] = i
	}

	return &Reasoner{
		cfg:     cfg,
		terms:   terms,
		store:   store,
		monitor: monitor,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		order:   order,
		log:     logging.Reasoner(),
	}, nil
}

// Terms exposes the live term collection. Weight learning mutates weights
// through it between runs.
func (r *Reasoner) Terms() []term.ObjectiveTerm { return r.terms }

// Store returns the variable store bound at construction.
func (r *Reasoner) Store() Store { return r.store }

// Objective returns the aggregate weighted objective under the current
// variable values.
func (r *Reasoner) Objective() float32 {
	var sum float32
	for _, t := range r.terms {
		sum += t.Evaluate(r.store)
	}
	return sum
}

// Run optimizes until convergence, the epoch cap, or cancellation. It may be
// called again after a completed run: with an already-converged store the
// first epoch moves below tolerance and the run terminates immediately.
// Between-run weight mutation via SetWeight is supported; the iteration
// counter keeps decaying across runs.
func (r *Reasoner) Run(ctx context.Context) (Result, error) {
	if r.st == stateClosed {
		return Result{}, fmt.Errorf("reasoner is closed")
	}
	if r.st == stateRunning {
		return Result{}, fmt.Errorf("reasoner is already running")
	}
	r.st = stateRunning
	r.monitor.Reset()

	var sig Signal
	canceled := false
	for {
		// The stop signal is honored between epochs, never mid-epoch, so
		// a cancelled run still leaves a consistent store.
		select {
		case <-ctx.Done():
			canceled = true
		default:
		}
		if canceled {
			break
		}

		var movement float32
		var err error
		if r.cfg.Workers > 1 {
			movement, err = r.runEpochParallel(ctx)
		} else {
			movement, err = r.runEpoch()
		}
		if err != nil {
			r.st = stateDone
			return Result{}, err
		}

		var objective float32
		if r.cfg.Metric == MetricObjective {
			objective = r.Objective()
		}
		sig = r.monitor.Observe(movement, objective)
		r.log.Debug("epoch complete",
			zap.Int("epoch", r.monitor.Epochs()),
			zap.Float32("movement", movement),
			zap.Int64("iterations", r.iteration.Load()))
		if sig != SignalContinue {
			break
		}
	}

	r.st = stateDone
	res := Result{
		FinalObjective: r.Objective(),
		Epochs:         r.monitor.Epochs(),
		Converged:      sig == SignalConverged,
		Canceled:       canceled,
	}
	r.log.Info("run finished",
		zap.Int("epochs", res.Epochs),
		zap.Bool("converged", res.Converged),
		zap.Bool("canceled", res.Canceled),
		zap.Float32("objective", res.FinalObjective))
	return res, nil
}

// Close releases epoch-scoped buffers. The store and its final values remain
// owned by the caller.
func (r *Reasoner) Close() {
	r.order = nil
	r.st = stateClosed
}

// runEpoch performs one full synchronous pass over the term collection.
func (r *Reasoner) runEpoch() (float32, error) {
	if r.cfg.Shuffle {
		r.rng.Shuffle(len(r.order), func(i, j int) {
			r.order[i], r.order[j] = r.order[j], r.order[i]
		})
	}

	var movement float32
	for _, idx := range r.order {
		moved, err := r.visit(r.terms[idx])
		if err != nil {
			return 0, err
		}
		movement += moved
	}
	return movement, nil
}

// visit applies one term's gradient steps to every variable it references.
// The iteration counter advances once per visit, not once per variable, and
// before first use, so division always sees a counter of at least 1.
func (r *Reasoner) visit(t term.ObjectiveTerm) (float32, error) {
	iteration := r.iteration.Add(1)
	h := t.Hyperplane()
	dot := h.Dot(r.store)
	if !t.IsActive(dot) {
		return 0, nil
	}

	var movement float32
	for pos := 0; pos < h.Size(); pos++ {
		g := t.ComputeGradient(iteration, pos, dot)
		if math.IsNaN(float64(g)) || math.IsInf(float64(g), 0) {
			return 0, fmt.Errorf("non-finite gradient %v at iteration %d for variable %d", g, iteration, h.VariableIndex(pos))
		}
		movement += r.store.ClampStep(h.VariableIndex(pos), g)
	}
	return movement, nil
}
