package reasoner

import (
	"fmt"
	"math"
)

// Metric selects what the convergence monitor tracks across epochs.
type Metric int

const (
	// MetricMovement tracks the aggregate absolute change of all variable
	// values during an epoch.
	MetricMovement Metric = iota
	// MetricObjective tracks the change of the aggregate weighted objective
	// between epochs.
	MetricObjective
)

func (m Metric) String() string {
	switch m {
	case MetricMovement:
		return "movement"
	case MetricObjective:
		return "objective"
	default:
		return fmt.Sprintf("Metric(%d)", int(m))
	}
}

// ParseMetric maps a config string onto a Metric.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "", "movement":
		return MetricMovement, nil
	case "objective":
		return MetricObjective, nil
	default:
		return 0, fmt.Errorf("unknown convergence metric %q", s)
	}
}

// Signal is the monitor's verdict after an epoch.
type Signal int

const (
	SignalContinue Signal = iota
	SignalConverged
	SignalEpochLimit
)

// Monitor tracks per-epoch movement and objective history and decides when
// the run terminates.
type Monitor struct {
	metric    Metric
	tolerance float32
	maxEpochs int

	epochs        int
	lastObjective float32
	haveLast      bool
	history       []float32
}

// NewMonitor builds a monitor. maxEpochs must be positive; tolerance must be
// non-negative.
func NewMonitor(metric Metric, tolerance float32, maxEpochs int) (*Monitor, error) {
	if maxEpochs <= 0 {
		return nil, fmt.Errorf("max epochs must be positive, got %d", maxEpochs)
	}
	if tolerance < 0 || math.IsNaN(float64(tolerance)) {
		return nil, fmt.Errorf("tolerance must be non-negative, got %v", tolerance)
	}
	return &Monitor{metric: metric, tolerance: tolerance, maxEpochs: maxEpochs}, nil
}

// Observe records one finished epoch and returns the termination verdict.
// movement is the aggregate absolute value change over the epoch; objective
// is the aggregate weighted objective after the epoch.
func (m *Monitor) Observe(movement, objective float32) Signal {
	m.epochs++

	var tracked float32
	switch m.metric {
	case MetricObjective:
		if !m.haveLast {
			m.lastObjective = objective
			m.haveLast = true
			tracked = float32(math.Inf(1))
		} else {
			tracked = m.lastObjective - objective
			if tracked < 0 {
				tracked = -tracked
			}
			m.lastObjective = objective
		}
	default:
		tracked = movement
	}
	m.history = append(m.history, tracked)

	if tracked <= m.tolerance {
		return SignalConverged
	}
	if m.epochs >= m.maxEpochs {
		return SignalEpochLimit
	}
	return SignalContinue
}

// Epochs returns the number of epochs observed so far.
func (m *Monitor) Epochs() int { return m.epochs }

// History returns the tracked quantity per epoch, oldest first.
func (m *Monitor) History() []float32 {
	out := make([]float32, len(m.history))
	copy(out, m.history)
	return out
}

// Reset clears the monitor for a fresh run with the same settings.
func (m *Monitor) Reset() {
	m.epochs = 0
	m.haveLast = false
	m.lastObjective = 0
	m.history = m.history[:0]
}
