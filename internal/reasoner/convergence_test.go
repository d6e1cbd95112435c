package reasoner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("")
	require.NoError(t, err)
	assert.Equal(t, MetricMovement, m)

	m, err = ParseMetric("objective")
	require.NoError(t, err)
	assert.Equal(t, MetricObjective, m)

	_, err = ParseMetric("vibes")
	assert.Error(t, err)
}

func TestMonitorMovementMetric(t *testing.T) {
	m, err := NewMonitor(MetricMovement, 0.01, 5)
	require.NoError(t, err)

	assert.Equal(t, SignalContinue, m.Observe(0.5, 0))
	assert.Equal(t, SignalContinue, m.Observe(0.1, 0))
	assert.Equal(t, SignalConverged, m.Observe(0.005, 0))
	assert.Equal(t, 3, m.Epochs())
	assert.Equal(t, []float32{0.5, 0.1, 0.005}, m.History())
}

func TestMonitorEpochLimit(t *testing.T) {
	m, err := NewMonitor(MetricMovement, 0.01, 2)
	require.NoError(t, err)

	assert.Equal(t, SignalContinue, m.Observe(1, 0))
	assert.Equal(t, SignalEpochLimit, m.Observe(1, 0))
}

func TestMonitorObjectiveMetric(t *testing.T) {
	m, err := NewMonitor(MetricObjective, 0.05, 10)
	require.NoError(t, err)

	// First epoch has no previous objective to compare against.
	assert.Equal(t, SignalContinue, m.Observe(0, 10.0))
	assert.Equal(t, SignalContinue, m.Observe(0, 8.0))
	assert.Equal(t, SignalConverged, m.Observe(0, 7.99))
}

func TestMonitorReset(t *testing.T) {
	m, err := NewMonitor(MetricMovement, 0.01, 3)
	require.NoError(t, err)
	m.Observe(1, 0)
	m.Observe(1, 0)

	m.Reset()
	assert.Equal(t, 0, m.Epochs())
	assert.Empty(t, m.History())
	assert.Equal(t, SignalContinue, m.Observe(1, 0))
}

func TestMonitorValidation(t *testing.T) {
	_, err := NewMonitor(MetricMovement, 0.1, 0)
	assert.Error(t, err)
	_, err = NewMonitor(MetricMovement, -0.1, 5)
	assert.Error(t, err)
}
