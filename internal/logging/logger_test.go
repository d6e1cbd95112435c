package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCategoryLoggersNamed(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	Replace(zap.New(core))
	defer Replace(zap.NewNop())

	Reasoner().Info("epoch done")
	Grounding().Debug("expanding rule")

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "reasoner", entries[0].LoggerName)
	assert.Equal(t, "grounding", entries[1].LoggerName)
}

func TestLoggerCached(t *testing.T) {
	Replace(zap.NewNop())
	assert.Same(t, L(CategoryDatabase), L(CategoryDatabase))
}
