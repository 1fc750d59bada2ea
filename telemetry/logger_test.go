package telemetry

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger_WritesToProvidedWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, InfoLevel)

	logger.Info("collected {Count} nodes", 3)

	assert.Contains(t, buf.String(), "collected")
}

func TestNullLogger_DiscardsOutput(t *testing.T) {
	logger := NewNullLogger()
	// Must not panic; nothing observable to assert beyond that.
	logger.Info("anything")
	logger.ForContext("k", "v").Error("still nothing")
}

func TestForContext_ReturnsChildLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, InfoLevel)
	child := logger.ForContext("Repository", "central")

	child.Info("fetching")
	assert.Contains(t, buf.String(), "fetching")
}
