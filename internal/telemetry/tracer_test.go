package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderDisabled(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProviderRejectsUnknownExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		Enabled:      true,
		ServiceName:  "relayd",
		ExporterType: "carrier-pigeon",
	})
	assert.Error(t, err)
}

func TestTracerReturnsTracer(t *testing.T) {
	assert.NotNil(t, Tracer("test"))
}
