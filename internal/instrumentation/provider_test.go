package instrumentation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderDisabled(t *testing.T) {
	config := DefaultConfig()
	config.Enabled = false

	provider, err := NewProvider(context.Background(), config)
	require.NoError(t, err)

	assert.False(t, provider.Enabled())
	assert.NotNil(t, provider.Metrics(), "disabled provider must still return a usable no-op recorder")
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProviderPrometheus(t *testing.T) {
	config := DefaultConfig()
	config.Enabled = true
	config.MetricsExporter = ExporterPrometheus
	config.TracingExporter = ExporterNone

	provider, err := NewProvider(context.Background(), config)
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(context.Background()) }()

	assert.True(t, provider.Enabled())
	assert.NotNil(t, provider.Metrics())
	assert.NotNil(t, provider.Tracer("test"))
}

func TestNewProviderRejectsUnknownExporter(t *testing.T) {
	config := DefaultConfig()
	config.Enabled = true
	config.MetricsExporter = "statsd"

	_, err := NewProvider(context.Background(), config)
	assert.Error(t, err)
}

func TestNewProviderOTLPRequiresEndpoint(t *testing.T) {
	config := DefaultConfig()
	config.Enabled = true
	config.MetricsExporter = ExporterOTLP
	config.OTLPEndpoint = ""

	_, err := NewProvider(context.Background(), config)
	assert.Error(t, err)
}

func TestTracerOnDisabledProviderIsNoop(t *testing.T) {
	config := DefaultConfig()
	config.Enabled = false

	provider, err := NewProvider(context.Background(), config)
	require.NoError(t, err)

	tracer := provider.Tracer("test")
	require.NotNil(t, tracer)

	_, span := tracer.Start(context.Background(), "op")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}
