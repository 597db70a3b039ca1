package observability

import (
	"context"
	"errors"
	"testing"

	"jobboard/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := Tracer
	Tracer = tp.Tracer("test")
	t.Cleanup(func() {
		Tracer = prev
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func TestStartSpan(t *testing.T) {
	rec := recordSpans(t)

	_, end := StartSpan(context.Background(), "provider.set_verification", AttrProviderID.Int64(4))
	end(nil)
	_, end = StartSpan(context.Background(), "application.create", AttrJobID.Int64(9))
	end(errors.New("job closed"))

	spans := rec.Ended()
	require.Len(t, spans, 2)

	ok := spans[0]
	assert.Equal(t, "provider.set_verification", ok.Name())
	assert.Equal(t, codes.Unset, ok.Status().Code)
	assert.Contains(t, ok.Attributes(), AttrProviderID.Int64(4))

	failed := spans[1]
	assert.Equal(t, codes.Error, failed.Status().Code)
	assert.Equal(t, "job closed", failed.Status().Description)
	require.Len(t, failed.Events(), 1)
	assert.Equal(t, "exception", failed.Events()[0].Name)
}

func TestInitTracing(t *testing.T) {
	prev := Tracer
	t.Cleanup(func() { Tracer = prev })

	t.Run("disabled", func(t *testing.T) {
		shutdown, err := InitTracing(TracingConfig{ServiceName: ServiceName})
		require.NoError(t, err)
		assert.NoError(t, shutdown(context.Background()))
	})

	t.Run("unknown exporter", func(t *testing.T) {
		_, err := InitTracing(TracingConfig{ServiceName: ServiceName, Enabled: true, Exporter: "zipkin"})
		assert.ErrorContains(t, err, "zipkin")
	})
}

func TestTracingConfigFrom(t *testing.T) {
	cfg := &config.Config{
		Env:                "staging",
		TracingEnabled:     true,
		TracingExporter:    "otlp",
		OTLPEndpoint:       "collector:4318",
		TracingSampleRatio: 0.25,
	}
	got := TracingConfigFrom(cfg, "2.1")
	assert.Equal(t, TracingConfig{
		ServiceName:    ServiceName,
		ServiceVersion: "2.1",
		Environment:    "staging",
		Enabled:        true,
		Exporter:       "otlp",
		OTLPEndpoint:   "collector:4318",
		SamplerRatio:   0.25,
	}, got)
}
