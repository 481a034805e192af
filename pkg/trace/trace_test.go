package trace

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func TestInitTracing_HTTP(t *testing.T) {
	// http avoids dialing a grpc connection
	cfg := &Config{
		Enabled:     true,
		ServiceName: "anachak-test",
		Protocol:    "http",
		Insecure:    true,
		SamplerRate: 2.5,
		Environment: "dev",
		Headers:     map[string]string{"x-test": "1"},
	}

	shutdown, err := InitTracing(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	require.NoError(t, shutdown(context.Background()))
}

func TestClampRate(t *testing.T) {
	assert.Equal(t, 0.0, clampRate(-1))
	assert.Equal(t, 0.5, clampRate(0.5))
	assert.Equal(t, 1.0, clampRate(3))
}

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sr),
		sdktrace.WithResource(resource.Empty()),
	)
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func TestSpanScope_AttrsAndEnd(t *testing.T) {
	sr := withRecorder(t)

	scope := Tracer("trace-test").Start(context.Background(), "storage.upload").
		WithAttrs(attribute.String("bucket", "anachak"))
	scope.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "storage.upload", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("bucket", "anachak"))
}

func TestSpanScope_Fail(t *testing.T) {
	sr := withRecorder(t)

	scope := Tracer("trace-test").Start(context.Background(), "auth.sign_in")
	scope.Fail(nil)
	scope.Fail(errors.New("invalid credentials"))
	scope.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "invalid credentials", spans[0].Status().Description)
}

func TestNilScopeIsSafe(t *testing.T) {
	var s *SpanScope
	assert.NotPanics(t, func() {
		s.WithAttrs(attribute.Int("n", 1))
		s.Fail(errors.New("x"))
		s.End()
	})
}
