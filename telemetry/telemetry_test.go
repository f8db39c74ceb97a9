package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetupWithoutEndpoint(t *testing.T) {
	prev := otel.GetTracerProvider()

	tp, shutdown, err := Setup(context.Background(), "  ", "juniortour")
	require.NoError(t, err)
	assert.Same(t, prev, tp)
	assert.Same(t, prev, otel.GetTracerProvider())
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupInstallsSDKProvider(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	tp, shutdown, err := Setup(context.Background(), "http://127.0.0.1:4317", "juniortour")
	require.NoError(t, err)
	_, ok := tp.(*sdktrace.TracerProvider)
	assert.True(t, ok)
	assert.Same(t, tp, otel.GetTracerProvider())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = shutdown(ctx)
}

func TestNewProviderTagsService(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := NewProvider("juniortour", sdktrace.WithSpanProcessor(sr))

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Resource().Attributes(), attribute.String("service.name", "juniortour"))
}
