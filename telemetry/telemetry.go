// Package telemetry installs the OpenTelemetry trace pipeline.
package telemetry

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Shutdown flushes and stops the trace pipeline.
type Shutdown func(context.Context) error

// Setup exports spans over OTLP/gRPC to endpoint and installs the provider
// globally. An empty endpoint keeps the global no-op provider.
func Setup(ctx context.Context, endpoint, service string) (trace.TracerProvider, Shutdown, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return otel.GetTracerProvider(), func(context.Context) error { return nil }, nil
	}

	exp, err := otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(endpoint))
	if err != nil {
		return nil, nil, fmt.Errorf("otlp trace exporter: %w", err)
	}
	tp := NewProvider(service, sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp, tp.Shutdown, nil
}

// NewProvider builds an SDK provider whose spans carry service.name.
func NewProvider(service string, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	res := sdkresource.NewSchemaless(attribute.String("service.name", service))
	return sdktrace.NewTracerProvider(append([]sdktrace.TracerProviderOption{sdktrace.WithResource(res)}, opts...)...)
}
