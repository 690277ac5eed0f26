// Package observability sets up OpenTelemetry tracing for the process.
package observability

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

// InitTracing installs the global tracer provider. Exporter "stdout" writes
// spans as JSON to w (os.Stdout when nil); "none" or "" installs a no-op
// provider. The returned func flushes pending spans.
func InitTracing(serviceName, exporter string, w io.Writer) (trace.TracerProvider, func(context.Context) error, error) {
	switch strings.ToLower(strings.TrimSpace(exporter)) {
	case "", ExporterNone:
		tp := nooptrace.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp, func(context.Context) error { return nil }, nil

	case ExporterStdout:
		if w == nil {
			w = os.Stdout
		}
		spanExporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, nil, fmt.Errorf("create stdout span exporter: %w", err)
		}

		tp := sdktrace.NewTracerProvider(
			sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
			sdktrace.WithBatcher(spanExporter),
		)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		return tp, tp.Shutdown, nil

	default:
		return nil, nil, fmt.Errorf("unknown trace exporter %q", exporter)
	}
}
