package app

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const serviceName = "tilecomp"

// shutdownFunc flushes and stops a telemetry component.
type shutdownFunc func(context.Context) error

// newTracerProvider builds the tracer provider for the configured exporter.
// It returns nil for the "none" exporter.
func newTracerProvider(exporter string, w io.Writer) (*sdktrace.TracerProvider, error) {
	switch exporter {
	case "", "none":
		return nil, nil
	case "stdout":
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", exporter)
	}

	exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
	}
	res := resource.NewWithAttributes("", attribute.String("service.name", serviceName))

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	), nil
}

// initTracing installs the global tracer provider used by the execution
// system and returns its shutdown function.
func (app *App) initTracing() (shutdownFunc, error) {
	tp, err := newTracerProvider(app.config.TraceExporter, app.outW)
	if err != nil {
		return nil, err
	}
	if tp == nil {
		return func(context.Context) error { return nil }, nil
	}
	otel.SetTracerProvider(tp)
	app.logger.Debug("Tracing enabled.", "exporter", app.config.TraceExporter)
	return tp.Shutdown, nil
}
