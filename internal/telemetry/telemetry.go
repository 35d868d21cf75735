// Package telemetry wires OpenTelemetry tracing and metrics for the moviecards
// binaries. Metrics from the OTel meter and from plain Prometheus collectors end
// up in the same registry, which the gateway serves on /metrics.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/mark-c-hall/moviecards/internal/config"
)

type Providers struct {
	Registry *prometheus.Registry

	shutdown []func(context.Context) error
}

// Setup installs global meter and tracer providers. Span output for the
// stdout exporter goes to w.
func Setup(ctx context.Context, cfg config.TelemetryConfig, w io.Writer) (*Providers, error) {
	p := &Providers{Registry: prometheus.NewRegistry()}
	p.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	res := resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))

	metricExporter, err := otelprom.New(otelprom.WithRegisterer(p.Registry))
	if err != nil {
		return nil, fmt.Errorf("error creating prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(metricExporter),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	p.shutdown = append(p.shutdown, mp.Shutdown)

	spanExporter, err := newSpanExporter(ctx, cfg, w)
	if err != nil {
		return nil, errors.Join(err, p.Shutdown(ctx))
	}
	if spanExporter != nil {
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(spanExporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		p.shutdown = append(p.shutdown, tp.Shutdown)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return p, nil
}

// Shutdown flushes and stops every provider Setup installed.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(p.shutdown) - 1; i >= 0; i-- {
		if err := p.shutdown[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	p.shutdown = nil
	return errors.Join(errs...)
}

func newSpanExporter(ctx context.Context, cfg config.TelemetryConfig, w io.Writer) (sdktrace.SpanExporter, error) {
	switch cfg.TracesExporter {
	case "stdout":
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("error creating stdout trace exporter: %w", err)
		}
		return exporter, nil
	case "otlp":
		var opts []otlptracehttp.Option
		if cfg.OTLPEndpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint))
		}
		exporter, err := otlptracehttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("error creating otlp trace exporter: %w", err)
		}
		return exporter, nil
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown traces exporter %q", cfg.TracesExporter)
	}
}
