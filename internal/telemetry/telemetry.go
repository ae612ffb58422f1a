// Package telemetry sets up tracing spans and Prometheus metrics for the
// evaluation pipeline, in the style of the pack's Camunda-Workers
// observability package: a small Observability struct wrapping an OTel
// meter/tracer pair, degrading to no-ops when an exporter can't be built
// rather than failing startup.
package telemetry

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// Observability bundles the tracer and meter providers for one process.
// Both degrade to no-op implementations when their exporters can't be
// constructed (no Jaeger endpoint configured, Prometheus registration
// failure) so telemetry setup never blocks startup.
type Observability struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *metric.MeterProvider

	evaluationCounter  otelmetric.Int64Counter
	evaluationDuration otelmetric.Float64Histogram
	llmFallbackCounter otelmetric.Int64Counter
}

// New wires an Observability for serviceName. jaegerEndpoint enables trace
// export when non-empty, per §6's OTEL_EXPORTER_JAEGER_ENDPOINT; an empty
// endpoint leaves tracing spans no-op'd (otel.Tracer still works, it just
// reports to nowhere) exactly as the specification requires.
func New(serviceName, jaegerEndpoint string) *Observability {
	obs := &Observability{}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceNameKey.String(serviceName),
	))
	if err != nil {
		slog.Warn("telemetry: failed to build resource, using default", "error", err)
		res = resource.Default()
	}

	if jaegerEndpoint != "" {
		exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(jaegerEndpoint)))
		if err != nil {
			slog.Warn("telemetry: failed to create jaeger exporter, tracing disabled", "error", err)
		} else {
			tp := sdktrace.NewTracerProvider(
				sdktrace.WithBatcher(exp),
				sdktrace.WithResource(res),
			)
			otel.SetTracerProvider(tp)
			obs.tracerProvider = tp
		}
	}

	promExporter, err := prometheus.New()
	if err != nil {
		slog.Warn("telemetry: failed to create prometheus exporter, metrics disabled", "error", err)
		return obs
	}

	mp := metric.NewMeterProvider(metric.WithReader(promExporter), metric.WithResource(res))
	otel.SetMeterProvider(mp)
	obs.meterProvider = mp

	meter := mp.Meter(serviceName)

	obs.evaluationCounter, _ = meter.Int64Counter(
		"evaluations.completed",
		otelmetric.WithDescription("Number of evaluations completed, by outcome"),
	)
	obs.evaluationDuration, _ = meter.Float64Histogram(
		"evaluations.duration",
		otelmetric.WithDescription("End-to-end evaluation pipeline duration"),
		otelmetric.WithUnit("ms"),
	)
	obs.llmFallbackCounter, _ = meter.Int64Counter(
		"llm.fallbacks",
		otelmetric.WithDescription("Number of agent calls that fell back to rule-based output"),
	)

	return obs
}

// RecordEvaluation records one pipeline run's outcome and duration. Safe to
// call on a nil *Observability (no telemetry wired).
func (o *Observability) RecordEvaluation(ctx context.Context, outcome string, duration time.Duration) {
	if o == nil {
		return
	}
	if o.evaluationCounter != nil {
		o.evaluationCounter.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("outcome", outcome)))
	}
	if o.evaluationDuration != nil {
		o.evaluationDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

// RecordLLMFallback records one agent call degrading to its rule-based
// path, tagged by agent name. Safe to call on a nil *Observability.
func (o *Observability) RecordLLMFallback(ctx context.Context, agent string) {
	if o == nil {
		return
	}
	if o.llmFallbackCounter != nil {
		o.llmFallbackCounter.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("agent", agent)))
	}
}

// MetricsHandler exposes the Prometheus exposition endpoint for §6's
// GET /metrics.
func (o *Observability) MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// Shutdown flushes and releases the tracer/meter providers. Safe to call
// on a nil or zero-value Observability (e.g. when exporters failed to
// build).
func (o *Observability) Shutdown(ctx context.Context) {
	if o == nil {
		return
	}
	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			slog.Warn("telemetry: tracer provider shutdown error", "error", err)
		}
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil {
			slog.Warn("telemetry: meter provider shutdown error", "error", err)
		}
	}
}
