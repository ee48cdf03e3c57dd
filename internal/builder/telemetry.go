package builder

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("cppast.builder")
	meter  = otel.Meter("cppast.builder")
)

var (
	buildLatency     metric.Float64Histogram
	declarationsSeen metric.Int64Counter
	diagnosticsTotal metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the instruments once. Safe to call repeatedly.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		buildLatency, err = meter.Float64Histogram(
			"cppast_build_duration_seconds",
			metric.WithDescription("Duration of building the model of one translation unit"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		declarationsSeen, err = meter.Int64Counter(
			"cppast_declarations_total",
			metric.WithDescription("Declarations added to the model"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		diagnosticsTotal, err = meter.Int64Counter(
			"cppast_diagnostics_total",
			metric.WithDescription("Diagnostics recorded while building"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordBuildMetrics records one finished translation unit.
func recordBuildMetrics(ctx context.Context, file string, duration time.Duration, declarations, warnings, errors int) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("file", file))
	buildLatency.Record(ctx, duration.Seconds(), attrs)
	declarationsSeen.Add(ctx, int64(declarations), attrs)
	if warnings > 0 {
		diagnosticsTotal.Add(ctx, int64(warnings), metric.WithAttributes(
			attribute.String("file", file),
			attribute.String("severity", "warning"),
		))
	}
	if errors > 0 {
		diagnosticsTotal.Add(ctx, int64(errors), metric.WithAttributes(
			attribute.String("file", file),
			attribute.String("severity", "error"),
		))
	}
}

// startBuildSpan opens the span covering one translation unit.
// The caller must end the returned span.
func startBuildSpan(ctx context.Context, file string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Builder.Build",
		trace.WithAttributes(attribute.String("cppast.file", file)),
	)
}

func setBuildSpanResult(span trace.Span, declarations, errors int) {
	span.SetAttributes(
		attribute.Int("cppast.declaration_count", declarations),
		attribute.Int("cppast.error_count", errors),
	)
}
