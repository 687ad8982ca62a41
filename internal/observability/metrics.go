package observability

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records evaluation metrics.
// Use NewMetricsRecorder for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordEval records one evaluation with its status and duration.
	RecordEval(ctx context.Context, status string, d time.Duration)

	// RecordParse records the size of a parsed expression tree.
	RecordParse(ctx context.Context, nodes int)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	calls   metric.Int64Counter
	latency metric.Float64Histogram
	nodes   metric.Int64Histogram
}

func newOtelMetrics(mp metric.MeterProvider) (*otelMetrics, error) {
	meter := mp.Meter("mevac")

	calls, err := meter.Int64Counter("mevac.eval.calls",
		metric.WithDescription("Number of point evaluations"),
	)
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram("mevac.eval.latency_us",
		metric.WithDescription("Point evaluation latency in microseconds"),
		metric.WithUnit("us"),
	)
	if err != nil {
		return nil, err
	}

	nodes, err := meter.Int64Histogram("mevac.parse.nodes",
		metric.WithDescription("Nodes in parsed expression trees"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{calls: calls, latency: latency, nodes: nodes}, nil
}

// NewMetricsRecorder returns a MetricsRecorder using the given meter provider,
// or the global provider if mp is nil. If metrics initialization fails, it
// returns a no-op recorder.
func NewMetricsRecorder(mp metric.MeterProvider) MetricsRecorder {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	m, err := newOtelMetrics(mp)
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordEval records an evaluation.
func (m *otelMetrics) RecordEval(ctx context.Context, status string, d time.Duration) {
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.calls.Add(ctx, 1, attrs)
	m.latency.Record(ctx, float64(d.Nanoseconds())/1e3, attrs)
}

// RecordParse records a parse.
func (m *otelMetrics) RecordParse(ctx context.Context, nodes int) {
	m.nodes.Record(ctx, int64(nodes))
}
