package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartRunSpan starts a span for a command-line run using the global tracer
// provider.
func StartRunSpan(ctx context.Context, runID string, exprs int) (context.Context, trace.Span) {
	return otel.Tracer("mevac").Start(ctx, "mevac.run",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("expr.count", exprs),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// AddEvalFailure adds an event for a failed expression to the span in ctx.
func AddEvalFailure(ctx context.Context, index int, status string, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent("eval.failed", trace.WithAttributes(
		attribute.Int("expr.index", index),
		attribute.String("status", status),
		attribute.String("error", err.Error()),
	))
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
