package observability

import (
	"context"
	"time"
)

// NoopMetrics is a MetricsRecorder that does nothing.
type NoopMetrics struct{}

var _ MetricsRecorder = NoopMetrics{}

// RecordEval does nothing.
func (NoopMetrics) RecordEval(context.Context, string, time.Duration) {}

// RecordParse does nothing.
func (NoopMetrics) RecordParse(context.Context, int) {}
