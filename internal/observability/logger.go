// Package observability provides the logging, metrics and tracing used around
// expression evaluation.
//
// Logging goes through slog. Metrics and tracing go through OpenTelemetry and
// have no-op forms for when they are disabled.
package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// NewLogger creates a logger writing to w at the given level ("debug",
// "info", "warn" or "error") in the given format ("text" or "json").
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lv}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// LogEvalError logs a failed evaluation at the given level.
func LogEvalError(logger *slog.Logger, level slog.Level, expr, status string, err error) {
	if logger == nil {
		return
	}
	logger.Log(context.Background(), level, "evaluation failed",
		slog.String("expr", expr),
		slog.String("status", status),
		slog.String("error", err.Error()),
	)
}

// LogConfigLoaded logs the effective configuration.
func LogConfigLoaded(logger *slog.Logger, source, onError string, maxDepth int, metrics bool) {
	if logger == nil {
		return
	}
	logger.Debug("configuration loaded",
		slog.String("source", source),
		slog.String("on_error", onError),
		slog.Int("max_depth", maxDepth),
		slog.Bool("metrics", metrics),
	)
}

// LogConfigError logs a configuration that could not be loaded (non-fatal).
func LogConfigError(logger *slog.Logger, err error) {
	if logger == nil {
		return
	}
	logger.Warn("configuration failed, using defaults",
		slog.String("error", err.Error()),
	)
}

// LogRunStart logs the start of a command-line run.
func LogRunStart(logger *slog.Logger, runID string, exprs int) {
	if logger == nil {
		return
	}
	logger.Info("run starting",
		slog.String("run_id", runID),
		slog.Int("expressions", exprs),
	)
}

// LogRunComplete logs the end of a command-line run.
func LogRunComplete(logger *slog.Logger, runID string, durationMs float64, failed int) {
	if logger == nil {
		return
	}
	logger.Info("run completed",
		slog.String("run_id", runID),
		slog.Float64("duration_ms", durationMs),
		slog.Int("failed", failed),
	)
}
