// Package shim implements the evaluation behind the exported C functions:
// one expression at one point, classified into a status code, with logging,
// metrics and the configured error policy.
package shim

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/zephyrtronium/mevac"
	"github.com/zephyrtronium/mevac/internal/config"
	"github.com/zephyrtronium/mevac/internal/observability"
)

// Status is the result code of an evaluation, as returned across the C ABI.
type Status int32

const (
	StatusOK Status = iota
	StatusParse
	StatusName
	StatusArity
	StatusEncoding
	StatusInternal
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusParse:
		return "parse"
	case StatusName:
		return "name"
	case StatusArity:
		return "arity"
	case StatusEncoding:
		return "encoding"
	case StatusInternal:
		return "internal"
	default:
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}
}

// StatusOf classifies an error from mevac.
func StatusOf(err error) Status {
	switch mevac.Classify(err) {
	case mevac.KindNone:
		return StatusOK
	case mevac.KindParse:
		return StatusParse
	case mevac.KindName:
		return StatusName
	case mevac.KindArity:
		return StatusArity
	case mevac.KindEncoding:
		return StatusEncoding
	default:
		return StatusInternal
	}
}

// Failure is the panic value of an evaluation that failed under the abort
// policy.
type Failure struct {
	Expr   string
	Status Status
	Err    error
}

func (f *Failure) Error() string {
	return "mevac: " + f.Status.String() + " error evaluating " + strconv.Quote(f.Expr) + ": " + f.Err.Error()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Evaluator evaluates single points. It is safe for concurrent use.
type Evaluator struct {
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	preset  mevac.ParseOption
	abort   bool
}

// New creates an Evaluator. A nil logger discards logs, and nil metrics
// records nothing.
func New(cfg config.Config, logger *slog.Logger, metrics observability.MetricsRecorder) *Evaluator {
	if logger == nil {
		logger = observability.Discard()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Evaluator{
		logger:  logger,
		metrics: metrics,
		preset:  mevac.ParsingPreset(mevac.MaxDepth(cfg.MaxDepth)),
		abort:   cfg.OnError == config.OnErrorAbort,
	}
}

// Point evaluates expr with names[i] bound to values[i]. On failure the
// result is NaN with a non-OK status, unless the evaluator is configured to
// abort, in which case Point panics with a *Failure.
//
// Numeric exceptions are not failures: 1/0 is +Inf with StatusOK.
func (ev *Evaluator) Point(expr string, names []string, values []float64) (r float64, st Status) {
	ctx := context.Background()
	start := time.Now()
	var err error
	defer func() {
		if p := recover(); p != nil {
			r, st = math.NaN(), StatusInternal
			err = fmt.Errorf("panic: %v", p)
		}
		ev.metrics.RecordEval(ctx, st.String(), time.Since(start))
		if st == StatusOK {
			return
		}
		level := slog.LevelDebug
		if st == StatusInternal {
			level = slog.LevelError
		}
		observability.LogEvalError(ev.logger, level, expr, st.String(), err)
		if ev.abort {
			panic(&Failure{Expr: expr, Status: st, Err: err})
		}
	}()

	e, mctx, err := mevac.PreparePoint(expr, names, values, ev.preset)
	if err != nil {
		return math.NaN(), StatusOf(err)
	}
	ev.metrics.RecordParse(ctx, e.Nodes())
	r, err = mctx.Eval(e)
	return r, StatusOf(err)
}

var (
	defaultEvaluator *Evaluator
	defaultOnce      sync.Once
)

// Default returns the process-wide Evaluator, configured from the
// environment on first use. A configuration that fails to load is logged and
// replaced by the defaults.
func Default() *Evaluator {
	defaultOnce.Do(func() {
		cfg, cerr := config.FromEnv()
		logger, err := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			// Only reachable with an invalid config, which FromEnv rejects.
			logger = slog.Default()
		}
		if cerr != nil {
			observability.LogConfigError(logger, cerr)
		} else {
			observability.LogConfigLoaded(logger, os.Getenv(config.EnvFile), cfg.OnError, cfg.MaxDepth, cfg.Metrics)
		}
		var metrics observability.MetricsRecorder = observability.NoopMetrics{}
		if cfg.Metrics {
			metrics = observability.NewMetricsRecorder(nil)
		}
		defaultEvaluator = New(cfg, logger, metrics)
	})
	return defaultEvaluator
}
