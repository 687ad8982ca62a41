// Command mevac evaluates arithmetic expressions from arguments, a file, or
// standard input.
//
//	mevac -given x=2 -given 'y=x^2' 'hypot(x, y)'
//	mevac -n -fmt %.4f -in formulas.txt
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/zephyrtronium/mevac"
	"github.com/zephyrtronium/mevac/internal/config"
	"github.com/zephyrtronium/mevac/internal/observability"
	"github.com/zephyrtronium/mevac/internal/shim"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var (
		inname, verb, cfgname string
		with                  [][2]string
		nl, echo, verbose     bool
		metrics               bool
	)
	addwith := func(s string) error {
		d := strings.SplitN(s, "=", 2)
		if len(d) != 2 {
			return fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
		}
		with = append(with, [2]string{strings.TrimSpace(d[0]), strings.TrimSpace(d[1])})
		return nil
	}
	fs := flag.NewFlagSet("mevac", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&inname, "in", "", "input file (default stdin if no args given)")
	fs.StringVar(&verb, "fmt", "%g", "result formatting string")
	fs.Func("given", "name=value variable definition (any number of times)", addwith)
	fs.BoolVar(&nl, "n", false, "parse separate input lines as separate expressions")
	fs.BoolVar(&echo, "echo", false, "print parse trees")
	fs.StringVar(&cfgname, "config", "", "config file (default $"+config.EnvFile+")")
	fs.BoolVar(&verbose, "v", false, "debug logging")
	fs.BoolVar(&metrics, "metrics", false, "print evaluation metrics to stderr at exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if cfgname == "" {
		cfgname = os.Getenv(config.EnvFile)
	}
	cfg, cerr := config.Load(cfgname, os.LookupEnv)
	if verbose {
		cfg.LogLevel = "debug"
	}
	logger, err := observability.NewLogger(stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if cerr != nil {
		observability.LogConfigError(logger, cerr)
	} else {
		observability.LogConfigLoaded(logger, cfgname, cfg.OnError, cfg.MaxDepth, cfg.Metrics)
	}
	runID := uuid.NewString()
	logger = logger.With(slog.String("run_id", runID))

	var (
		recorder observability.MetricsRecorder = observability.NoopMetrics{}
		reader   *sdkmetric.ManualReader
	)
	if metrics || cfg.Metrics {
		reader = sdkmetric.NewManualReader()
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer provider.Shutdown(context.Background())
		recorder = observability.NewMetricsRecorder(provider)
	}

	var ins []io.RuneScanner
	f, closer, err := infile(inname, fs.NArg() == 0, stdin)
	if err != nil {
		logger.Error("opening input", slog.String("error", err.Error()))
		return 1
	}
	if closer != nil {
		defer closer.Close()
	}
	if f != nil {
		ins = append(ins, f)
	}
	for _, arg := range fs.Args() {
		ins = append(ins, strings.NewReader(arg))
	}

	ctx := mevac.NewContext()
	for _, d := range with {
		nm, vl := d[0], d[1]
		a, err := mevac.ParseString(vl)
		if err == nil {
			var r float64
			r, err = ctx.Eval(a)
			ctx.Set(nm, r)
		}
		if err != nil {
			logger.Error("setting variable", slog.String("name", nm), slog.String("error", err.Error()))
			return 1
		}
	}

	opts := []mevac.ParseOption{mevac.MaxDepth(cfg.MaxDepth)}
	if nl {
		opts = append(opts, mevac.StopOn('\n'))
	}
	var p []*mevac.Expr
	for _, in := range ins {
		for {
			// First check whether we're done with the input.
			done, err := skipSpace(in)
			if err != nil {
				logger.Error("reading input", slog.String("error", err.Error()))
				return 1
			}
			if done {
				break
			}
			a, err := mevac.Parse(in, opts...)
			if err != nil {
				fmt.Fprintf(stdout, "expression %d: %v\n", len(p)+1, err)
				logger.Debug("parse failed", slog.String("status", shim.StatusOf(err).String()))
				return 1
			}
			recorder.RecordParse(context.Background(), a.Nodes())
			p = append(p, a)
		}
	}

	start := time.Now()
	observability.LogRunStart(logger, runID, len(p))
	sctx, span := observability.StartRunSpan(context.Background(), runID, len(p))
	verb += "\n"
	failed := 0
	for i, a := range p {
		if echo {
			fmt.Fprintf(stdout, "%v : ", a)
		}
		t := time.Now()
		r, err := ctx.Eval(a)
		st := shim.StatusOf(err)
		recorder.RecordEval(sctx, st.String(), time.Since(t))
		if err != nil {
			failed++
			fmt.Fprintln(stdout, err)
			observability.AddEvalFailure(sctx, i, st.String(), err)
			continue
		}
		fmt.Fprintf(stdout, verb, r)
	}
	var runErr error
	if failed > 0 {
		runErr = fmt.Errorf("%d of %d expressions failed", failed, len(p))
	}
	observability.EndSpanWithError(span, runErr)
	observability.LogRunComplete(logger, runID, float64(time.Since(start).Microseconds())/1e3, failed)

	if reader != nil {
		var rm metricdata.ResourceMetrics
		if err := reader.Collect(context.Background(), &rm); err != nil {
			logger.Warn("collecting metrics", slog.String("error", err.Error()))
		} else if err := observability.WriteSummary(stderr, &rm); err != nil {
			logger.Warn("writing metrics", slog.String("error", err.Error()))
		}
	}
	if runErr != nil {
		return 1
	}
	return 0
}

// skipSpace consumes leading whitespace and reports whether the input is
// exhausted.
func skipSpace(in io.RuneScanner) (bool, error) {
	for {
		r, _, err := in.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return true, nil
			}
			return false, err
		}
		if !unicode.IsSpace(r) {
			return false, in.UnreadRune()
		}
	}
}

func infile(inname string, std bool, stdin io.Reader) (io.RuneScanner, io.Closer, error) {
	switch {
	case inname != "" && inname != "-":
		f, err := os.Open(inname)
		if err != nil {
			return nil, nil, err
		}
		return bufio.NewReader(f), f, nil
	case inname == "-", std:
		return bufio.NewReader(stdin), nil, nil
	}
	return nil, nil, nil
}
