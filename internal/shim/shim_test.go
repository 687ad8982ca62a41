package shim_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/zephyrtronium/mevac"
	"github.com/zephyrtronium/mevac/internal/config"
	"github.com/zephyrtronium/mevac/internal/observability"
	"github.com/zephyrtronium/mevac/internal/shim"
)

func TestPoint(t *testing.T) {
	ev := shim.New(config.Default(), nil, nil)

	tests := []struct {
		name   string
		expr   string
		names  []string
		values []float64
		want   float64
		status shim.Status
	}{
		{"add", "x+y", []string{"x", "y"}, []float64{1.5, 2.5}, 4, shim.StatusOK},
		{"trig", "sin(0) + cos(0)", nil, nil, 1, shim.StatusOK},
		{"poly", "x^2 + 2*x + 1", []string{"x"}, []float64{3}, 16, shim.StatusOK},
		{"div zero", "a/b", []string{"a", "b"}, []float64{1, 0}, math.Inf(1), shim.StatusOK},
		{"pi", "pi", nil, nil, math.Pi, shim.StatusOK},
		{"sqrt neg", "sqrt(x)", []string{"x"}, []float64{-1}, math.NaN(), shim.StatusOK},
		{"parse", "1 +", nil, nil, math.NaN(), shim.StatusParse},
		{"name", "x + 1", nil, nil, math.NaN(), shim.StatusName},
		{"arity", "sin(1,2)", nil, nil, math.NaN(), shim.StatusArity},
		{"encoding", "\xff", nil, nil, math.NaN(), shim.StatusEncoding},
		{"mismatch", "x", []string{"x"}, nil, math.NaN(), shim.StatusInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, st := ev.Point(tt.expr, tt.names, tt.values)
			assert.Equal(t, tt.status, st)
			if math.IsNaN(tt.want) {
				assert.True(t, math.IsNaN(r), "want NaN, got %g", r)
			} else {
				assert.Equal(t, tt.want, r)
			}
		})
	}
}

func TestPointMaxDepth(t *testing.T) {
	cfg := config.Default()
	cfg.MaxDepth = 3
	ev := shim.New(cfg, nil, nil)

	_, st := ev.Point("((((1))))", nil, nil)
	assert.Equal(t, shim.StatusParse, st)

	r, st := ev.Point("((1))", nil, nil)
	assert.Equal(t, shim.StatusOK, st)
	assert.Equal(t, 1.0, r)
}

func TestPointDeepSum(t *testing.T) {
	ev := shim.New(config.Default(), nil, nil)
	for _, n := range []int{200, 5000} {
		expr := strings.Repeat("x+(", n) + "x" + strings.Repeat(")", n)
		r, st := ev.Point(expr, []string{"x"}, []float64{1})
		require.Equal(t, shim.StatusOK, st, "nesting %d", n)
		assert.Equal(t, float64(n+1), r)
	}
}

func TestPointAbort(t *testing.T) {
	cfg := config.Default()
	cfg.OnError = config.OnErrorAbort
	ev := shim.New(cfg, nil, nil)

	r, st := ev.Point("2*x", []string{"x"}, []float64{4})
	require.Equal(t, shim.StatusOK, st, "successful calls do not abort")
	assert.Equal(t, 8.0, r)

	defer func() {
		p := recover()
		require.NotNil(t, p, "failed call did not panic")
		err, ok := p.(error)
		require.True(t, ok, "panic value %v is not an error", p)
		var f *shim.Failure
		require.True(t, errors.As(err, &f))
		assert.Equal(t, shim.StatusName, f.Status)
		assert.Equal(t, "y", f.Expr)
		var ne *mevac.NameError
		assert.True(t, errors.As(err, &ne))
		assert.Contains(t, err.Error(), "name error")
	}()
	ev.Point("y", nil, nil)
}

func TestPointLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	logger, err := observability.NewLogger(&buf, "debug", "text")
	require.NoError(t, err)
	ev := shim.New(config.Default(), logger, nil)

	ev.Point("1", nil, nil)
	assert.Empty(t, buf.String(), "successful calls are not logged")

	ev.Point("sin()", nil, nil)
	assert.Contains(t, buf.String(), "evaluation failed")
	assert.Contains(t, buf.String(), "status=arity")
	assert.Contains(t, buf.String(), "level=DEBUG")

	buf.Reset()
	ev.Point("x", []string{"x", "y"}, []float64{1})
	assert.Contains(t, buf.String(), "status=internal")
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestPointMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	ev := shim.New(config.Default(), nil, observability.NewMetricsRecorder(provider))
	ev.Point("x*x", []string{"x"}, []float64{2})
	ev.Point("x*x", []string{"x"}, []float64{3})
	ev.Point("x*", nil, nil)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := make(map[string]int64)
	var parsed uint64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					v, _ := dp.Attributes.Value("status")
					counts[v.AsString()] += dp.Value
				}
			case metricdata.Histogram[int64]:
				for _, dp := range data.DataPoints {
					parsed += dp.Count
				}
			}
		}
	}
	assert.Equal(t, map[string]int64{"ok": 2, "parse": 1}, counts)
	assert.Equal(t, uint64(2), parsed, "only successful parses record tree size")
}

func TestPointConcurrent(t *testing.T) {
	ev := shim.New(config.Default(), nil, nil)
	var wg sync.WaitGroup
	results := make([]float64, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = ev.Point("x^2 - 1", []string{"x"}, []float64{float64(i)})
		}(i)
	}
	wg.Wait()
	for i, r := range results {
		assert.Equal(t, float64(i*i-1), r)
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		err    error
		status shim.Status
		name   string
	}{
		{nil, shim.StatusOK, "ok"},
		{&mevac.BracketError{}, shim.StatusParse, "parse"},
		{&mevac.NameError{}, shim.StatusName, "name"},
		{&mevac.CallError{}, shim.StatusArity, "arity"},
		{&mevac.EncodingError{}, shim.StatusEncoding, "encoding"},
		{errors.New("boom"), shim.StatusInternal, "internal"},
	}
	for _, tt := range tests {
		st := shim.StatusOf(tt.err)
		assert.Equal(t, tt.status, st)
		assert.Equal(t, tt.name, st.String())
	}
	// The numbering is part of the C ABI.
	assert.EqualValues(t, 0, shim.StatusOK)
	assert.EqualValues(t, 1, shim.StatusParse)
	assert.EqualValues(t, 2, shim.StatusName)
	assert.EqualValues(t, 3, shim.StatusArity)
	assert.EqualValues(t, 4, shim.StatusEncoding)
	assert.EqualValues(t, 5, shim.StatusInternal)
}

func TestDefault(t *testing.T) {
	t.Setenv("MEVAC_LOG_LEVEL", "error")
	ev := shim.Default()
	require.NotNil(t, ev)
	assert.Same(t, ev, shim.Default())
	r, st := ev.Point("tau/2", nil, nil)
	assert.Equal(t, shim.StatusOK, st)
	assert.Equal(t, math.Pi, r)
}
