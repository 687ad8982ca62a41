package observability

import (
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// WriteSummary writes one line per data point of the collected metrics.
// Counters print their value; histograms print their count, sum and mean.
func WriteSummary(w io.Writer, rm *metricdata.ResourceMetrics) error {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					if _, err := fmt.Fprintf(w, "%s%s %d\n", m.Name, attrs(dp.Attributes), dp.Value); err != nil {
						return err
					}
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					if err := histline(w, m.Name, dp.Attributes, dp.Count, dp.Sum); err != nil {
						return err
					}
				}
			case metricdata.Histogram[int64]:
				for _, dp := range data.DataPoints {
					if err := histline(w, m.Name, dp.Attributes, dp.Count, float64(dp.Sum)); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func histline(w io.Writer, name string, set attribute.Set, count uint64, sum float64) error {
	mean := 0.0
	if count > 0 {
		mean = sum / float64(count)
	}
	_, err := fmt.Fprintf(w, "%s%s count=%d sum=%g mean=%g\n", name, attrs(set), count, sum, mean)
	return err
}

func attrs(set attribute.Set) string {
	if set.Len() == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, kv := range set.ToSlice() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(string(kv.Key))
		b.WriteByte('=')
		b.WriteString(kv.Value.Emit())
	}
	b.WriteByte('}')
	return b.String()
}
