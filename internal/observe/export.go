package observe

import (
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// WriteText gathers g and writes every family whose name starts with prefix
// in the Prometheus text exposition format. An empty prefix writes all
// families. When g is nil, [prometheus.DefaultGatherer] is used; that is the
// registry [InitProvider]'s exporter registers with.
func WriteText(w io.Writer, g prometheus.Gatherer, prefix string) error {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("observe: gather metrics: %w", err)
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), prefix) {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("observe: write metric family %q: %w", mf.GetName(), err)
		}
	}
	return nil
}
