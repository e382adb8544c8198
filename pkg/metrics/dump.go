package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// WriteText renders every registered metric family in Prometheus text
// exposition format, for the `status --metrics` CLI dump — this pipeline
// has no scrape endpoint (spec.md Non-goals exclude a dashboard surface).
func (m *Metrics) WriteText(w io.Writer) error {
	gatherer := prometheus.Gatherer(prometheus.DefaultGatherer)
	if m.registry != nil {
		gatherer = m.registry
	}

	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encoding metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
