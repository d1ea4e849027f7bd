// Package metrics exports the result of a scrub pass in the Prometheus text
// format, for pickup by node_exporter's textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zzenonn/zscrub/internal/domain"
)

const namespace = "zscrub"

var outcomeKinds = []domain.OutcomeKind{
	domain.OutcomeOK,
	domain.OutcomeMismatch,
	domain.OutcomeMetadataError,
	domain.OutcomeReadError,
}

// Registry builds a registry describing summary.
func Registry(summary domain.Summary) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"root": summary.Root}

	gauge := func(name, help string, value float64) {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
		g.Set(value)
		reg.MustRegister(g)
	}

	gauge("objects_scanned", "Objects discovered in the last scrub pass.", float64(summary.Objects))
	gauge("bytes_read", "Bytes hashed in the last scrub pass.", float64(summary.Bytes))
	gauge("errors", "Objects that failed the last scrub pass.", float64(summary.Errors))
	gauge("duration_seconds", "Wall-clock duration of the last scrub pass.", summary.Elapsed.Seconds())
	gauge("last_run_timestamp_seconds", "Start time of the last scrub pass.", float64(summary.StartedAt.Unix()))

	outcomes := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "outcomes",
		Help:        "Objects by outcome in the last scrub pass.",
		ConstLabels: labels,
	}, []string{"kind"})
	for _, kind := range outcomeKinds {
		outcomes.WithLabelValues(string(kind)).Set(float64(summary.Count(kind)))
	}
	reg.MustRegister(outcomes)

	return reg
}

// WriteTextfile atomically writes the summary's metrics to path.
func WriteTextfile(path string, summary domain.Summary) error {
	if err := prometheus.WriteToTextfile(path, Registry(summary)); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
