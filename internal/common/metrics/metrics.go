// internal/common/metrics/metrics.go
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awards_submissions_total",
			Help: "Total number of submissions processed",
		},
		[]string{"category", "status"},
	)

	RejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awards_rejections_total",
			Help: "Total number of rejected submissions by error code",
		},
		[]string{"code"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "awards_submission_duration_seconds",
			Help:    "Duration of each assembly stage in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"stage"},
	)

	SerialCounter = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "awards_serial_counter",
			Help: "Last committed log id serial per category",
		},
		[]string{"category"},
	)
)

// WriteText dumps every metric family of g in the Prometheus text format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
