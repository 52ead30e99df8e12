// Package metrics records solve counts and durations with Prometheus collectors.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/vsinha/blend/pkg/domain/milp"
)

const namespace = "blend"

// Recorder implements solve.Observer
type Recorder struct {
	solves   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRecorder creates the solve collectors and registers them with reg
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "solves_total",
			Help:      "Number of finished solves by solver and outcome status.",
		}, []string{"solver", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solve_duration_seconds",
			Help:      "Wall-clock duration of solves.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"solver"}),
	}
	for _, c := range []prometheus.Collector{r.solves, r.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register solve metrics: %w", err)
		}
	}
	return r, nil
}

// ObserveSolve counts one solve and records its duration
func (r *Recorder) ObserveSolve(solver string, status milp.Status, elapsed time.Duration) {
	r.solves.WithLabelValues(solver, status.String()).Inc()
	r.duration.WithLabelValues(solver).Observe(elapsed.Seconds())
}

// WriteText dumps every gathered metric family in the Prometheus text format
func WriteText(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return fmt.Errorf("failed to write metric %s: %w", family.GetName(), err)
		}
	}
	return nil
}
