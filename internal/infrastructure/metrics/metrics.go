// Package metrics records specialization import runs in Prometheus.
//
// Metrics live on a Recorder's own registry rather than the default one, so
// a one-shot command can push exactly what it recorded.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/recipe-app/healthcare-backend/internal/core/domain"
)

const (
	namespace = "specialization"
	subsystem = "import"

	// PushJob is the Pushgateway job name runs are grouped under.
	PushJob = "specialization_import"
)

// Recorder implements ports.ImportMetrics.
type Recorder struct {
	registry *prometheus.Registry

	// RowsTotal counts processed rows.
	// Label:
	//   - outcome: "created", "skipped" or "failed"
	RowsTotal *prometheus.CounterVec

	// RunsTotal counts finished runs.
	// Label:
	//   - result: "completed" or "failed"
	RunsTotal *prometheus.CounterVec

	// RunDuration measures a run from the first precondition check to the
	// summary, or to the failure.
	RunDuration prometheus.Histogram

	// LastCreated is the created count of the most recent completed run.
	LastCreated prometheus.Gauge
}

// NewRecorder builds a Recorder with a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		RowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rows_total",
				Help:      "Total number of CSV rows processed, by outcome.",
			},
			[]string{"outcome"},
		),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "runs_total",
				Help:      "Total number of import runs, by result.",
			},
			[]string{"result"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "duration_seconds",
				Help:      "Duration of an import run.",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms .. ~100s
			},
		),
		LastCreated: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "last_created",
				Help:      "Specializations created by the most recent completed run.",
			},
		),
	}

	r.registry.MustRegister(r.RowsTotal, r.RunsTotal, r.RunDuration, r.LastCreated)
	return r
}

// Registry exposes the underlying registry, for gathering or tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ObserveRow(outcome domain.RowOutcome) {
	r.RowsTotal.WithLabelValues(string(outcome)).Inc()
}

func (r *Recorder) ObserveRun(phase domain.ImportPhase, created int, elapsed time.Duration) {
	r.RunsTotal.WithLabelValues(string(phase)).Inc()
	r.RunDuration.Observe(elapsed.Seconds())
	if phase == domain.PhaseCompleted {
		r.LastCreated.Set(float64(created))
	}
}

// Push sends everything gathered by the recorder to the Pushgateway at url,
// replacing earlier pushes for the same job and instance.
func (r *Recorder) Push(ctx context.Context, url, instance string) error {
	p := push.New(url, PushJob).Gatherer(r.registry)
	if instance != "" {
		p = p.Grouping("instance", instance)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
