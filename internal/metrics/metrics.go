package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rxtech-lab/argo-steps/internal/engine"
)

const namespace = "argo_steps"

// Observer records step and bar metrics in a Prometheus registry.
// It implements engine.Observer.
type Observer struct {
	registry *prometheus.Registry

	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
	bars     *prometheus.CounterVec
	halts    *prometheus.CounterVec
}

// NewObserver creates an Observer with its own registry.
func NewObserver() *Observer {
	o := &Observer{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "step_attempts_total",
				Help:      "Step attempts by outcome.",
			},
			[]string{"strategy", "step", "status", "kind"}, // status: success | failure, kind: top_level | reevaluation
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "step_duration_seconds",
				Help:      "Time spent resolving and invoking a step.",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"strategy", "step"},
		),
		bars: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bars_total",
				Help:      "Bars processed.",
			},
			[]string{"strategy", "symbol"},
		),
		halts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bar_halts_total",
				Help:      "Bars stopped early by a failing top-level step.",
			},
			[]string{"strategy", "step"},
		),
	}

	o.registry.MustRegister(o.attempts, o.duration, o.bars, o.halts)

	return o
}

// Registry returns the registry holding the observer's collectors.
func (o *Observer) Registry() *prometheus.Registry { return o.registry }

// OnAttempt implements engine.Observer.
func (o *Observer) OnAttempt(strategy string, attempt engine.Attempt, duration time.Duration) {
	status := "success"
	if !attempt.Result.IsSuccess() {
		status = "failure"
	}

	kind := "top_level"
	if attempt.Depth > 0 {
		kind = "reevaluation"
	}

	o.attempts.WithLabelValues(strategy, attempt.Step.ID(), status, kind).Inc()
	o.duration.WithLabelValues(strategy, attempt.Step.ID()).Observe(duration.Seconds())
}

// OnBar implements engine.Observer.
func (o *Observer) OnBar(strategy string, report engine.BarReport) {
	o.bars.WithLabelValues(strategy, report.Bar.Symbol).Inc()

	if report.Halted() {
		o.halts.WithLabelValues(strategy, report.HaltedAt.Unwrap()).Inc()
	}
}

// WriteTextfile writes the current metrics to path in the Prometheus text
// format, for the node exporter textfile collector.
func (o *Observer) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, o.registry)
}
