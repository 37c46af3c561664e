// Package metrics exposes Prometheus instrumentation for artifact emission.
package metrics

import (
	"errors"
	"time"

	"github.com/aretw0/lpm/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Operation labels.
const (
	OpDeclarePath = "declare_path"
	OpBetween     = "between"
	OpPathData    = "path_data"
)

// Recorder groups the collectors updated by the emitter and the servers.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	emitted  *prometheus.CounterVec
	rejected *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		emitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lpm_artifacts_emitted_total",
				Help: "Total number of successfully emitted declarations",
			},
			[]string{"op"},
		),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lpm_requests_rejected_total",
				Help: "Total number of failed operations by error kind",
			},
			[]string{"op", "kind"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lpm_emit_duration_seconds",
				Help:    "Duration of declarations including artifact writes",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"op"},
		),
	}
	reg.MustRegister(r.emitted, r.rejected, r.duration)
	return r
}

// Observe records the outcome of one operation that started at start.
func (r *Recorder) Observe(op string, start time.Time, err error) {
	if r == nil {
		return
	}
	r.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		r.rejected.WithLabelValues(op, Kind(err)).Inc()
		return
	}
	r.emitted.WithLabelValues(op).Inc()
}

// Kind classifies err for the "kind" label.
func Kind(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrIntegrityViolation):
		return "integrity"
	case errors.Is(err, domain.ErrCacheFence):
		return "fence"
	default:
		return "internal"
	}
}
