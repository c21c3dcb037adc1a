// Package metrics exposes Prometheus instruments for verification, branding
// resolution and response injection.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "whitelabel"

// Result label values.
const (
	ResultPass = "pass"
	ResultFail = "fail"
)

// Metrics holds the registered collectors. A nil *Metrics is a valid no-op.
type Metrics struct {
	verifications *prometheus.CounterVec
	checks        *prometheus.CounterVec
	duration      prometheus.Histogram
	resolves      *prometheus.CounterVec
	injections    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Custom domain verification runs by overall result.",
		}, []string{"result"}),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verification_check_total",
			Help:      "Individual verification checks by check and result.",
		}, []string{"check", "result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "verification_duration_seconds",
			Help:      "Wall time of a verification run.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolve_total",
			Help:      "Branding resolutions by source.",
		}, []string{"source"}),
		injections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "injections_total",
			Help:      "Responses rewritten with branding by kind.",
		}, []string{"kind"}),
	}

	var errs []error
	for _, c := range []prometheus.Collector{m.verifications, m.checks, m.duration, m.resolves, m.injections} {
		errs = append(errs, reg.Register(c))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

func result(ok bool) string {
	if ok {
		return ResultPass
	}
	return ResultFail
}

// Verification records one verification run.
func (m *Metrics) Verification(ok bool, took time.Duration) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(result(ok)).Inc()
	m.duration.Observe(took.Seconds())
}

// Check records one check outcome within a run.
func (m *Metrics) Check(check string, ok bool) {
	if m == nil {
		return
	}
	m.checks.WithLabelValues(check, result(ok)).Inc()
}

// Resolve records where a request's branding came from.
func (m *Metrics) Resolve(source string) {
	if m == nil {
		return
	}
	m.resolves.WithLabelValues(source).Inc()
}

// Injection records a rewritten response of the given kind.
func (m *Metrics) Injection(kind string) {
	if m == nil {
		return
	}
	m.injections.WithLabelValues(kind).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
