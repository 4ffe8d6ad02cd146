package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once           sync.Once
	renderDuration *prom.HistogramVec
	renderOutcome  *prom.CounterVec
	hookFailures   *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.renderDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "mdrender",
			Name:      "render_duration_seconds",
			Help:      "Duration of render calls by output format",
			Buckets:   prom.DefBuckets,
		}, []string{"format"})
		pr.renderOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "mdrender",
			Name:      "render_outcomes_total",
			Help:      "Render call outcomes by format and final status",
		}, []string{"format", "outcome"})
		pr.hookFailures = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "mdrender",
			Name:      "hook_failures_total",
			Help:      "Swallowed host hook failures by hook kind",
		}, []string{"hook"})
		reg.MustRegister(pr.renderDuration, pr.renderOutcome, pr.hookFailures)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveRenderDuration(format string, d time.Duration) {
	if p == nil || p.renderDuration == nil {
		return
	}
	p.renderDuration.WithLabelValues(format).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRenderOutcome(format string, outcome OutcomeLabel) {
	if p == nil || p.renderOutcome == nil {
		return
	}
	p.renderOutcome.WithLabelValues(format, string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncHookFailure(hook string) {
	if p == nil || p.hookFailures == nil {
		return
	}
	p.hookFailures.WithLabelValues(hook).Inc()
}
