package mdrender

import (
	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/mdrender/internal/metrics"
	"git.home.luguber.info/inful/mdrender/internal/observability"
)

// EnableMetrics registers render metrics on reg and routes all subsequent
// recording there. Pass the host's registry once at startup.
func EnableMetrics(reg *prometheus.Registry) {
	metrics.SetDefault(metrics.NewPrometheusRecorder(reg))
}

// DisableMetrics restores the no-op recorder.
func DisableMetrics() {
	metrics.SetDefault(metrics.NoopRecorder{})
}

// SetDebugLogging toggles logging of swallowed hook failures. Hook failures
// never surface as errors; this is the only way to observe them.
func SetDebugLogging(enabled bool) {
	observability.SetDebugLogging(enabled)
}
