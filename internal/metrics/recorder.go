// Package metrics provides observability hooks for render calls. The default
// NoopRecorder keeps the library dependency-free at runtime; hosts that want
// Prometheus metrics inject a PrometheusRecorder built over their registry.
package metrics

import (
	"sync/atomic"
	"time"
)

// OutcomeLabel enumerates render result categories for counters.
type OutcomeLabel string

const (
	OutcomeSuccess OutcomeLabel = "success"
	OutcomeError   OutcomeLabel = "error"
)

// Recorder defines observability hooks for render and hook metrics.
// Implementations must tolerate nil receivers so injection stays optional.
type Recorder interface {
	ObserveRenderDuration(format string, d time.Duration)
	IncRenderOutcome(format string, outcome OutcomeLabel)
	IncHookFailure(hook string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRenderDuration(string, time.Duration) {}
func (NoopRecorder) IncRenderOutcome(string, OutcomeLabel)       {}
func (NoopRecorder) IncHookFailure(string)                       {}

// The package-level default recorder backs library-wide instrumentation.
// It is NoopRecorder until the host installs a real one.

var defaultRecorder atomic.Value

// SetDefault installs the recorder used by render calls and hook adapters.
func SetDefault(r Recorder) {
	if r == nil {
		r = NoopRecorder{}
	}
	defaultRecorder.Store(&r)
}

// Default returns the installed recorder, or NoopRecorder when none is set.
func Default() Recorder {
	if v, ok := defaultRecorder.Load().(*Recorder); ok {
		return *v
	}
	return NoopRecorder{}
}
