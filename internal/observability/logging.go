// Package observability provides structured logging helpers scoped to a
// single render call: a render ID, the output format, and the pipeline stage
// travel in the context and are attached to every log record.
package observability

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
)

// LogContext holds structured logging context for one render call.
type LogContext struct {
	RenderID string
	Format   string
	Stage    string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

var debugEnabled atomic.Bool

// SetDebugLogging toggles debug-mode reporting of swallowed hook failures.
// Off by default; hosts that want visibility into best-effort hooks turn it
// on and read the records at debug level.
func SetDebugLogging(enabled bool) {
	debugEnabled.Store(enabled)
}

// DebugLogging reports whether swallowed hook failures are being logged.
func DebugLogging() bool {
	return debugEnabled.Load()
}

// NewRenderContext stamps ctx with a fresh render ID and the output format.
func NewRenderContext(ctx context.Context, format string) context.Context {
	lc := extractLogContext(ctx)
	lc.RenderID = uuid.NewString()
	lc.Format = format
	return context.WithValue(ctx, logContextKey, lc)
}

// WithStage adds a pipeline stage name to the context.
func WithStage(ctx context.Context, stage string) context.Context {
	lc := extractLogContext(ctx)
	lc.Stage = stage
	return context.WithValue(ctx, logContextKey, lc)
}

func extractLogContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

func getLogAttrs(ctx context.Context) []slog.Attr {
	lc := extractLogContext(ctx)
	attrs := []slog.Attr{}

	if lc.RenderID != "" {
		attrs = append(attrs, slog.String("render.id", lc.RenderID))
	}
	if lc.Format != "" {
		attrs = append(attrs, slog.String("render.format", lc.Format))
	}
	if lc.Stage != "" {
		attrs = append(attrs, slog.String("stage", lc.Stage))
	}

	return attrs
}

// DebugContext logs a debug message with context information.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	contextAttrs := getLogAttrs(ctx)
	allAttrs := append(contextAttrs, attrs...)
	slog.LogAttrs(ctx, slog.LevelDebug, msg, allAttrs...)
}

// WarnContext logs a warning message with context information.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	contextAttrs := getLogAttrs(ctx)
	allAttrs := append(contextAttrs, attrs...)
	slog.LogAttrs(ctx, slog.LevelWarn, msg, allAttrs...)
}

// HookFailure logs one swallowed hook failure when debug logging is on.
func HookFailure(ctx context.Context, hook string, err error) {
	if !DebugLogging() {
		return
	}
	attrs := []slog.Attr{slog.String("hook", hook)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	DebugContext(ctx, "hook failure swallowed", attrs...)
}
