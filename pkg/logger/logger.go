// Package logger builds the JSON slog loggers shared by every binary.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel/trace"
)

type Options struct {
	Level slog.Level
	// DebugSampleRate keeps debug records for this fraction of traces, 0 or 1 keeps all.
	DebugSampleRate float64
	Output          io.Writer
}

// New returns a logger tagged with service and decorated with the trace and
// span id of the active span.
func New(service string, level string) *slog.Logger {
	return NewWithOptions(service, Options{Level: ParseLevel(level)})
}

func NewWithOptions(service string, opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	h := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: opts.Level,
	})
	return slog.New(&traceHandler{next: h, sampleRate: opts.DebugSampleRate}).With("service", service)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type traceHandler struct {
	next       slog.Handler
	sampleRate float64
}

func (h *traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	sc := trace.SpanContextFromContext(ctx)
	if r.Level < slog.LevelInfo && !h.sampled(sc) {
		return nil
	}
	if sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.next.Handle(ctx, r)
}

// sampled keeps or drops all debug records of a trace together.
func (h *traceHandler) sampled(sc trace.SpanContext) bool {
	if h.sampleRate <= 0 || h.sampleRate >= 1 || !sc.HasTraceID() {
		return true
	}
	id := sc.TraceID()
	bucket := xxhash.Sum64(id[:]) % 10000
	return float64(bucket) < h.sampleRate*10000
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{next: h.next.WithAttrs(attrs), sampleRate: h.sampleRate}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{next: h.next.WithGroup(name), sampleRate: h.sampleRate}
}
