package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const instrumentationName = "ctchen222/Tic-Tac-Toe-AI"

// MultiHandler is a slog.Handler that dispatches records to several handlers.
type MultiHandler struct {
	handlers []slog.Handler
}

func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Enabled reports whether any underlying handler handles records at level.
func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle passes r to every enabled handler. A failing handler does not stop the others.
func (h *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, r.Level) {
			continue
		}
		if err := handler.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return NewMultiHandler(next...)
}

func (h *MultiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}
	return NewMultiHandler(next...)
}

// Options controls Init.
type Options struct {
	Output io.Writer
	Level  slog.Level
	// Otel also sends records to the global OpenTelemetry logger provider.
	Otel bool
}

// Init installs the default slog logger: console text output, plus the OpenTelemetry bridge when
// enabled. It returns the logger for callers that prefer not to use the default.
func Init(opts Options) *slog.Logger {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	handlers := []slog.Handler{
		slog.NewTextHandler(opts.Output, &slog.HandlerOptions{
			AddSource: true,
			Level:     opts.Level,
		}),
	}
	if opts.Otel {
		handlers = append(handlers, otelslog.NewHandler(instrumentationName))
	}

	l := slog.New(NewMultiHandler(handlers...))
	slog.SetDefault(l)
	return l
}
