package client

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Logger is an optional package logger used for non-fatal warnings.
type Logger interface {
	// Warnf logs a formatted warning message.
	Warnf(format string, args ...any)
}

// warnfHandler forwards warnings and errors to a Logger.
type warnfHandler struct {
	logger Logger
	attrs  []slog.Attr
}

func newWarnfHandler(l Logger) *warnfHandler {
	return &warnfHandler{logger: l}
}

func (h *warnfHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelWarn
}

func (h *warnfHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Message)
	for _, a := range h.attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		return true
	})
	h.logger.Warnf("%s", b.String())
	return nil
}

func (h *warnfHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := &warnfHandler{logger: h.logger}
	out.attrs = append(append(out.attrs, h.attrs...), attrs...)
	return out
}

func (h *warnfHandler) WithGroup(string) slog.Handler {
	return h
}
