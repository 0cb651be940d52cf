// Package logging provides a slog handler that picks up attributes stored in
// the request context, so that handlers and services log with shared context
// such as the trace id.
package logging

import (
	"context"
	"fmt"
	"log/slog"
)

type contextKey string

const attrsKey contextKey = "slogAttrs"

// ContextHandler wraps a slog.Handler and enriches every record with the
// attributes stored in the context via WithAttrs.
type ContextHandler struct {
	handler slog.Handler
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{handler: h}
}

// Enabled delegates to the underlying handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle adds the context attributes to the record before delegating.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(attrsKey).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}

	if err := h.handler.Handle(ctx, r); err != nil {
		return fmt.Errorf("handle log record: %w", err)
	}
	return nil
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{handler: h.handler.WithGroup(name)}
}

// WithAttrs stores slog attributes in the context for ContextHandler to pick up.
func WithAttrs(ctx context.Context, attr ...slog.Attr) context.Context {
	if existing, ok := ctx.Value(attrsKey).([]slog.Attr); ok {
		attr = append(existing, attr...)
	}
	return context.WithValue(ctx, attrsKey, attr)
}
