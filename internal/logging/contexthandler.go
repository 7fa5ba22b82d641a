package logging

import (
	"context"
	"log/slog"
)

// AttrProvider returns attributes that change over a run, such as the current
// session and scenario.
type AttrProvider func() []slog.Attr

// AttrHandler wraps another handler and injects provider attributes into each record.
type AttrHandler struct {
	inner    slog.Handler
	provider AttrProvider
}

// NewAttrHandler creates a handler that adds dynamic attributes to each record.
func NewAttrHandler(inner slog.Handler, provider AttrProvider) *AttrHandler {
	return &AttrHandler{
		inner:    inner,
		provider: provider,
	}
}

func (h *AttrHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *AttrHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.provider != nil {
		r.AddAttrs(h.provider()...)
	}
	return h.inner.Handle(ctx, r)
}

func (h *AttrHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AttrHandler{inner: h.inner.WithAttrs(attrs), provider: h.provider}
}

func (h *AttrHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &AttrHandler{inner: h.inner.WithGroup(name), provider: h.provider}
}
