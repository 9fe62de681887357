package ctxlogger

import (
	"context"
	"log/slog"
	"slices"
)

type ctxKey struct{}

// ContextHandler decorates another slog handler with attributes carried in
// the context, so request- and connection-scoped ids show up on every log
// line without threading them through call sites.
type ContextHandler struct {
	slog.Handler
}

func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(ctxKey{}).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}

	return h.Handler.Handle(ctx, r)
}

func AppendCtx(parent context.Context, attr slog.Attr) context.Context {
	attrs, _ := parent.Value(ctxKey{}).([]slog.Attr)
	attrs = append(slices.Clip(attrs), attr)

	return context.WithValue(parent, ctxKey{}, attrs)
}
