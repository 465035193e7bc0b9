package router

import (
	"log/slog"
	"time"
)

// Dispatch invokes route's target with ctx. A nil ctx is treated as empty.
// The target's result and error are returned unchanged.
func (r *Router) Dispatch(route *Route, ctx Context) (any, error) {
	if ctx == nil {
		ctx = Context{}
	}
	r.log.Info("dispatching",
		slog.String("path", route.Path()),
		slog.Any("context", ctx))

	start := time.Now()
	result, err := route.target.dispatch(ctx, r.cfg.Publish)
	r.observers.dispatched(route, ctx, time.Since(start), err)
	return result, err
}
