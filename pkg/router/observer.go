package router

import "time"

// Observer is notified of router activity. Implementations must not block;
// they run synchronously on the navigation path. Package metrics and package
// tracing provide implementations.
type Observer interface {
	// RouteDefined is called after a route is appended to the table.
	RouteDefined(route *Route)

	// Dispatched is called after a target returns.
	Dispatched(route *Route, ctx Context, elapsed time.Duration, err error)

	// Unmatched is called when Process finds no route for path.
	Unmatched(path string)

	// Redirected is called when a stale fragment URL is migrated.
	Redirected(from, to string)
}

// NopObserver ignores all notifications. Embed it to implement only some
// methods.
type NopObserver struct{}

func (NopObserver) RouteDefined(*Route)                              {}
func (NopObserver) Dispatched(*Route, Context, time.Duration, error) {}
func (NopObserver) Unmatched(string)                                 {}
func (NopObserver) Redirected(string, string)                        {}

type observers []Observer

func (o observers) routeDefined(route *Route) {
	for _, obs := range o {
		obs.RouteDefined(route)
	}
}

func (o observers) dispatched(route *Route, ctx Context, elapsed time.Duration, err error) {
	for _, obs := range o {
		obs.Dispatched(route, ctx, elapsed, err)
	}
}

func (o observers) unmatched(path string) {
	for _, obs := range o {
		obs.Unmatched(path)
	}
}

func (o observers) redirected(from, to string) {
	for _, obs := range o {
		obs.Redirected(from, to)
	}
}
