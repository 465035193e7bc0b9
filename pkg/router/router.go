package router

import (
	"log/slog"
	"sync/atomic"

	"github.com/vango-dev/navroute/internal/errors"
	"github.com/vango-dev/navroute/pkg/browser"
	"github.com/vango-dev/navroute/pkg/navigation"
)

// Config configures a Router.
type Config struct {
	// HistoryEnabled selects history mode (clean paths, pushState).
	// When false the router works on the URL fragment.
	HistoryEnabled bool

	// LinkSelector picks the links the router manages.
	// Default: browser.DefaultLinkSelector.
	LinkSelector string

	// Logger receives "adding route", "processing path", "dispatching" and
	// "no route dispatched". Default: slog.Default().
	Logger Logger

	// Publish delivers event targets. Required before any event route is
	// defined.
	Publish PublishFunc

	// Browser is the page the router runs in. Required.
	Browser browser.Browser

	// Observers are notified of definitions, dispatches, misses and
	// redirects.
	Observers []Observer

	// DispatchAfterRedirect makes Process keep matching after a stale
	// fragment URL was migrated. By default Process stops after the
	// redirect and lets the new page load route itself.
	DispatchAfterRedirect bool
}

// Router maps URL paths to callbacks and events and keeps page links in
// step with the navigation mode.
type Router struct {
	cfg       Config
	log       Logger
	nav       navigation.Adapter
	table     Table
	observers observers
	active    atomic.Bool
}

// New creates a router. The navigation mode is fixed for its lifetime.
func New(cfg Config) (*Router, error) {
	if cfg.Browser == nil {
		return nil, errors.New("R004")
	}
	r := &Router{
		cfg:       cfg,
		log:       cfg.Logger,
		observers: observers(cfg.Observers),
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	r.nav = navigation.New(cfg.HistoryEnabled, cfg.Browser, cfg.LinkSelector)
	return r, nil
}

// Define appends a route for path and prepares any new links on the page.
//
// An event target without a configured publisher is rejected with R001
// before anything is appended. Pattern errors are returned as R002/R003.
// If preparing links fails the route stays defined and the error is
// returned.
func (r *Router) Define(path string, target Target) error {
	route, err := NewRoute(path, target)
	if err != nil {
		return err
	}
	if target.needsPublisher() && r.cfg.Publish == nil {
		return errors.New("R001").WithDetailf("route %q targets %s", path, target)
	}

	r.log.Info("adding route",
		slog.String("path", path),
		slog.Any("params", route.pattern.Params()),
		slog.String("target", target.String()))

	r.table.Append(route)
	r.active.Store(true)
	r.observers.routeDefined(route)

	if err := r.nav.UpdateLinks(r.processFromBrowser); err != nil {
		r.log.Error("updating links failed", slog.String("path", path), slog.Any("error", err))
		return err
	}
	return nil
}

// DefineFunc defines a callback route.
func (r *Router) DefineFunc(path string, fn Handler) error {
	return r.Define(path, Callback(fn))
}

// DefineEvent defines a route that publishes event.
func (r *Router) DefineEvent(path, event string) error {
	return r.Define(path, Event(event))
}

// Process routes the current location. It returns the dispatch result, or
// nil and nil when nothing matched or a redirect was issued.
func (r *Router) Process() (any, error) {
	path := r.nav.CurrentPath()

	if to, ok := r.nav.Redirect(); ok {
		r.log.Info("redirecting", slog.String("from", path), slog.String("to", to))
		r.observers.redirected(path, to)
		if !r.cfg.DispatchAfterRedirect {
			return nil, nil
		}
	}

	r.log.Info("processing path", slog.String("path", path))

	route, ctx, ok := r.Resolve(path)
	if !ok {
		r.log.Warn("no route dispatched", slog.String("path", path))
		r.observers.unmatched(path)
		return nil, nil
	}

	result, err := r.Dispatch(route, ctx)
	if err != nil {
		r.log.Error("dispatch failed",
			slog.String("path", path),
			slog.String("route", route.Path()),
			slog.Any("error", err))
	}
	return result, err
}

// Resolve returns the first route matching path and its context without
// dispatching.
func (r *Router) Resolve(path string) (*Route, Context, bool) {
	route, values, ok := r.table.FirstMatch(path)
	if !ok {
		return nil, nil, false
	}
	return route, zip(route.pattern.Params(), values), true
}

// Routes returns the defined routes in order.
func (r *Router) Routes() []*Route { return r.table.Routes() }

// Mode returns the navigation mode.
func (r *Router) Mode() navigation.Mode { return r.nav.Mode() }

// Active reports whether at least one route has been defined.
func (r *Router) Active() bool { return r.active.Load() }

// processFromBrowser is the listener handed to the navigation adapter.
// Errors were already logged by Process.
func (r *Router) processFromBrowser() {
	_, _ = r.Process()
}
