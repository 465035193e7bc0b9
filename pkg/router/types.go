package router

import (
	"fmt"

	"github.com/vango-dev/navroute/internal/errors"
	"github.com/vango-dev/navroute/pkg/pattern"
)

// Handler is a callback target. Its result and error are returned by
// Dispatch unchanged.
type Handler func(ctx Context) (any, error)

// PublishFunc delivers a named event with its context, typically to an event
// bus. Its result and error are returned by Dispatch unchanged.
type PublishFunc func(event string, ctx Context) (any, error)

// Logger receives diagnostic output. *slog.Logger satisfies it.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Target is what a route dispatches to: a Callback or an Event.
type Target interface {
	fmt.Stringer

	// needsPublisher reports whether dispatching requires a PublishFunc.
	needsPublisher() bool

	dispatch(ctx Context, publish PublishFunc) (any, error)
}

// Callback returns a target that calls fn.
func Callback(fn Handler) Target {
	return callbackTarget{fn: fn}
}

// Event returns a target that publishes the named event.
func Event(name string) Target {
	return eventTarget{name: name}
}

type callbackTarget struct {
	fn Handler
}

func (t callbackTarget) String() string       { return "callback" }
func (t callbackTarget) needsPublisher() bool { return false }
func (t callbackTarget) dispatch(ctx Context, _ PublishFunc) (any, error) {
	return t.fn(ctx)
}

type eventTarget struct {
	name string
}

func (t eventTarget) String() string       { return "event:" + t.name }
func (t eventTarget) needsPublisher() bool { return true }
func (t eventTarget) dispatch(ctx Context, publish PublishFunc) (any, error) {
	if publish == nil {
		return nil, errors.New("R001").WithDetailf("event %q", t.name)
	}
	return publish(t.name, ctx)
}

// validTarget reports whether t can be dispatched at all.
func validTarget(t Target) bool {
	switch v := t.(type) {
	case callbackTarget:
		return v.fn != nil
	case eventTarget:
		return v.name != ""
	}
	return false
}

// Route is a compiled template and its target. Routes are immutable.
type Route struct {
	pattern *pattern.Pattern
	target  Target
}

// NewRoute compiles path into a Route. Most callers use Router.Define.
func NewRoute(path string, target Target) (*Route, error) {
	if target == nil || !validTarget(target) {
		return nil, errors.New("R005").WithDetailf("route %q", path)
	}
	p, err := pattern.Compile(path)
	if err != nil {
		return nil, err
	}
	return &Route{pattern: p, target: target}, nil
}

// Path returns the route template.
func (r *Route) Path() string { return r.pattern.Template() }

// Pattern returns the compiled template.
func (r *Route) Pattern() *pattern.Pattern { return r.pattern }

// Target returns the dispatch target.
func (r *Route) Target() Target { return r.target }

// EventName returns the event name for event targets.
func (r *Route) EventName() (string, bool) {
	if t, ok := r.target.(eventTarget); ok {
		return t.name, true
	}
	return "", false
}

// Match matches path and returns the extracted context.
func (r *Route) Match(path string) (Context, bool) {
	values, ok := r.pattern.Match(path)
	if !ok {
		return nil, false
	}
	return zip(r.pattern.Params(), values), true
}
