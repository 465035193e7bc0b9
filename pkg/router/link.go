package router

import (
	"github.com/vango-dev/navroute/pkg/navigation"
	"github.com/vango-dev/navroute/pkg/pattern"
)

// Href fills template with params and returns the link target for the
// router's mode: "/users/42" in history mode, "/#/users/42" in hash mode.
// A missing or non-word parameter value fails with R006.
//
//	href, err := r.Href("/users/:id", map[string]string{"id": "42"})
func (r *Router) Href(template string, params map[string]string) (string, error) {
	p, err := pattern.Compile(template)
	if err != nil {
		return "", err
	}
	path, err := p.Build(params)
	if err != nil {
		return "", err
	}
	if r.nav.Mode() == navigation.ModeHash {
		return "/#" + path, nil
	}
	return path, nil
}

// RouteHref is Href for a defined route, with the route's parameters taken
// from ctx.
func (r *Router) RouteHref(route *Route, ctx Context) (string, error) {
	return r.Href(route.Path(), ctx.Map())
}
