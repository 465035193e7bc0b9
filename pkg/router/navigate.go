package router

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/vango-dev/navroute/pkg/navigation"
)

// NavigateOptions configures Navigate.
type NavigateOptions struct {
	// Query is added to the URL as a query string.
	Query url.Values
}

// NavigateOption is a functional option for Navigate.
type NavigateOption func(*NavigateOptions)

// WithQuery adds query parameters to the navigation URL.
func WithQuery(query url.Values) NavigateOption {
	return func(o *NavigateOptions) {
		o.Query = query
	}
}

// Navigate moves the browser to path without a page load and routes it,
// as a click on a managed link would. In hash mode path becomes the
// fragment and the query, if any, stays in front of it.
func (r *Router) Navigate(path string, opts ...NavigateOption) (any, error) {
	var options NavigateOptions
	for _, opt := range opts {
		opt(&options)
	}

	href := navigationURL(r.nav.Mode(), path, options.Query)
	r.log.Info("navigating", slog.String("path", path), slog.String("href", href))
	r.cfg.Browser.PushState(href)
	return r.Process()
}

func navigationURL(mode navigation.Mode, path string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	var qs string
	if len(query) > 0 {
		qs = "?" + query.Encode()
	}
	if mode == navigation.ModeHash {
		return "/" + qs + "#" + path
	}
	return path + qs
}
