package dev

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/vango-dev/navroute/pkg/dom"
	"github.com/vango-dev/navroute/pkg/manifest"
	"github.com/vango-dev/navroute/pkg/router"
)

// Page is an HTML page after pre-routing.
type Page struct {
	HTML []byte

	// Routed is true when a manifest was loaded and the URL was matched
	// against it.
	Routed bool

	// Match is the event the URL dispatches, or nil when no route
	// matched.
	Match *Match
}

// Match is the event a page URL dispatches. It is embedded in the page as
// window.__navroute.
type Match struct {
	Event  string            `json:"event"`
	Params map[string]string `json:"params"`
}

// Render runs the loaded manifest's router over a page opened at rawURL,
// embeds the matched event and injects the live-reload client when
// enabled. Routing works on a parsed copy; the page markup is sent as
// written so the router in the browser prepares its links itself.
func (s *Server) Render(data []byte, rawURL string) (*Page, error) {
	page := &Page{}
	if m := s.Manifest(); m != nil {
		doc, err := dom.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		win, err := dom.NewWindow(doc, rawURL)
		if err != nil {
			return nil, err
		}
		match, err := s.preroute(m, win)
		if err != nil {
			return nil, err
		}
		page.Routed = true
		page.Match = match
	}

	var inject strings.Builder
	if page.Match != nil {
		state, err := json.Marshal(page.Match)
		if err != nil {
			return nil, err
		}
		inject.WriteString("<script>window.__navroute = ")
		inject.Write(state)
		inject.WriteString(";</script>\n")
	}
	if s.reload != nil {
		inject.WriteString(ReloadClientScript)
	}
	page.HTML = []byte(injectBeforeBodyEnd(string(data), inject.String()))

	return page, nil
}

// preroute defines the manifest routes on win and processes its URL. The
// publisher records the event instead of delivering it.
func (s *Server) preroute(m *manifest.Manifest, win *dom.Window) (*Match, error) {
	rt, err := m.NewRouter(router.Config{
		Browser:   win,
		Logger:    s.routeLog,
		Observers: []router.Observer{pageObserver(s.observers)},
		Publish: func(event string, ctx router.Context) (any, error) {
			return &Match{Event: event, Params: ctx.Map()}, nil
		},
	})
	if err != nil {
		return nil, err
	}

	result, err := rt.Process()
	if err != nil {
		return nil, err
	}
	match, _ := result.(*Match)
	return match, nil
}

// pageObserver forwards the routing of one page request. Definitions are
// reported once per manifest load by LoadManifest, not per request.
type pageObserver []router.Observer

func (pageObserver) RouteDefined(*router.Route) {}

func (o pageObserver) Dispatched(route *router.Route, ctx router.Context, elapsed time.Duration, err error) {
	for _, obs := range o {
		obs.Dispatched(route, ctx, elapsed, err)
	}
}

func (o pageObserver) Unmatched(path string) {
	for _, obs := range o {
		obs.Unmatched(path)
	}
}

func (o pageObserver) Redirected(from, to string) {
	for _, obs := range o {
		obs.Redirected(from, to)
	}
}

func injectBeforeBodyEnd(page, snippet string) string {
	if snippet == "" {
		return page
	}
	if i := strings.LastIndex(page, "</body>"); i >= 0 {
		return page[:i] + snippet + page[i:]
	}
	return page + snippet
}
