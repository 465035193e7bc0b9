// Package manifest declares event routes in a YAML (or JSON) document so a
// route table can be shipped as configuration instead of code.
//
//	mode: history
//	linkSelector: "a.route"
//	routes:
//	  - path: /users/:id
//	    event: user.show
//	  - path: /
//	    event: home.show
//
// Manifests load from a local file or from S3 (s3://bucket/key).
package manifest

import (
	"bytes"
	stderrors "errors"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/navroute/internal/errors"
	"github.com/vango-dev/navroute/pkg/navigation"
	"github.com/vango-dev/navroute/pkg/pattern"
	"github.com/vango-dev/navroute/pkg/router"
)

// Manifest is a parsed route manifest.
type Manifest struct {
	// Mode is "history" or "hash" (default: "history").
	Mode string `yaml:"mode" json:"mode"`

	// LinkSelector overrides the router's default link selector.
	LinkSelector string `yaml:"linkSelector,omitempty" json:"linkSelector,omitempty"`

	// Routes are defined in order; the first match wins.
	Routes []Route `yaml:"routes" json:"routes"`

	// Source is where the manifest was read from, used in error locations.
	Source string `yaml:"-" json:"-"`
}

// Route declares one event route.
type Route struct {
	Path  string `yaml:"path" json:"path"`
	Event string `yaml:"event" json:"event"`

	line int
}

// Line returns the line the route starts on, or 0 when unknown.
func (r Route) Line() int { return r.line }

// Parse decodes a manifest. Unknown fields are rejected. source names the
// document in error locations. The result is not validated.
func Parse(data []byte, source string) (*Manifest, error) {
	m := &Manifest{Source: source}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(m); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, parseError(source, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, parseError(source, err)
	}
	if lines := routeLines(&doc); len(lines) == len(m.Routes) {
		for i := range m.Routes {
			m.Routes[i].line = lines[i]
		}
	}
	return m, nil
}

func parseError(source string, err error) error {
	e := errors.New("R011").Wrap(err)
	var typeErr *yaml.TypeError
	if stderrors.As(err, &typeErr) {
		return e.WithDetailf("%s: unexpected field or value type", source)
	}
	return e.WithDetailf("%s", source)
}

// routeLines returns the starting line of each entry of the top-level
// "routes" sequence.
func routeLines(doc *yaml.Node) []int {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "routes" {
			continue
		}
		seq := root.Content[i+1]
		lines := make([]int, len(seq.Content))
		for j, n := range seq.Content {
			lines[j] = n.Line
		}
		return lines
	}
	return nil
}

// NavigationMode returns the parsed mode. An empty mode is history.
func (m *Manifest) NavigationMode() (navigation.Mode, error) {
	if m.Mode == "" {
		return navigation.ModeHistory, nil
	}
	mode, err := navigation.ParseMode(m.Mode)
	if err != nil {
		var re *errors.RouterError
		if stderrors.As(err, &re) {
			re.WithSuggestion(`Use mode: history or mode: hash`)
		}
		return mode, err
	}
	return mode, nil
}

// Validate checks the mode, that every route has a path and an event, and
// that every path compiles. The first problem is returned.
func (m *Manifest) Validate() error {
	if _, err := m.NavigationMode(); err != nil {
		return err
	}
	if len(m.Routes) == 0 {
		return errors.New("R012").WithDetailf("%s defines no routes", m.Source)
	}
	for i, r := range m.Routes {
		switch {
		case r.Path == "":
			return m.routeError(errors.New("R012").WithDetailf("route %d has no path", i+1), r)
		case r.Event == "":
			return m.routeError(errors.New("R012").WithDetailf("route %q has no event", r.Path), r)
		}
		if _, err := pattern.Compile(r.Path); err != nil {
			var re *errors.RouterError
			if stderrors.As(err, &re) {
				return m.routeError(re, r)
			}
			return err
		}
	}
	return nil
}

func (m *Manifest) routeError(e *errors.RouterError, r Route) *errors.RouterError {
	if r.line > 0 && m.Source != "" {
		e.WithLocation(m.Source, r.line, 0)
	}
	return e
}

// Configure applies the manifest mode and link selector to cfg.
func (m *Manifest) Configure(cfg *router.Config) error {
	mode, err := m.NavigationMode()
	if err != nil {
		return err
	}
	cfg.HistoryEnabled = mode == navigation.ModeHistory
	if m.LinkSelector != "" {
		cfg.LinkSelector = m.LinkSelector
	}
	return nil
}

// Apply defines every route on r, in order, stopping at the first error.
func (m *Manifest) Apply(r *router.Router) error {
	for _, route := range m.Routes {
		if err := r.DefineEvent(route.Path, route.Event); err != nil {
			var re *errors.RouterError
			if stderrors.As(err, &re) && re.Location == nil {
				m.routeError(re, route)
			}
			return err
		}
	}
	return nil
}

// NewRouter builds a router configured by the manifest, with every route
// defined. base supplies the browser, publisher and logger.
func (m *Manifest) NewRouter(base router.Config) (*router.Router, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	cfg := base
	if err := m.Configure(&cfg); err != nil {
		return nil, err
	}
	r, err := router.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := m.Apply(r); err != nil {
		return nil, err
	}
	return r, nil
}
