package dom

import (
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/vango-dev/navroute/internal/errors"
)

// Selector is a compiled CSS selector. Any selector cascadia accepts can be
// used, including attribute operators, :not() and combinators. The
// non-standard [attr!=val] matches elements whose attribute is absent or
// differs from val.
type Selector struct {
	source string
	sel    cascadia.Selector
}

// CompileSelector parses a selector. Syntax errors are R007.
func CompileSelector(source string) (*Selector, error) {
	sel, err := cascadia.Compile(source)
	if err != nil {
		return nil, errors.New("R007").WithDetailf("%q: %v", source, err)
	}
	return &Selector{source: source, sel: sel}, nil
}

// MustCompileSelector is like CompileSelector but panics on error.
func MustCompileSelector(source string) *Selector {
	s, err := CompileSelector(source)
	if err != nil {
		panic(err)
	}
	return s
}

// String returns the selector source.
func (s *Selector) String() string { return s.source }

// Match reports whether n matches the selector.
func (s *Selector) Match(n *html.Node) bool {
	return s.sel.Match(n)
}

// QueryAll returns all nodes under root matching s, in document order.
func (s *Selector) QueryAll(root *html.Node) []*html.Node {
	return s.sel.MatchAll(root)
}
