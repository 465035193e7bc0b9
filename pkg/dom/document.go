// Package dom is an in-memory browser: an HTML document parsed with
// golang.org/x/net/html plus a window with a location, a history stack and
// navigation events.
//
// It implements browser.Browser so a router can run outside a real browser,
// for tests, for the navroute CLI, and for rewriting links in static HTML
// before it is served.
//
//	doc, _ := dom.ParseString(`<a href="/users/42">Ada</a>`)
//	win, _ := dom.NewWindow(doc, "https://example.com/")
//	r, _ := router.New(router.Config{Browser: win, HistoryEnabled: true})
//	r.DefineFunc("/users/:id", show)
//	win.Click(links[0]) // pushes /users/42 and dispatches show
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/vango-dev/navroute/pkg/browser"
)

// Document is a parsed HTML document.
type Document struct {
	mu       sync.Mutex
	root     *html.Node
	elements map[*html.Node]*Element
	nextKey  int
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return &Document{
		root:     root,
		elements: make(map[*html.Node]*Element),
	}, nil
}

// ParseString parses an HTML document from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Query returns the elements matching selector, in document order.
func (d *Document) Query(selector string) ([]*Element, error) {
	sel, err := CompileSelector(selector)
	if err != nil {
		return nil, err
	}
	return d.QuerySelector(sel), nil
}

// QuerySelector is Query with a precompiled selector.
func (d *Document) QuerySelector(sel *Selector) []*Element {
	nodes := sel.QueryAll(d.root)

	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, d.elementLocked(n))
	}
	return out
}

// elementLocked returns the wrapper for n, creating it on first use so the
// same node always yields the same Element and key.
func (d *Document) elementLocked(n *html.Node) *Element {
	if el, ok := d.elements[n]; ok {
		return el
	}
	d.nextKey++
	el := &Element{doc: d, node: n, key: fmt.Sprintf("el-%d", d.nextKey)}
	d.elements[n] = el
	return el
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

// String returns the rendered document.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Element is a document element. It implements browser.Element.
type Element struct {
	doc      *Document
	node     *html.Node
	key      string
	handlers []func(*browser.ClickEvent)
}

var _ browser.Element = (*Element)(nil)

// Key returns the element identity within its document.
func (e *Element) Key() string { return e.key }

// Tag returns the element name, e.g. "a".
func (e *Element) Tag() string { return e.node.Data }

// Attr returns an attribute value.
func (e *Element) Attr(name string) (string, bool) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return getAttr(e.node, name)
}

// SetAttr sets an attribute, adding it when missing.
func (e *Element) SetAttr(name, value string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for i := range e.node.Attr {
		if e.node.Attr[i].Namespace == "" && e.node.Attr[i].Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

// OnClick registers a click handler.
func (e *Element) OnClick(fn func(*browser.ClickEvent)) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.handlers = append(e.handlers, fn)
}

// ClickHandlers returns the number of registered click handlers.
func (e *Element) ClickHandlers() int {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return len(e.handlers)
}

// click runs the handlers and reports whether the default action was
// prevented.
func (e *Element) click() bool {
	e.doc.mu.Lock()
	handlers := append([]func(*browser.ClickEvent){}, e.handlers...)
	e.doc.mu.Unlock()

	ev := &browser.ClickEvent{}
	for _, h := range handlers {
		h(ev)
	}
	return ev.DefaultPrevented()
}

// getAttr returns the value of a non-namespaced attribute.
func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
