package dom

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/vango-dev/navroute/pkg/browser"
)

// Window is a browser window showing a Document. It implements
// browser.Browser.
//
// Navigation follows browser rules: PushState changes the URL silently,
// moving through history fires popstate (and hashchange when only the
// fragment differs), following a fragment-only link fires hashchange, and
// anything else is a full load recorded in Loads. A full load does not
// replace the document or drop listeners.
type Window struct {
	mu        sync.Mutex
	doc       *Document
	entries   []*url.URL
	index     int
	listeners map[string][]func()
	loads     []string
	selectors map[string]*Selector
}

var _ browser.Browser = (*Window)(nil)

// NewWindow opens doc at rawURL.
func NewWindow(doc *Document, rawURL string) (*Window, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("dom: invalid url %q: %w", rawURL, err)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return &Window{
		doc:       doc,
		entries:   []*url.URL{u},
		listeners: make(map[string][]func()),
		selectors: make(map[string]*Selector),
	}, nil
}

// Document returns the document shown in the window.
func (w *Window) Document() *Document { return w.doc }

// Location returns the current URL.
func (w *Window) Location() browser.Location {
	w.mu.Lock()
	defer w.mu.Unlock()
	return locationOf(w.entries[w.index])
}

// URL returns the current URL as a string.
func (w *Window) URL() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.entries[w.index].String()
}

// PushState adds a history entry without reloading or firing events.
func (w *Window) PushState(href string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	u, err := w.resolveLocked(href)
	if err != nil {
		return
	}
	w.pushLocked(u)
}

// Assign performs a full navigation to href.
func (w *Window) Assign(href string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	u, err := w.resolveLocked(href)
	if err != nil {
		return
	}
	w.loads = append(w.loads, u.String())
	w.pushLocked(u)
}

// SetHash sets the fragment, like assigning location.hash. A changed
// fragment adds a history entry and fires hashchange.
func (w *Window) SetHash(fragment string) {
	w.mu.Lock()
	cur := w.entries[w.index]
	if cur.Fragment == fragment {
		w.mu.Unlock()
		return
	}
	next := *cur
	next.Fragment = fragment
	next.RawFragment = ""
	w.pushLocked(&next)
	fns := w.listenersLocked(browser.EventHashChange)
	w.mu.Unlock()

	fire(fns)
}

// Links returns the elements matching selector.
func (w *Window) Links(selector string) ([]browser.Element, error) {
	w.mu.Lock()
	sel, ok := w.selectors[selector]
	if !ok {
		var err error
		sel, err = CompileSelector(selector)
		if err != nil {
			w.mu.Unlock()
			return nil, err
		}
		w.selectors[selector] = sel
	}
	w.mu.Unlock()

	els := w.doc.QuerySelector(sel)
	out := make([]browser.Element, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out, nil
}

// AddEventListener subscribes fn to a window event.
func (w *Window) AddEventListener(event string, fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners[event] = append(w.listeners[event], fn)
}

// ListenerCount returns the number of listeners for event.
func (w *Window) ListenerCount(event string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.listeners[event])
}

// Loads returns the URLs of full navigations, oldest first.
func (w *Window) Loads() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.loads...)
}

// Click clicks el. Click handlers run first; unless one prevents the
// default, the element's href is followed.
func (w *Window) Click(el browser.Element) {
	if e, ok := el.(*Element); ok && e.click() {
		return
	}
	href, ok := el.Attr("href")
	if !ok {
		return
	}
	w.follow(href)
}

// follow performs the default action for a link to href.
func (w *Window) follow(href string) {
	w.mu.Lock()
	u, err := w.resolveLocked(href)
	if err != nil {
		w.mu.Unlock()
		return
	}
	cur := w.entries[w.index]
	if sameDocument(cur, u) && u.Fragment != "" {
		if u.Fragment == cur.Fragment {
			w.mu.Unlock()
			return
		}
		w.pushLocked(u)
		fns := w.listenersLocked(browser.EventHashChange)
		w.mu.Unlock()
		fire(fns)
		return
	}
	w.loads = append(w.loads, u.String())
	w.pushLocked(u)
	w.mu.Unlock()
}

// Back moves one entry back in history.
func (w *Window) Back() { w.Go(-1) }

// Forward moves one entry forward in history.
func (w *Window) Forward() { w.Go(1) }

// Go moves delta entries through history and fires popstate, plus
// hashchange when only the fragment changed. Out of range moves are ignored.
func (w *Window) Go(delta int) {
	w.mu.Lock()
	target := w.index + delta
	if delta == 0 || target < 0 || target >= len(w.entries) {
		w.mu.Unlock()
		return
	}
	prev := w.entries[w.index]
	w.index = target
	cur := w.entries[w.index]

	fns := w.listenersLocked(browser.EventPopState)
	if sameDocument(prev, cur) && prev.Fragment != cur.Fragment {
		fns = append(fns, w.listenersLocked(browser.EventHashChange)...)
	}
	w.mu.Unlock()

	fire(fns)
}

// HistoryLength returns the number of history entries.
func (w *Window) HistoryLength() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

func (w *Window) resolveLocked(href string) (*url.URL, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return nil, err
	}
	return w.entries[w.index].ResolveReference(ref), nil
}

// pushLocked drops forward entries and appends u.
func (w *Window) pushLocked(u *url.URL) {
	w.entries = append(w.entries[:w.index+1], u)
	w.index = len(w.entries) - 1
}

func (w *Window) listenersLocked(event string) []func() {
	return append([]func(){}, w.listeners[event]...)
}

func fire(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}

// sameDocument reports whether a and b differ at most in their fragment.
func sameDocument(a, b *url.URL) bool {
	return a.Scheme == b.Scheme && a.Host == b.Host &&
		a.EscapedPath() == b.EscapedPath() && a.RawQuery == b.RawQuery
}

func locationOf(u *url.URL) browser.Location {
	loc := browser.Location{Pathname: u.EscapedPath()}
	if loc.Pathname == "" {
		loc.Pathname = "/"
	}
	if f := u.EscapedFragment(); f != "" {
		loc.Hash = "#" + f
	}
	if u.RawQuery != "" {
		loc.Search = "?" + u.RawQuery
	}
	return loc
}
