// Package navigation abstracts over the two ways a client-side router can
// follow the URL: the history API (clean paths, pushState, popstate) and the
// hash fallback (paths in the fragment, hashchange).
//
// An Adapter is chosen once per router and owns all link and listener
// bookkeeping for it, so several routers on one page never see each other's
// state.
package navigation

import (
	"strings"
	"sync"

	"github.com/vango-dev/navroute/internal/errors"
	"github.com/vango-dev/navroute/pkg/browser"
)

// Mode selects the navigation strategy.
type Mode int

const (
	// ModeHistory routes on the URL path and intercepts link clicks.
	ModeHistory Mode = iota

	// ModeHash routes on the URL fragment and rewrites link targets.
	ModeHash
)

// String returns "history" or "hash".
func (m Mode) String() string {
	switch m {
	case ModeHistory:
		return "history"
	case ModeHash:
		return "hash"
	}
	return "unknown"
}

// ParseMode parses "history" or "hash" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "history":
		return ModeHistory, nil
	case "hash":
		return ModeHash, nil
	}
	return ModeHistory, errors.New("R013").WithDetailf("mode %q", s)
}

// Adapter is one navigation strategy bound to a browser.
type Adapter interface {
	// Mode reports the strategy.
	Mode() Mode

	// CurrentPath returns the path the router should match.
	CurrentPath() string

	// Redirect migrates a stale location to the strategy's canonical form.
	// It returns the navigation target and true when it navigated.
	Redirect() (string, bool)

	// UpdateLinks prepares every eligible link that has not been prepared
	// yet and, on the first call, subscribes process to the strategy's
	// change notification. It is safe to call repeatedly.
	UpdateLinks(process func()) error
}

// New returns a History adapter when historyEnabled is set and a Hash
// adapter otherwise. An empty selector means browser.DefaultLinkSelector.
func New(historyEnabled bool, b browser.Browser, selector string) Adapter {
	if historyEnabled {
		return NewHistory(b, selector)
	}
	return NewHash(b, selector)
}

// linkTracker records which elements have been prepared and whether the
// change listener is bound.
type linkTracker struct {
	mu        sync.Mutex
	bound     map[string]struct{}
	listening bool
}

// claim returns the elements of els that are not yet prepared and carry an
// href, marking them prepared, and reports whether the caller must
// subscribe the change listener.
func (t *linkTracker) claim(els []browser.Element) (fresh []browser.Element, subscribe bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bound == nil {
		t.bound = make(map[string]struct{})
	}
	for _, el := range els {
		key := el.Key()
		if _, done := t.bound[key]; done {
			continue
		}
		if _, ok := el.Attr("href"); !ok {
			continue
		}
		t.bound[key] = struct{}{}
		fresh = append(fresh, el)
	}

	subscribe = !t.listening
	t.listening = true
	return fresh, subscribe
}

// BoundLinks returns the number of prepared elements.
func (t *linkTracker) BoundLinks() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.bound)
}

// Listening reports whether the change listener has been subscribed.
func (t *linkTracker) Listening() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.listening
}

func selectorOrDefault(selector string) string {
	if selector == "" {
		return browser.DefaultLinkSelector
	}
	return selector
}
