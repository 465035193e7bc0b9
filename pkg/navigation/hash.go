package navigation

import "github.com/vango-dev/navroute/pkg/browser"

// Hash routes on the URL fragment, for browsers without the history API.
// Eligible links are rewritten once to "/#" + href and the browser's own
// fragment navigation drives routing.
type Hash struct {
	linkTracker
	browser  browser.Browser
	selector string
}

var _ Adapter = (*Hash)(nil)

// NewHash returns a hash-mode adapter.
func NewHash(b browser.Browser, selector string) *Hash {
	return &Hash{
		browser:  b,
		selector: selectorOrDefault(selector),
	}
}

// Mode returns ModeHash.
func (h *Hash) Mode() Mode { return ModeHash }

// CurrentPath returns the fragment without '#', or "/" when it is empty.
func (h *Hash) CurrentPath() string {
	if path := h.browser.Location().Fragment(); path != "" {
		return path
	}
	return "/"
}

// Redirect never navigates in hash mode.
func (h *Hash) Redirect() (string, bool) { return "", false }

// UpdateLinks prefixes eligible hrefs with "/#" and subscribes process to
// hashchange once.
func (h *Hash) UpdateLinks(process func()) error {
	els, err := h.browser.Links(h.selector)
	if err != nil {
		return err
	}

	fresh, subscribe := h.claim(els)
	for _, el := range fresh {
		href, _ := el.Attr("href")
		el.SetAttr("href", "/#"+href)
	}

	if subscribe {
		h.browser.AddEventListener(browser.EventHashChange, process)
	}
	return nil
}
