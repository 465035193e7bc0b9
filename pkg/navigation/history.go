package navigation

import "github.com/vango-dev/navroute/pkg/browser"

// History routes on location.pathname. Eligible links get a click handler
// that pushes their href onto the history stack instead of loading it.
type History struct {
	linkTracker
	browser  browser.Browser
	selector string
}

var _ Adapter = (*History)(nil)

// NewHistory returns a history-mode adapter.
func NewHistory(b browser.Browser, selector string) *History {
	return &History{
		browser:  b,
		selector: selectorOrDefault(selector),
	}
}

// Mode returns ModeHistory.
func (h *History) Mode() Mode { return ModeHistory }

// CurrentPath returns the location pathname.
func (h *History) CurrentPath() string {
	return h.browser.Location().Pathname
}

// Redirect turns a hash-mode URL into a clean one: when the location has a
// fragment, it performs a full navigation to the fragment.
func (h *History) Redirect() (string, bool) {
	loc := h.browser.Location()
	if loc.Hash == "" {
		return "", false
	}
	target := loc.Fragment()
	h.browser.Assign(target)
	return target, true
}

// UpdateLinks intercepts clicks on eligible links and subscribes process to
// popstate once.
func (h *History) UpdateLinks(process func()) error {
	els, err := h.browser.Links(h.selector)
	if err != nil {
		return err
	}

	fresh, subscribe := h.claim(els)
	for _, el := range fresh {
		el := el
		el.OnClick(func(e *browser.ClickEvent) {
			e.PreventDefault()
			href, _ := el.Attr("href")
			h.browser.PushState(href)
			process()
		})
	}

	if subscribe {
		h.browser.AddEventListener(browser.EventPopState, process)
	}
	return nil
}
