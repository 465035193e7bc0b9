package dom

import (
	"testing"

	"github.com/vango-dev/navroute/pkg/browser"
)

func newTestWindow(t *testing.T, body, rawURL string) *Window {
	t.Helper()
	doc, err := ParseString(body)
	if err != nil {
		t.Fatal(err)
	}
	w, err := NewWindow(doc, rawURL)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func link(t *testing.T, w *Window, selector string) browser.Element {
	t.Helper()
	els, err := w.Links(selector)
	if err != nil || len(els) == 0 {
		t.Fatalf("Links(%q) = %v, %v", selector, els, err)
	}
	return els[0]
}

func TestWindowLocation(t *testing.T) {
	w := newTestWindow(t, "", "https://example.com/users/42?tab=posts#/x")
	loc := w.Location()
	if loc.Pathname != "/users/42" || loc.Hash != "#/x" || loc.Search != "?tab=posts" {
		t.Errorf("Location() = %+v", loc)
	}

	w = newTestWindow(t, "", "https://example.com")
	if loc := w.Location(); loc.Pathname != "/" || loc.Hash != "" {
		t.Errorf("Location() = %+v", loc)
	}
}

func TestWindowPushStateAndBack(t *testing.T) {
	w := newTestWindow(t, "", "https://example.com/")

	pops := 0
	w.AddEventListener(browser.EventPopState, func() { pops++ })

	w.PushState("/a")
	w.PushState("/b")
	if pops != 0 {
		t.Error("PushState must not fire popstate")
	}
	if got := w.Location().Pathname; got != "/b" {
		t.Errorf("Pathname = %q", got)
	}
	if w.HistoryLength() != 3 {
		t.Errorf("HistoryLength() = %d", w.HistoryLength())
	}

	w.Back()
	if got := w.Location().Pathname; got != "/a" || pops != 1 {
		t.Errorf("after Back: %q, pops=%d", got, pops)
	}
	w.Forward()
	if got := w.Location().Pathname; got != "/b" || pops != 2 {
		t.Errorf("after Forward: %q, pops=%d", got, pops)
	}
	w.Forward()
	if pops != 2 {
		t.Error("Forward past the end must be ignored")
	}

	w.Back()
	w.PushState("/c")
	w.Forward()
	if got := w.Location().Pathname; got != "/c" {
		t.Errorf("PushState should drop forward entries, at %q", got)
	}
	if len(w.Loads()) != 0 {
		t.Errorf("Loads() = %v", w.Loads())
	}
}

func TestWindowClickFollowsLinks(t *testing.T) {
	w := newTestWindow(t, `<a id="page" href="/about">About</a><a id="frag" href="/#/users/1">U</a>`, "https://example.com/")

	hashes := 0
	w.AddEventListener(browser.EventHashChange, func() { hashes++ })

	w.Click(link(t, w, "#frag"))
	if loc := w.Location(); loc.Hash != "#/users/1" || loc.Pathname != "/" {
		t.Errorf("Location() = %+v", loc)
	}
	if hashes != 1 {
		t.Errorf("hashchange fired %d times", hashes)
	}
	if len(w.Loads()) != 0 {
		t.Errorf("fragment link must not load: %v", w.Loads())
	}

	w.Click(link(t, w, "#frag"))
	if hashes != 1 {
		t.Error("same fragment must not fire hashchange")
	}

	w.Click(link(t, w, "#page"))
	loads := w.Loads()
	if len(loads) != 1 || loads[0] != "https://example.com/about" {
		t.Errorf("Loads() = %v", loads)
	}
}

func TestWindowClickPrevented(t *testing.T) {
	w := newTestWindow(t, `<a id="page" href="/about">About</a>`, "https://example.com/")
	el := link(t, w, "#page")
	el.OnClick(func(e *browser.ClickEvent) { e.PreventDefault() })

	w.Click(el)
	if len(w.Loads()) != 0 || w.Location().Pathname != "/" {
		t.Error("prevented click must not navigate")
	}
}

func TestWindowSetHashAndBack(t *testing.T) {
	w := newTestWindow(t, "", "https://example.com/")

	pops, hashes := 0, 0
	w.AddEventListener(browser.EventPopState, func() { pops++ })
	w.AddEventListener(browser.EventHashChange, func() { hashes++ })

	w.SetHash("/a")
	w.SetHash("/a")
	if hashes != 1 || w.Location().Hash != "#/a" {
		t.Fatalf("hashes=%d hash=%q", hashes, w.Location().Hash)
	}

	w.Back()
	if pops != 1 || hashes != 2 || w.Location().Hash != "" {
		t.Errorf("after Back: pops=%d hashes=%d hash=%q", pops, hashes, w.Location().Hash)
	}
}

func TestWindowAssign(t *testing.T) {
	w := newTestWindow(t, "", "https://example.com/#/users/42")
	w.Assign("/users/42")

	if loc := w.Location(); loc.Pathname != "/users/42" || loc.Hash != "" {
		t.Errorf("Location() = %+v", loc)
	}
	if loads := w.Loads(); len(loads) != 1 || loads[0] != "https://example.com/users/42" {
		t.Errorf("Loads() = %v", loads)
	}
}

func TestWindowLinksInvalidSelector(t *testing.T) {
	w := newTestWindow(t, "", "https://example.com/")
	if _, err := w.Links("a["); err == nil {
		t.Error("expected selector error")
	}
}
