//go:build js && wasm

package wasm

import (
	"fmt"
	"sync"
	"syscall/js"

	"github.com/vango-dev/navroute/internal/errors"
	"github.com/vango-dev/navroute/pkg/browser"
)

// keyAttr is the dataset entry that carries element keys
// (data-navroute-key).
const keyAttr = "navrouteKey"

type listener struct {
	target js.Value
	event  string
	fn     js.Func
}

// Browser is the page the program runs in. It implements browser.Browser.
type Browser struct {
	mu        sync.Mutex
	window    js.Value
	document  js.Value
	listeners []listener
}

var _ browser.Browser = (*Browser)(nil)

// New binds to the global window.
func New() *Browser {
	w := js.Global()
	return &Browser{window: w, document: w.Get("document")}
}

// Location reads window.location.
func (b *Browser) Location() browser.Location {
	loc := b.window.Get("location")
	return browser.Location{
		Pathname: loc.Get("pathname").String(),
		Hash:     loc.Get("hash").String(),
		Search:   loc.Get("search").String(),
	}
}

// PushState calls history.pushState.
func (b *Browser) PushState(href string) {
	b.window.Get("history").Call("pushState", nil, "", href)
}

// Assign calls location.assign.
func (b *Browser) Assign(href string) {
	b.window.Get("location").Call("assign", href)
}

// Links runs document.querySelectorAll. A selector the browser rejects is
// returned as R007.
func (b *Browser) Links(selector string) (els []browser.Element, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("R007").WithDetailf("%q: %v", selector, r)
		}
	}()

	list := b.document.Call("querySelectorAll", selector)
	n := list.Length()
	els = make([]browser.Element, 0, n)
	for i := 0; i < n; i++ {
		els = append(els, b.element(list.Index(i)))
	}
	return els, nil
}

// element wraps node, assigning a key on first sight.
func (b *Browser) element(node js.Value) *Element {
	dataset := node.Get("dataset")
	key := dataset.Get(keyAttr)
	if key.IsUndefined() {
		k := newKey()
		dataset.Set(keyAttr, k)
		return &Element{browser: b, node: node, key: k}
	}
	return &Element{browser: b, node: node, key: key.String()}
}

// AddEventListener subscribes fn to a window event.
func (b *Browser) AddEventListener(event string, fn func()) {
	b.listen(b.window, event, js.FuncOf(func(js.Value, []js.Value) any {
		fn()
		return nil
	}))
}

func (b *Browser) listen(target js.Value, event string, fn js.Func) {
	target.Call("addEventListener", event, fn)
	b.mu.Lock()
	b.listeners = append(b.listeners, listener{target: target, event: event, fn: fn})
	b.mu.Unlock()
}

// Release removes every listener added through b and frees the Go
// callbacks. The router stops reacting to the page afterwards.
func (b *Browser) Release() {
	b.mu.Lock()
	ls := b.listeners
	b.listeners = nil
	b.mu.Unlock()

	for _, l := range ls {
		l.target.Call("removeEventListener", l.event, l.fn)
		l.fn.Release()
	}
}

// Listeners returns the number of active listeners.
func (b *Browser) Listeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// Element is a DOM element. It implements browser.Element.
type Element struct {
	browser *Browser
	node    js.Value
	key     string
}

var _ browser.Element = (*Element)(nil)

// Key returns the element's data-navroute-key.
func (e *Element) Key() string { return e.key }

// Attr reads an attribute.
func (e *Element) Attr(name string) (string, bool) {
	if !e.node.Call("hasAttribute", name).Bool() {
		return "", false
	}
	return e.node.Call("getAttribute", name).String(), true
}

// SetAttr writes an attribute.
func (e *Element) SetAttr(name, value string) {
	e.node.Call("setAttribute", name, value)
}

// OnClick adds a click listener. PreventDefault on the ClickEvent is
// forwarded to the DOM event before the listener returns.
func (e *Element) OnClick(fn func(*browser.ClickEvent)) {
	e.browser.listen(e.node, "click", js.FuncOf(func(_ js.Value, args []js.Value) any {
		ev := &browser.ClickEvent{}
		fn(ev)
		if ev.DefaultPrevented() && len(args) > 0 {
			args[0].Call("preventDefault")
		}
		return nil
	}))
}

// String describes the element for logs.
func (e *Element) String() string {
	return fmt.Sprintf("<%s %s>", e.node.Get("tagName").String(), e.key)
}
