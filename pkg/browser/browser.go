// Package browser describes the parts of a web browser a client-side router
// consumes: the current location, the history stack, link elements and
// window-level navigation notifications.
//
// Implementations live elsewhere: package dom provides an in-memory
// document built from HTML, and package wasm binds the real browser through
// syscall/js.
package browser

import "strings"

// Window-level navigation notifications.
const (
	// EventPopState fires when the history position changes (back/forward).
	EventPopState = "popstate"

	// EventHashChange fires when the URL fragment changes.
	EventHashChange = "hashchange"
)

// DefaultLinkSelector selects internal links: anchors that do not open a new
// window and whose href is not an absolute http(s) URL.
const DefaultLinkSelector = `a:not([target="_blank"]):not([href^="http"])`

// Location is a snapshot of the current URL.
type Location struct {
	// Pathname is the path component, e.g. "/users/42".
	Pathname string

	// Hash is the fragment including its leading '#', or "" when the URL
	// has no fragment (or an empty one).
	Hash string

	// Search is the query string including its leading '?', or "".
	Search string
}

// Fragment returns the hash without its leading '#'.
func (l Location) Fragment() string {
	return strings.TrimPrefix(l.Hash, "#")
}

// Browser is the navigation surface of a browser window.
type Browser interface {
	// Location returns the current URL.
	Location() Location

	// PushState adds a history entry for href without reloading the page.
	PushState(href string)

	// Assign performs a full navigation to href.
	Assign(href string)

	// Links returns the elements matching a CSS selector, in document order.
	Links(selector string) ([]Element, error)

	// AddEventListener subscribes fn to a window-level event such as
	// EventPopState or EventHashChange.
	AddEventListener(event string, fn func())
}

// Element is a link element in the document.
type Element interface {
	// Key is a stable identity for the element, unique within its document.
	Key() string

	// Attr returns the value of an attribute and whether it is present.
	Attr(name string) (string, bool)

	// SetAttr sets an attribute value.
	SetAttr(name, value string)

	// OnClick registers a click handler. Handlers run in registration order
	// before the browser's default action.
	OnClick(fn func(*ClickEvent))
}

// ClickEvent is passed to click handlers.
type ClickEvent struct {
	defaultPrevented bool
}

// PreventDefault cancels the browser's default navigation for the click.
func (e *ClickEvent) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *ClickEvent) DefaultPrevented() bool {
	return e.defaultPrevented
}
