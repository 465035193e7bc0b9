package router

import "sync"

// Table is an ordered list of routes. Lookup returns the first route, in
// insertion order, whose template matches; overlapping routes are allowed
// and never reordered.
type Table struct {
	mu     sync.RWMutex
	routes []*Route
}

// Append adds a route at the end of the table.
func (t *Table) Append(r *Route) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes = append(t.routes, r)
}

// FirstMatch returns the first route matching path and its captured values.
func (t *Table) FirstMatch(path string) (*Route, []string, bool) {
	t.mu.RLock()
	routes := t.routes
	t.mu.RUnlock()

	for _, r := range routes {
		if values, ok := r.pattern.Match(path); ok {
			return r, values, true
		}
	}
	return nil, nil, false
}

// Len returns the number of routes.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.routes)
}

// Routes returns a copy of the routes in order.
func (t *Table) Routes() []*Route {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]*Route(nil), t.routes...)
}
