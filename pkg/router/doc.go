// Package router maps path templates to dispatch targets for client-side
// navigation.
//
// The router provides:
//   - Path templates with named parameters ("/users/:id")
//   - An ordered route table where the first declared match wins
//   - Dispatch to a callback or to a named event through a publish function
//   - History-API or hash-fragment navigation, chosen once per router
//   - Link interception (history) or link rewriting (hash) as routes are defined
//
// # Targets
//
// A route dispatches either to a Go function or to an event name:
//
//	r.Define("/users/:id", router.Callback(showUser))
//	r.Define("/posts/:slug", router.Event("post.show")) // needs Config.Publish
//
// Defining an event route on a router without Config.Publish fails with
// error code R001 and leaves the table unchanged.
//
// # Parameters
//
// A parameter matches one or more word characters ([A-Za-z0-9_]); it never
// matches '/' or punctuation. Parameters arrive in declaration order:
//
//	func showUser(ctx router.Context) (any, error) {
//	    id := ctx.Get("id")
//	    ...
//	}
//
// Context.Bind fills a struct from `param` tags:
//
//	var p struct {
//	    ID int `param:"id"`
//	}
//	if err := ctx.Bind(&p); err != nil { ... }
//
// # Usage
//
//	r, err := router.New(router.Config{
//	    HistoryEnabled: true,
//	    Browser:        win, // a browser.Browser: dom.Window or wasm.Browser
//	    Publish:        bus.Publish,
//	})
//	r.DefineFunc("/", home)
//	r.DefineEvent("/users/:id", "user.show")
//	r.Process() // dispatch the current location
//
// After the first Define the router follows link clicks, back/forward and
// fragment changes on its own. Unmatched paths log a warning and dispatch
// nothing.
package router
