// Package dev implements the server behind "navroute serve".
//
// The server consists of several components:
//
//   - Watcher: watches the static root and the manifest for changes
//   - Server: serves static files with a fallback to the index page for
//     client-side routes, the publish endpoint and Prometheus metrics
//   - ReloadServer: tells connected browsers to reload via WebSocket
//
// # Pre-routing
//
// Every HTML page is run through the manifest's router before it is sent,
// using an in-memory window over a parsed copy opened at the request URL.
// The markup goes out unchanged, since the router in the browser prepares
// its own links. In hash mode deep links are redirected to "/#/path". The
// matched event is embedded as window.__navroute; a fallback URL that
// matches no route is served with 404. Pre-routing is reported to the
// metrics and tracing observers under the "preroute" subsystem, and route
// definitions are reported once per manifest load.
//
// # Usage
//
//	srv := dev.NewServer(dev.ServerOptions{Config: cfg})
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Reload Protocol
//
// The browser connects to /_navroute/reload via WebSocket.
// Messages are JSON-encoded:
//
//	{"type": "reload", "file": "..."}  // Triggers full page reload
//	{"type": "error", "error": "..."}  // Shows the manifest error overlay
//	{"type": "clear"}                  // Clears the overlay
package dev
