// Package wasm binds the router to a real browser page when compiled with
// GOOS=js GOARCH=wasm.
//
//	b := wasm.New()
//	defer b.Release()
//	r, _ := router.New(router.Config{Browser: b, HistoryEnabled: true, Publish: bus.Publish})
//	r.DefineFunc("/users/:id", showUser)
//	r.Process()
//	select {}
//
// Targets run on the JavaScript event loop. A target that blocks (network,
// channels, timers) must do that work in a goroutine or the page
// deadlocks.
package wasm
