// Package publish delivers router events.
//
// Bus is an in-process publish/subscribe hub whose Publish method is a
// router.PublishFunc. Client sends events to a remote process over a
// websocket and Handler is the matching server side, so a page running the
// router in the browser (wasm) can publish to a Go service:
//
//	// server
//	bus := publish.NewBus()
//	bus.Subscribe("user.show", showUser)
//	mux.Handle("/events", publish.NewHandler(bus.Publish))
//
//	// client
//	c, err := publish.Dial(ctx, "ws://localhost:3000/events")
//	r, _ := router.New(router.Config{Browser: b, Publish: c.Publish})
//
// Frames are JSON text messages:
//
//	request: {"id":1,"event":"user.show","params":[{"name":"id","value":"42"}]}
//	reply:   {"id":1,"result":{"name":"Ada"}}
//	reply:   {"id":1,"error":"user not found"}
package publish
