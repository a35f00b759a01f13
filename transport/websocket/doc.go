// Package websocket streams simulation runs to live viewers.
//
// A central Hub owns every connection. Viewers subscribe to a channel with
// ?channel=<name> when they connect, and each run started with the same
// channel name pushes its frames and lifecycle events to them.
//
// Message Protocol:
//
// Viewers only listen. Each websocket frame carries one JSON Message:
//   - {"channel":"demo","event":"run_started","data":{"id":"...","scenario":"square"}}
//   - {"channel":"demo","event":"frame","frame":"  +-+-+\n1 |C| |\n..."}
//   - {"channel":"demo","event":"run_finished","data":{...run result...}}
//
// Usage:
//
//	hub := websocket.NewHub(websocket.WithLogger(logger))
//	go hub.Run()
//	defer hub.Stop()
//
//	svc := simulation.NewService(store, simulation.WithStreamer(hub))
//
// Watching:
//
// Watch is the viewer side. StreamURL turns an API base URL into the
// channel's websocket URL:
//
//	wsURL, _ := websocket.StreamURL("http://localhost:8080", "demo")
//	err := websocket.Watch(ctx, wsURL, func(m *websocket.Message) error {
//		fmt.Println(m.Frame)
//		return nil
//	})
//
// Concurrency:
//
// Registration, removal and fan-out run on the Hub's Run goroutine. Publishers
// never block: when the broadcast queue is full the message is dropped and a
// warning is logged. A viewer whose own buffer fills up is disconnected.
package websocket
