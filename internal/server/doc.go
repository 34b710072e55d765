// Package server exposes the monitor over HTTP.
//
// Routes:
//
//	GET /api/latest  {"co2":{"ppm":1013,"time":...},"temperature":{"celsius":22.0375,"time":...}}
//	GET /healthz     {"status":"ok"}, or 503 with "waiting" or "stale"
//	GET /metrics     Prometheus metrics
//	GET /ws          WebSocket stream of {"kind","value","unit","time"} events
//
// State and Hub both implement sink.Sink, so the runner feeds them like any
// other destination.
//
// # Usage Example
//
//	state, hub := server.NewState(), server.NewHub()
//	srv := server.New(server.Config{Addr: ":9233", Metrics: metrics.Handler(reg)}, state, hub)
//	if err := srv.Listen(); err != nil {
//	    return err
//	}
//	go srv.Serve()
//	defer srv.Shutdown(context.Background())
//
// # Graceful Shutdown
//
// Shutdown first closes every WebSocket client (they are hijacked
// connections the http.Server does not track), then drains regular requests
// until ctx expires.
package server
