// Package server exposes the player over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// Request ids and panic recovery come from chi's middleware package; [Logger] and [RateLimit] are local.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns internally.
//
// # Routes
//
//	GET  /api/state                 → player state plus the active track when cached
//	GET  /api/events                → server-sent events: snapshot, then one message per store event
//	POST /api/play                  → {"id", "queue", "catalog"} queued for the coordinator (202)
//	POST /api/pause|resume|toggle   → playback controls
//	POST /api/next|previous         → move along the queue
//	POST /api/mobile                → toggle the expanded player
//	POST /api/reset                 → clear the player
//	GET  /api/tracks/{catalog}/{id} → resolved metadata and audio URL
//	GET  /api/wave, POST /api/wave/click|ended → waveform preview
//
// Errors are JSON objects with an "error" key: 409 without an active track,
// 404 for unknown tracks, 400 for malformed input, 429 when rate limited.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
// [EventsHandler] is registered this way.
package server
