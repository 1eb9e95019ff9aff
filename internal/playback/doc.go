// Package playback serializes play requests and counts plays.
//
// A burst of requests passes through two stages before reaching the player:
//
//   - [Debouncer] holds the latest request until no new one arrived for a full window (500ms by default).
//   - [Cooldown] accepts at most one request per window (1000ms by default) and keeps the most recent
//     refused request in a single pending slot, replayed when the window closes.
//
// Both stages are pure: they take the current time as an argument and never start timers.
// [Coordinator] owns one of each and drives them either from [Coordinator.Run] with real timers
// or from [Coordinator.Submit] and [Coordinator.Advance] with explicit timestamps.
//
// Every accepted request updates the [player.Store] and starts a [PlayCounter] increment
// on its own goroutine. Increments are read, call, write against a [services.Backend],
// are not transactional, and are never retried.
package playback
