// Package player holds the shared, observable player state.
//
// [Store] tracks the active track, the queue it was chosen from, its catalog,
// whether audio is playing and whether the expanded mobile player is open.
// [WaveStore] is the standalone waveform preview on a generated song's page.
//
// Both stores serialize mutations with a mutex and publish snapshots to
// subscribers without blocking. A subscriber with a full buffer misses events
// and should fall back to Snapshot.
package player
