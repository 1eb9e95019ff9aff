// Package repositories implements SQLite persistence for the catalog.
//
// Key Implementations:
//   - [SongRepository] : standard uploaded songs
//   - [SunoSongRepository] : AI generated songs, with tag based [SunoSongRepository.Similar] lookups
//   - [LikedSongRepository] : per-user likes that keep songs.like_count in step
//   - [SQLiteBackend] : the local [services.Backend] used by the play counter
//
// Rows are soft deleted via deleted_at and excluded from queries by default.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
