// Package models defines the catalog entities shared by the player, the repositories and the UI surfaces.
//
// Two catalogs share one player:
//   - [Song] : standard uploaded songs, stored in the "songs" table with media in object storage
//   - [SunoSong] : AI generated songs, stored in the "suno_songs" table with absolute media URLs
//
// [Catalog] tags which universe a track id belongs to, and [TrackRef] pairs the id with its catalog so
// resolution can dispatch per variant instead of threading a boolean through state.
//
// [LikedSong] records a listener's like of a standard song.
package models
