package models

import "slices"

// Genres is the fixed genre vocabulary offered when uploading or filtering songs.
var Genres = []string{
	"Nu Disco",
	"Future Funk",
	"Vapor Wave",
	"Synth Wave",
	"Retro Wave",
	"Synth Pop",
	"City Pop",
	"Electro",
	"Electro House",
	"Chill House",
	"Tropical House",
	"Deep House",
	"Dance Pop",
	"DubStep",
	"Trap",
}

// IsGenre reports whether g is part of [Genres].
func IsGenre(g string) bool {
	return slices.Contains(Genres, g)
}

// ToggleGenre removes g from selected if present, otherwise appends it.
// The input slice is never modified.
func ToggleGenre(selected []string, g string) []string {
	if idx := slices.Index(selected, g); idx >= 0 {
		return slices.Delete(slices.Clone(selected), idx, idx+1)
	}
	return append(slices.Clone(selected), g)
}
