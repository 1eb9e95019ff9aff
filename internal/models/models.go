// package models defines the data model for the music player
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/badmusic/internal/shared"
)

// Catalog identifies which track universe an id resolves against.
type Catalog int

const (
	CatalogStandard Catalog = iota
	CatalogGenerated
)

// String returns the catalog's short name.
func (c Catalog) String() string {
	switch c {
	case CatalogStandard:
		return "songs"
	case CatalogGenerated:
		return "suno"
	default:
		return ""
	}
}

// Table returns the backing table name for the catalog.
func (c Catalog) Table() string {
	switch c {
	case CatalogStandard:
		return "songs"
	case CatalogGenerated:
		return "suno_songs"
	default:
		return ""
	}
}

// Valid reports whether c is a known catalog.
func (c Catalog) Valid() bool {
	return c == CatalogStandard || c == CatalogGenerated
}

// ParseCatalog accepts "songs"/"standard" or "suno"/"generated".
func ParseCatalog(s string) (Catalog, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "songs", "song", "standard":
		return CatalogStandard, nil
	case "suno", "suno_songs", "generated":
		return CatalogGenerated, nil
	default:
		return 0, fmt.Errorf("%w: %q", shared.ErrUnknownCatalog, s)
	}
}

// MarshalText encodes the catalog by its short name.
func (c Catalog) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", shared.ErrUnknownCatalog, int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText accepts any name understood by [ParseCatalog].
func (c *Catalog) UnmarshalText(b []byte) error {
	parsed, err := ParseCatalog(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// TrackRef is an opaque track id tagged with its catalog.
type TrackRef struct {
	Catalog Catalog `json:"catalog"`
	ID      string  `json:"id"`
}

// IsZero reports whether the ref points at nothing.
func (r TrackRef) IsZero() bool { return r.ID == "" }

func (r TrackRef) String() string { return r.Catalog.String() + ":" + r.ID }

// Song is a standard uploaded song.
type Song struct {
	ID        string    `json:"id"`
	Sequence  int       `json:"-"`
	UserID    string    `json:"user_id"`
	Author    string    `json:"author"`
	Title     string    `json:"title"`
	SongPath  string    `json:"song_path"`
	ImagePath string    `json:"image_path"`
	VideoPath string    `json:"video_path,omitempty"`
	Genre     string    `json:"genre,omitempty"`
	Lyrics    string    `json:"lyrics,omitempty"`
	Duration  int       `json:"duration"` // seconds
	Count     int       `json:"count"`
	LikeCount int       `json:"like_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ref returns the song's [TrackRef].
func (s *Song) Ref() TrackRef { return TrackRef{Catalog: CatalogStandard, ID: s.ID} }

// Genres splits the comma separated genre column.
func (s *Song) Genres() []string { return splitList(s.Genre) }

// Validate checks required fields.
func (s *Song) Validate() error {
	if s.Title == "" {
		return fmt.Errorf("song title is required")
	}
	if s.Author == "" {
		return fmt.Errorf("song author is required")
	}
	if s.SongPath == "" {
		return fmt.Errorf("song path is required")
	}
	if s.UserID == "" {
		return fmt.Errorf("song user_id is required")
	}
	return nil
}

// SunoSong is an AI generated song.
type SunoSong struct {
	ID        string    `json:"id"`
	Sequence  int       `json:"-"`
	UserID    string    `json:"user_id"`
	SongID    string    `json:"song_id,omitempty"` // generator-side id
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	AudioURL  string    `json:"audio_url"`
	ImageURL  string    `json:"image_url"`
	VideoURL  string    `json:"video_url,omitempty"`
	Lyric     string    `json:"lyric,omitempty"`
	Prompt    string    `json:"prompt,omitempty"`
	Tags      string    `json:"tags,omitempty"`
	Duration  int       `json:"duration"`
	Count     int       `json:"count"`
	LikeCount int       `json:"like_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ref returns the song's [TrackRef].
func (s *SunoSong) Ref() TrackRef { return TrackRef{Catalog: CatalogGenerated, ID: s.ID} }

// TagList splits the comma separated tags column.
func (s *SunoSong) TagList() []string { return splitList(s.Tags) }

// Validate checks required fields.
func (s *SunoSong) Validate() error {
	if s.Title == "" {
		return fmt.Errorf("suno song title is required")
	}
	if s.Author == "" {
		return fmt.Errorf("suno song author is required")
	}
	if s.UserID == "" {
		return fmt.Errorf("suno song user_id is required")
	}
	return nil
}

// LikedSong records that a user liked a standard song.
type LikedSong struct {
	UserID    string    `json:"user_id"`
	SongID    string    `json:"song_id"`
	CreatedAt time.Time `json:"created_at"`
	Song      *Song     `json:"song,omitempty"`
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
