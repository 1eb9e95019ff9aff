// package catalog resolves track ids to metadata and playable URLs for each catalog.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/badmusic/internal/models"
	"github.com/desertthunder/badmusic/internal/shared"
)

// TrackMetadata is the projection of a song that players and lists render.
type TrackMetadata struct {
	Ref       models.TrackRef `json:"ref"`
	Title     string          `json:"title"`
	Author    string          `json:"author"`
	Count     int             `json:"count"`
	LikeCount int             `json:"like_count"`
	Duration  int             `json:"duration"`
	Lyrics    string          `json:"lyrics,omitempty"`
	Genres    []string        `json:"genres,omitempty"`
	Prompt    string          `json:"prompt,omitempty"`
	ImagePath string          `json:"image_path,omitempty"`
	ImageURL  string          `json:"image_url,omitempty"`
	SongPath  string          `json:"song_path,omitempty"`
	AudioURL  string          `json:"audio_url,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Resolver looks up metadata for ids within one catalog.
type Resolver interface {
	Resolve(ctx context.Context, id string) (*TrackMetadata, error)
}

// SongSource is satisfied by [repositories.SongRepository].
type SongSource interface {
	Get(id string) (*models.Song, error)
}

// SunoSource is satisfied by [repositories.SunoSongRepository].
type SunoSource interface {
	Get(id string) (*models.SunoSong, error)
}

// SongResolver resolves standard uploaded songs.
type SongResolver struct {
	Source SongSource
}

func (r SongResolver) Resolve(ctx context.Context, id string) (*TrackMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	song, err := r.Source.Get(id)
	if err != nil {
		return nil, err
	}
	return FromSong(song), nil
}

// SunoResolver resolves AI generated songs.
type SunoResolver struct {
	Source SunoSource
}

func (r SunoResolver) Resolve(ctx context.Context, id string) (*TrackMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	song, err := r.Source.Get(id)
	if err != nil {
		return nil, err
	}
	return FromSuno(song), nil
}

// FromSong projects a [models.Song].
func FromSong(s *models.Song) *TrackMetadata {
	return &TrackMetadata{
		Ref:       s.Ref(),
		Title:     s.Title,
		Author:    s.Author,
		Count:     s.Count,
		LikeCount: s.LikeCount,
		Duration:  s.Duration,
		Lyrics:    s.Lyrics,
		Genres:    s.Genres(),
		ImagePath: s.ImagePath,
		SongPath:  s.SongPath,
		CreatedAt: s.CreatedAt,
	}
}

// FromSuno projects a [models.SunoSong].
func FromSuno(s *models.SunoSong) *TrackMetadata {
	return &TrackMetadata{
		Ref:       s.Ref(),
		Title:     s.Title,
		Author:    s.Author,
		Count:     s.Count,
		LikeCount: s.LikeCount,
		Duration:  s.Duration,
		Lyrics:    s.Lyric,
		Genres:    s.TagList(),
		Prompt:    s.Prompt,
		ImageURL:  s.ImageURL,
		AudioURL:  s.AudioURL,
		CreatedAt: s.CreatedAt,
	}
}

// Catalogs dispatches resolution on a ref's catalog.
type Catalogs struct {
	Songs Resolver
	Suno  Resolver
}

// Resolve looks ref up in the resolver for its catalog.
func (c Catalogs) Resolve(ctx context.Context, ref models.TrackRef) (*TrackMetadata, error) {
	if ref.IsZero() {
		return nil, fmt.Errorf("%w: empty track id", shared.ErrMissingArgument)
	}

	var r Resolver
	switch ref.Catalog {
	case models.CatalogStandard:
		r = c.Songs
	case models.CatalogGenerated:
		r = c.Suno
	}
	if r == nil {
		return nil, fmt.Errorf("%w: %d", shared.ErrUnknownCatalog, int(ref.Catalog))
	}

	return r.Resolve(ctx, ref.ID)
}

// URLLoader derives playable and image URLs from metadata.
type URLLoader struct {
	StorageURL   string
	SongsBucket  string
	ImagesBucket string
}

// NewURLLoader builds a loader from the storage config section.
func NewURLLoader(cfg shared.StorageConfig) URLLoader {
	return URLLoader{StorageURL: cfg.URL, SongsBucket: cfg.SongsBucket, ImagesBucket: cfg.ImagesBucket}
}

// Load returns the audio URL for meta.
//
// Standard songs are served from the public songs bucket; generated songs
// carry their own URL. It returns false when nothing playable is known.
func (l URLLoader) Load(meta *TrackMetadata) (string, bool) {
	if meta == nil {
		return "", false
	}

	switch meta.Ref.Catalog {
	case models.CatalogStandard:
		return l.public(l.bucket(l.SongsBucket, "songs"), meta.SongPath)
	case models.CatalogGenerated:
		return meta.AudioURL, meta.AudioURL != ""
	default:
		return "", false
	}
}

// Image returns the cover image URL for meta.
func (l URLLoader) Image(meta *TrackMetadata) (string, bool) {
	if meta == nil {
		return "", false
	}
	if meta.ImageURL != "" {
		return meta.ImageURL, true
	}
	return l.public(l.bucket(l.ImagesBucket, "images"), meta.ImagePath)
}

func (l URLLoader) bucket(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

func (l URLLoader) public(bucket, path string) (string, bool) {
	if path == "" || l.StorageURL == "" {
		return "", false
	}
	base := strings.TrimRight(l.StorageURL, "/")
	return base + "/storage/v1/object/public/" + bucket + "/" + strings.TrimLeft(path, "/"), true
}
