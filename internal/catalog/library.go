package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/badmusic/internal/models"
	"github.com/desertthunder/badmusic/internal/shared"
)

// SongStore is satisfied by [repositories.SongRepository].
type SongStore interface {
	SongSource
	List(criteria map[string]any) ([]*models.Song, error)
}

// SunoStore is satisfied by [repositories.SunoSongRepository].
type SunoStore interface {
	SunoSource
	List(criteria map[string]any) ([]*models.SunoSong, error)
	Similar(song *models.SunoSong, limit int) ([]*models.SunoSong, error)
}

// LikeStore is satisfied by [repositories.LikedSongRepository].
type LikeStore interface {
	ListSongs(userID string) ([]*models.LikedSong, error)
	Like(userID, songID string) error
	Unlike(userID, songID string) error
	IsLiked(userID, songID string) (bool, error)
}

// Library lists both catalogs and the listener's liked songs as [TrackMetadata].
type Library struct {
	Songs  SongStore
	Suno   SunoStore
	Likes  LikeStore
	UserID string
}

// Catalogs returns resolvers backed by the library's stores.
func (l *Library) Catalogs() Catalogs {
	return Catalogs{Songs: SongResolver{Source: l.Songs}, Suno: SunoResolver{Source: l.Suno}}
}

// List returns one catalog, newest first. criteria is passed to the repository.
func (l *Library) List(ctx context.Context, c models.Catalog, criteria map[string]any) ([]*TrackMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if criteria == nil {
		criteria = map[string]any{}
	}

	switch c {
	case models.CatalogStandard:
		songs, err := l.Songs.List(criteria)
		if err != nil {
			return nil, err
		}
		out := make([]*TrackMetadata, len(songs))
		for i, s := range songs {
			out[i] = FromSong(s)
		}
		return out, nil
	case models.CatalogGenerated:
		songs, err := l.Suno.List(criteria)
		if err != nil {
			return nil, err
		}
		return fromSunoSongs(songs), nil
	default:
		return nil, fmt.Errorf("%w: %d", shared.ErrUnknownCatalog, int(c))
	}
}

// Liked returns the listener's liked songs, most recent like first.
func (l *Library) Liked(ctx context.Context) ([]*TrackMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	liked, err := l.Likes.ListSongs(l.UserID)
	if err != nil {
		return nil, err
	}

	out := make([]*TrackMetadata, 0, len(liked))
	for _, ls := range liked {
		if ls.Song != nil {
			out = append(out, FromSong(ls.Song))
		}
	}
	return out, nil
}

// Similar returns generated songs sharing a tag with ref.
func (l *Library) Similar(ctx context.Context, ref models.TrackRef, limit int) ([]*TrackMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ref.Catalog != models.CatalogGenerated {
		return nil, nil
	}

	song, err := l.Suno.Get(ref.ID)
	if err != nil {
		return nil, err
	}

	similar, err := l.Suno.Similar(song, limit)
	if err != nil {
		return nil, err
	}
	return fromSunoSongs(similar), nil
}

// IsLiked reports whether the listener liked ref. Generated songs cannot be liked.
func (l *Library) IsLiked(ref models.TrackRef) (bool, error) {
	if ref.Catalog != models.CatalogStandard {
		return false, nil
	}
	return l.Likes.IsLiked(l.UserID, ref.ID)
}

// Like adds a like for a standard song.
func (l *Library) Like(ref models.TrackRef) error {
	if ref.Catalog != models.CatalogStandard {
		return fmt.Errorf("%w: only uploaded songs can be liked", shared.ErrInvalidArgument)
	}
	return l.Likes.Like(l.UserID, ref.ID)
}

// Unlike removes a like for a standard song.
func (l *Library) Unlike(ref models.TrackRef) error {
	if ref.Catalog != models.CatalogStandard {
		return fmt.Errorf("%w: only uploaded songs can be liked", shared.ErrInvalidArgument)
	}
	return l.Likes.Unlike(l.UserID, ref.ID)
}

// ToggleLike likes or unlikes ref and reports the new status.
func (l *Library) ToggleLike(ref models.TrackRef) (bool, error) {
	err := l.Like(ref)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, shared.ErrAlreadyLiked) {
		return false, err
	}

	if err := l.Unlike(ref); err != nil {
		return true, err
	}
	return false, nil
}

func fromSunoSongs(songs []*models.SunoSong) []*TrackMetadata {
	out := make([]*TrackMetadata, len(songs))
	for i, s := range songs {
		out[i] = FromSuno(s)
	}
	return out
}
