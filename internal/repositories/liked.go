package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/badmusic/internal/models"
	"github.com/desertthunder/badmusic/internal/shared"
)

// LikedSongRepository manages the liked_songs junction table.
//
// Like and Unlike adjust songs.like_count in the same transaction as the junction row.
type LikedSongRepository struct {
	db *sql.DB
}

// NewLikedSongRepository creates a new LikedSongRepository with the given database connection
func NewLikedSongRepository(db *sql.DB) *LikedSongRepository {
	return &LikedSongRepository{db: db}
}

// Like records that userID liked songID.
func (r *LikedSongRepository) Like(userID, songID string) error {
	if userID == "" || songID == "" {
		return fmt.Errorf("%w: user and song ids are required", shared.ErrMissingArgument)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow(`SELECT 1 FROM songs WHERE id = ? AND deleted_at IS NULL`, songID).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, songID)
	}
	if err != nil {
		return fmt.Errorf("failed to look up song: %w", err)
	}

	_, err = tx.Exec(`INSERT INTO liked_songs (user_id, song_id, created_at) VALUES (?, ?, ?)`, userID, songID, time.Now())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("%w: %s", shared.ErrAlreadyLiked, songID)
		}
		return fmt.Errorf("failed to insert like: %w", err)
	}

	if _, err := tx.Exec(`UPDATE songs SET like_count = like_count + 1 WHERE id = ?`, songID); err != nil {
		return fmt.Errorf("failed to update like count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit like: %w", err)
	}
	return nil
}

// Unlike removes a like, never letting like_count drop below zero.
func (r *LikedSongRepository) Unlike(userID, songID string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM liked_songs WHERE user_id = ? AND song_id = ?`, userID, songID)
	if err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrNotLiked, songID)
	}

	if _, err := tx.Exec(`UPDATE songs SET like_count = MAX(like_count - 1, 0) WHERE id = ?`, songID); err != nil {
		return fmt.Errorf("failed to update like count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit unlike: %w", err)
	}
	return nil
}

// IsLiked reports whether userID has liked songID.
func (r *LikedSongRepository) IsLiked(userID, songID string) (bool, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM liked_songs WHERE user_id = ? AND song_id = ?`, userID, songID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query like: %w", err)
	}
	return n > 0, nil
}

// ListSongs returns the songs userID liked, most recent like first.
//
// Likes pointing at soft-deleted songs are skipped.
func (r *LikedSongRepository) ListSongs(userID string) ([]*models.LikedSong, error) {
	query := `
		SELECT l.user_id, l.song_id, l.created_at,
			s.id, s.sequence, s.user_id, s.author, s.title, s.song_path, s.image_path, s.video_path,
			s.genre, s.lyrics, s.duration, s.count, s.like_count, s.created_at, s.updated_at
		FROM liked_songs l
		JOIN songs s ON s.id = l.song_id
		WHERE l.user_id = ? AND s.deleted_at IS NULL
		ORDER BY l.created_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query liked songs: %w", err)
	}
	defer rows.Close()

	var liked []*models.LikedSong
	for rows.Next() {
		var (
			l     models.LikedSong
			s     models.Song
			count sql.NullInt64
		)

		err := rows.Scan(
			&l.UserID, &l.SongID, &l.CreatedAt,
			&s.ID, &s.Sequence, &s.UserID, &s.Author, &s.Title, &s.SongPath, &s.ImagePath, &s.VideoPath,
			&s.Genre, &s.Lyrics, &s.Duration, &count, &s.LikeCount, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan liked song: %w", err)
		}

		s.Count = int(count.Int64)
		l.Song = &s
		liked = append(liked, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return liked, nil
}
