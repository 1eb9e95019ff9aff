package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/badmusic/internal/models"
	"github.com/desertthunder/badmusic/internal/shared"
)

const songColumns = `id, sequence, user_id, author, title, song_path, image_path, video_path, genre, lyrics, duration, count, like_count, created_at, updated_at`

// SongRepository persists standard uploaded [models.Song] rows.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Create inserts a new [models.Song] with a generated ID and sequence
func (r *SongRepository) Create(song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "songs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	now := time.Now()
	if song.ID == "" {
		song.ID = shared.GenerateID()
	}
	song.Sequence = sequence
	if song.CreatedAt.IsZero() {
		song.CreatedAt = now
	}
	song.UpdatedAt = now

	query := `
		INSERT INTO songs (` + songColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		song.ID,
		song.Sequence,
		song.UserID,
		song.Author,
		song.Title,
		song.SongPath,
		song.ImagePath,
		song.VideoPath,
		song.Genre,
		song.Lyrics,
		song.Duration,
		song.Count,
		song.LikeCount,
		song.CreatedAt,
		song.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}

	return nil
}

// Get retrieves a song by ID, excluding soft-deleted songs
func (r *SongRepository) Get(id string) (*models.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE id = ? AND deleted_at IS NULL`

	song, err := scanSong(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}
	return song, nil
}

// Update modifies the editable columns of an existing song
func (r *SongRepository) Update(song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	song.UpdatedAt = time.Now()

	query := `
		UPDATE songs
		SET author = ?, title = ?, song_path = ?, image_path = ?, video_path = ?, genre = ?, lyrics = ?, duration = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		song.Author,
		song.Title,
		song.SongPath,
		song.ImagePath,
		song.VideoPath,
		song.Genre,
		song.Lyrics,
		song.Duration,
		song.UpdatedAt,
		song.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}

	return expectOne(result, song.ID)
}

// Delete soft-deletes a song by ID
func (r *SongRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE songs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}

	return expectOne(result, id)
}

// List retrieves songs newest first, optionally filtered by "user_id", "genre" or "search".
//
// A positive "limit" caps the result size.
func (r *SongRepository) List(criteria map[string]any) ([]*models.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE deleted_at IS NULL`
	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	if genre, ok := criteria["genre"].(string); ok && genre != "" {
		cond, arg := listContains("genre", genre)
		query += " AND " + cond
		args = append(args, arg)
	}

	if search, ok := criteria["search"].(string); ok && search != "" {
		query += " AND (title LIKE ? OR author LIKE ?)"
		args = append(args, "%"+search+"%", "%"+search+"%")
	}

	query += " ORDER BY created_at DESC, sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []*models.Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}

// scanSong scans a single row into a [models.Song]
func scanSong(row scanner) (*models.Song, error) {
	var (
		song  models.Song
		count sql.NullInt64
	)

	err := row.Scan(
		&song.ID,
		&song.Sequence,
		&song.UserID,
		&song.Author,
		&song.Title,
		&song.SongPath,
		&song.ImagePath,
		&song.VideoPath,
		&song.Genre,
		&song.Lyrics,
		&song.Duration,
		&count,
		&song.LikeCount,
		&song.CreatedAt,
		&song.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	song.Count = int(count.Int64)
	return &song, nil
}
