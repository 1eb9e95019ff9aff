package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/badmusic/internal/models"
	"github.com/desertthunder/badmusic/internal/shared"
)

const sunoColumns = `id, sequence, user_id, song_id, title, author, audio_url, image_url, video_url, lyric, prompt, tags, duration, count, like_count, created_at, updated_at`

// SunoSongRepository persists AI generated [models.SunoSong] rows.
type SunoSongRepository struct {
	db *sql.DB
}

// NewSunoSongRepository creates a new SunoSongRepository with the given database connection
func NewSunoSongRepository(db *sql.DB) *SunoSongRepository {
	return &SunoSongRepository{db: db}
}

// Create inserts a new [models.SunoSong] with a generated ID and sequence
func (r *SunoSongRepository) Create(song *models.SunoSong) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "suno_songs")
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
		INSERT INTO suno_songs (` + sunoColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		song.ID,
		song.Sequence,
		song.UserID,
		song.SongID,
		song.Title,
		song.Author,
		song.AudioURL,
		song.ImageURL,
		song.VideoURL,
		song.Lyric,
		song.Prompt,
		song.Tags,
		song.Duration,
		song.Count,
		song.LikeCount,
		song.CreatedAt,
		song.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert suno song: %w", err)
	}

	return nil
}

// Get retrieves a generated song by ID, excluding soft-deleted rows
func (r *SunoSongRepository) Get(id string) (*models.SunoSong, error) {
	query := `SELECT ` + sunoColumns + ` FROM suno_songs WHERE id = ? AND deleted_at IS NULL`

	song, err := scanSuno(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan suno song: %w", err)
	}
	return song, nil
}

// Update modifies the editable columns of an existing generated song
func (r *SunoSongRepository) Update(song *models.SunoSong) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	song.UpdatedAt = time.Now()

	query := `
		UPDATE suno_songs
		SET title = ?, author = ?, audio_url = ?, image_url = ?, video_url = ?, lyric = ?, prompt = ?, tags = ?, duration = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		song.Title,
		song.Author,
		song.AudioURL,
		song.ImageURL,
		song.VideoURL,
		song.Lyric,
		song.Prompt,
		song.Tags,
		song.Duration,
		song.UpdatedAt,
		song.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update suno song: %w", err)
	}

	return expectOne(result, song.ID)
}

// Delete soft-deletes a generated song by ID
func (r *SunoSongRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE suno_songs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete suno song: %w", err)
	}

	return expectOne(result, id)
}

// List retrieves generated songs newest first, optionally filtered by "user_id", "tag" (whole entry) or "search".
func (r *SunoSongRepository) List(criteria map[string]any) ([]*models.SunoSong, error) {
	query := `SELECT ` + sunoColumns + ` FROM suno_songs WHERE deleted_at IS NULL`
	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	if tag, ok := criteria["tag"].(string); ok && tag != "" {
		cond, arg := listContains("tags", tag)
		query += " AND " + cond
		args = append(args, arg)
	}

	if search, ok := criteria["search"].(string); ok && search != "" {
		query += " AND (title LIKE ? OR author LIKE ? OR prompt LIKE ?)"
		args = append(args, "%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	query += " ORDER BY created_at DESC, sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query suno songs: %w", err)
	}
	defer rows.Close()

	var songs []*models.SunoSong
	for rows.Next() {
		song, err := scanSuno(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan suno song: %w", err)
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}

// Similar returns up to limit other generated songs sharing at least one tag with song.
func (r *SunoSongRepository) Similar(song *models.SunoSong, limit int) ([]*models.SunoSong, error) {
	var out []*models.SunoSong
	seen := map[string]bool{song.ID: true}

	for _, tag := range song.TagList() {
		matches, err := r.List(map[string]any{"tag": tag})
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			out = append(out, m)
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}
	}

	return out, nil
}

// scanSuno scans a single row into a [models.SunoSong]
func scanSuno(row scanner) (*models.SunoSong, error) {
	var (
		song  models.SunoSong
		count sql.NullInt64
	)

	err := row.Scan(
		&song.ID,
		&song.Sequence,
		&song.UserID,
		&song.SongID,
		&song.Title,
		&song.Author,
		&song.AudioURL,
		&song.ImageURL,
		&song.VideoURL,
		&song.Lyric,
		&song.Prompt,
		&song.Tags,
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
