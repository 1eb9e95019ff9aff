// package formatter renders catalog listings and track details as text, CSV, Markdown or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/desertthunder/badmusic/internal/catalog"
	"github.com/desertthunder/badmusic/internal/shared"
)

// Formats accepted by [Render].
const (
	FormatText     = "text"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Count renders a play or like count with thousands separators.
func Count(n int) string {
	return humanize.Comma(int64(n))
}

// Plays renders "1 play" or "1,234 plays".
func Plays(n int) string {
	if n == 1 {
		return "1 play"
	}
	return Count(n) + " plays"
}

// Likes renders "1 like" or "12 likes".
func Likes(n int) string {
	if n == 1 {
		return "1 like"
	}
	return Count(n) + " likes"
}

// Age renders a timestamp relative to now, e.g. "3 days ago".
func Age(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

// Render formats tracks in the named format, defaulting to text.
func Render(format, title string, tracks []*catalog.TrackMetadata) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatText, "txt":
		return ToText(title, tracks), nil
	case FormatCSV:
		return ToCSV(tracks)
	case FormatMarkdown, "md":
		return ToMarkdown(title, tracks), nil
	case FormatJSON:
		return shared.MarshalJSON(tracks, true)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, format)
	}
}

// ToCSV converts tracks to CSV with columns: ID, Catalog, Title, Author, Duration, Plays, Likes, Genres
func ToCSV(tracks []*catalog.TrackMetadata) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Catalog", "Title", "Author", "Duration", "Plays", "Likes", "Genres"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, t := range tracks {
		record := []string{
			t.Ref.ID,
			t.Ref.Catalog.String(),
			t.Title,
			t.Author,
			strconv.Itoa(t.Duration),
			strconv.Itoa(t.Count),
			strconv.Itoa(t.LikeCount),
			strings.Join(t.Genres, ";"),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToMarkdown renders tracks as a numbered Markdown list under title.
func ToMarkdown(title string, tracks []*catalog.TrackMetadata) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(tracks))

	for i, t := range tracks {
		genres := ""
		if len(t.Genres) > 0 {
			genres = fmt.Sprintf(" _%s_", strings.Join(t.Genres, ", "))
		}
		fmt.Fprintf(&buf, "%d. %s - %s [%s] %s, %s%s\n",
			i+1, t.Author, t.Title, shared.FormatDuration(t.Duration), Plays(t.Count), Likes(t.LikeCount), genres)
	}

	return buf.Bytes()
}

// ToText renders tracks as plain numbered lines.
func ToText(title string, tracks []*catalog.TrackMetadata) []byte {
	var buf bytes.Buffer

	if title != "" {
		fmt.Fprintf(&buf, "%s (%d)\n\n", title, len(tracks))
	}

	for i, t := range tracks {
		fmt.Fprintf(&buf, "%d. %s - %s [%s] %s  %s\n", i+1, t.Author, t.Title, shared.FormatDuration(t.Duration), Plays(t.Count), t.Ref.ID)
	}

	return buf.Bytes()
}

// Detail renders a single track with its playable URL, lyrics and prompt.
func Detail(t *catalog.TrackMetadata, audioURL string) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", t.Title)
	fmt.Fprintf(&buf, "by %s\n\n", t.Author)
	fmt.Fprintf(&buf, "ID:       %s\n", t.Ref.String())
	fmt.Fprintf(&buf, "Duration: %s\n", shared.FormatDuration(t.Duration))
	fmt.Fprintf(&buf, "Stats:    %s, %s\n", Plays(t.Count), Likes(t.LikeCount))
	if len(t.Genres) > 0 {
		fmt.Fprintf(&buf, "Genres:   %s\n", strings.Join(t.Genres, ", "))
	}
	if age := Age(t.CreatedAt); age != "" {
		fmt.Fprintf(&buf, "Added:    %s\n", age)
	}
	if audioURL != "" {
		fmt.Fprintf(&buf, "Audio:    %s\n", audioURL)
	} else {
		buf.WriteString("Audio:    unavailable\n")
	}

	if t.Prompt != "" {
		fmt.Fprintf(&buf, "\nPrompt\n%s\n", t.Prompt)
	}
	if t.Lyrics != "" {
		fmt.Fprintf(&buf, "\nLyrics\n%s\n", strings.TrimSpace(t.Lyrics))
	}

	return buf.Bytes()
}
