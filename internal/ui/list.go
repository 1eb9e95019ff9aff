package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/badmusic/internal/catalog"
	"github.com/desertthunder/badmusic/internal/formatter"
	"github.com/desertthunder/badmusic/internal/shared"
)

var _ list.Item = trackItem{}

// trackItem wraps [catalog.TrackMetadata] to implement [list.Item].
type trackItem struct {
	meta *catalog.TrackMetadata
}

func (i trackItem) FilterValue() string { return i.meta.Title + " " + i.meta.Author }
func (i trackItem) Title() string       { return i.meta.Title }
func (i trackItem) Description() string {
	parts := []string{i.meta.Author, shared.FormatDuration(i.meta.Duration), formatter.Plays(i.meta.Count)}
	if len(i.meta.Genres) > 0 {
		parts = append(parts, strings.Join(i.meta.Genres, ", "))
	}
	return strings.Join(parts, " • ")
}

func toItems(tracks []*catalog.TrackMetadata) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{meta: t}
	}
	return items
}

func newTrackList(title string, tracks []*catalog.TrackMetadata, width, height int) list.Model {
	l := list.New(toItems(tracks), list.NewDefaultDelegate(), width, height)
	l.Title = title
	l.SetShowHelp(false)
	return l
}

// ids returns the track ids of l in display order, used as the play queue.
func ids(l list.Model) []string {
	items := l.Items()
	out := make([]string, 0, len(items))
	for _, it := range items {
		if ti, ok := it.(trackItem); ok {
			out = append(out, ti.meta.Ref.ID)
		}
	}
	return out
}
