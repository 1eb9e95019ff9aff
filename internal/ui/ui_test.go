package ui

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/badmusic/internal/catalog"
	"github.com/desertthunder/badmusic/internal/models"
	"github.com/desertthunder/badmusic/internal/player"
	"github.com/desertthunder/badmusic/internal/shared"
)

type fakePlayer struct {
	store *player.Store
	err   error
}

func (f *fakePlayer) RequestPlay(_ context.Context, id string, queue []string, c models.Catalog) error {
	if f.err != nil {
		return f.err
	}
	return f.store.Load(id, queue, c)
}

func (f *fakePlayer) Store() *player.Store { return f.store }

type fakeLibrary struct {
	songs   []*catalog.TrackMetadata
	suno    []*catalog.TrackMetadata
	similar []*catalog.TrackMetadata
	liked   map[string]bool
}

func (f *fakeLibrary) List(_ context.Context, c models.Catalog, _ map[string]any) ([]*catalog.TrackMetadata, error) {
	if c == models.CatalogGenerated {
		return f.suno, nil
	}
	return f.songs, nil
}

func (f *fakeLibrary) Liked(context.Context) ([]*catalog.TrackMetadata, error) {
	var out []*catalog.TrackMetadata
	for _, s := range f.songs {
		if f.liked[s.Ref.ID] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeLibrary) Similar(context.Context, models.TrackRef, int) ([]*catalog.TrackMetadata, error) {
	return f.similar, nil
}

func (f *fakeLibrary) ToggleLike(ref models.TrackRef) (bool, error) {
	f.liked[ref.ID] = !f.liked[ref.ID]
	return f.liked[ref.ID], nil
}

type mapResolver map[models.TrackRef]*catalog.TrackMetadata

func (r mapResolver) Resolve(_ context.Context, ref models.TrackRef) (*catalog.TrackMetadata, error) {
	if meta, ok := r[ref]; ok {
		return meta, nil
	}
	return nil, shared.ErrTrackNotFound
}

func song(id, title, path string) *catalog.TrackMetadata {
	return &catalog.TrackMetadata{
		Ref:      models.TrackRef{Catalog: models.CatalogStandard, ID: id},
		Title:    title,
		Author:   "Artist",
		Duration: 185,
		Count:    1234,
		SongPath: path,
	}
}

func suno(id, title string) *catalog.TrackMetadata {
	return &catalog.TrackMetadata{
		Ref:      models.TrackRef{Catalog: models.CatalogGenerated, ID: id},
		Title:    title,
		Author:   "Generator",
		Lyrics:   "la la la",
		AudioURL: "https://cdn.example.com/" + id + ".mp3",
	}
}

func newTestModel(t *testing.T, lib *fakeLibrary) (*Model, *fakePlayer) {
	t.Helper()

	resolver := mapResolver{}
	for _, tracks := range [][]*catalog.TrackMetadata{lib.songs, lib.suno, lib.similar} {
		for _, m := range tracks {
			resolver[m.Ref] = m
		}
	}

	p := &fakePlayer{store: player.NewStore()}
	m, err := NewModel(t.Context(), Deps{
		Player:   p,
		Library:  lib,
		Resolver: resolver,
		URLs:     catalog.URLLoader{StorageURL: "http://storage.local"},
	})
	if err != nil {
		t.Fatalf("failed to create model: %v", err)
	}
	t.Cleanup(m.Close)

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	for tab := range tabCount {
		msg := m.loadTab(tab)()
		m.Update(msg)
	}
	return m, p
}

func press(m *Model, k string) tea.Cmd {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "space":
		msg = tea.KeyMsg{Type: tea.KeySpace}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if msg := cmd(); msg != nil {
		m.Update(msg)
	}
}

// settle delivers the store snapshot and waits for the background metadata fetch.
func settle(t *testing.T, m *Model) {
	t.Helper()

	m.Update(playerEventMsg(player.Event{Current: m.store.Snapshot()}))
	if m.active != nil || m.state.ActiveTrackID == "" {
		return
	}

	select {
	case msg := <-m.resolved:
		m.Update(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for metadata")
	}
}

func TestModel(t *testing.T) {
	t.Run("Loads every tab", func(t *testing.T) {
		lib := &fakeLibrary{
			songs: []*catalog.TrackMetadata{song("s1", "First", "a.mp3"), song("s2", "Second", "b.mp3")},
			suno:  []*catalog.TrackMetadata{suno("g1", "Generated")},
			liked: map[string]bool{"s2": true},
		}
		m, _ := newTestModel(t, lib)

		for tab, want := range map[Tab]int{SongsTab: 2, SunoTab: 1, LikedTab: 1} {
			if got := len(m.lists[tab].Items()); got != want {
				t.Errorf("%s: expected %d items, got %d", tab, want, got)
			}
		}
		if !strings.Contains(m.View(), "First") {
			t.Error("expected song list in view")
		}
	})

	t.Run("Enter requests play with the list as queue", func(t *testing.T) {
		lib := &fakeLibrary{
			songs: []*catalog.TrackMetadata{song("s1", "First", "a.mp3"), song("s2", "Second", "b.mp3")},
			liked: map[string]bool{},
		}
		m, p := newTestModel(t, lib)

		run(t, m, press(m, "enter"))

		state := p.store.Snapshot()
		if state.ActiveTrackID != "s1" || !state.IsPlaying {
			t.Errorf("unexpected state %+v", state)
		}
		if fmt.Sprint(state.ActiveTrackIDs) != "[s1 s2]" {
			t.Errorf("expected queue [s1 s2], got %v", state.ActiveTrackIDs)
		}

		settle(t, m)
		bar := m.renderPlayerBar()
		if !strings.Contains(bar, "First") || !strings.Contains(bar, "1,234 plays") || !strings.Contains(bar, "1/2") {
			t.Errorf("unexpected player bar %q", bar)
		}
	})

	t.Run("Player bar hidden without a playable URL", func(t *testing.T) {
		lib := &fakeLibrary{
			songs: []*catalog.TrackMetadata{song("s1", "Pathless", "")},
			liked: map[string]bool{},
		}
		m, _ := newTestModel(t, lib)

		run(t, m, press(m, "enter"))
		settle(t, m)

		if m.active == nil {
			t.Fatal("expected active metadata to resolve")
		}
		if bar := m.renderPlayerBar(); bar != "" {
			t.Errorf("expected hidden player bar, got %q", bar)
		}

		press(m, "m")
		if !m.state.IsMobilePlayerExpanded {
			t.Fatal("expected expanded mobile player")
		}
		if view := m.View(); !strings.Contains(view, "Audio unavailable") {
			t.Errorf("expected expanded player in view, got %q", view)
		}

		press(m, "esc")
		if m.state.IsMobilePlayerExpanded {
			t.Error("expected esc to collapse the mobile player")
		}
	})

	t.Run("Transport keys", func(t *testing.T) {
		lib := &fakeLibrary{
			songs: []*catalog.TrackMetadata{song("s1", "First", "a.mp3"), song("s2", "Second", "b.mp3")},
			liked: map[string]bool{},
		}
		m, p := newTestModel(t, lib)

		press(m, "space")
		if m.status != "Nothing is playing" {
			t.Errorf("expected idle status, got %q", m.status)
		}

		run(t, m, press(m, "enter"))
		press(m, "space")
		if p.store.Snapshot().IsPlaying {
			t.Error("expected space to pause")
		}

		press(m, "n")
		if got := p.store.Snapshot().ActiveTrackID; got != "s2" {
			t.Errorf("expected next to select s2, got %s", got)
		}
		press(m, "p")
		if got := m.state.ActiveTrackID; got != "s1" {
			t.Errorf("expected previous to select s1, got %s", got)
		}
	})

	t.Run("Generated detail tabs", func(t *testing.T) {
		lib := &fakeLibrary{
			suno:    []*catalog.TrackMetadata{suno("g1", "Generated")},
			similar: []*catalog.TrackMetadata{suno("g2", "Cousin")},
			liked:   map[string]bool{},
		}
		m, _ := newTestModel(t, lib)

		press(m, "tab")
		if m.tab != SunoTab {
			t.Fatalf("expected suno tab, got %s", m.tab)
		}

		run(t, m, press(m, "d"))
		if m.detail == nil || m.detail.Ref.ID != "g1" {
			t.Fatalf("expected detail for g1, got %+v", m.detail)
		}
		if !strings.Contains(m.View(), "la la la") {
			t.Error("expected lyrics tab first")
		}

		press(m, "t")
		if m.detailTab != SimilarTab || !strings.Contains(m.View(), "Cousin") {
			t.Error("expected similar tab with related songs")
		}

		press(m, "w")
		if w := m.deps.Waves.Snapshot(); w.CurrentSongID != "g1" || !w.IsPlaying {
			t.Errorf("expected preview playing g1, got %+v", w)
		}
		press(m, "w")
		if m.deps.Waves.Snapshot().IsPlaying {
			t.Error("expected second click to pause the preview")
		}

		press(m, "esc")
		if m.detail != nil {
			t.Error("expected esc to close detail")
		}
	})

	t.Run("Like toggles uploaded songs only", func(t *testing.T) {
		lib := &fakeLibrary{
			songs: []*catalog.TrackMetadata{song("s1", "First", "a.mp3")},
			suno:  []*catalog.TrackMetadata{suno("g1", "Generated")},
			liked: map[string]bool{},
		}
		m, _ := newTestModel(t, lib)

		run(t, m, press(m, "l"))
		if !lib.liked["s1"] || m.status != "Added to liked songs" {
			t.Errorf("expected s1 liked, status %q", m.status)
		}

		press(m, "tab")
		if cmd := press(m, "l"); cmd != nil {
			t.Error("expected no like command for generated songs")
		}
		if m.status != "Only uploaded songs can be liked" {
			t.Errorf("unexpected status %q", m.status)
		}
	})

	t.Run("Closed coordinator is fatal", func(t *testing.T) {
		lib := &fakeLibrary{songs: []*catalog.TrackMetadata{song("s1", "First", "a.mp3")}, liked: map[string]bool{}}
		m, p := newTestModel(t, lib)
		p.err = shared.ErrClosed

		run(t, m, press(m, "enter"))
		if !strings.Contains(m.View(), "Error:") {
			t.Error("expected error view")
		}
	})

	t.Run("Requires dependencies", func(t *testing.T) {
		if _, err := NewModel(context.Background(), Deps{}); err == nil {
			t.Error("expected error for missing dependencies")
		}
	})
}
