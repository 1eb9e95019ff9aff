package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/badmusic/internal/catalog"
	"github.com/desertthunder/badmusic/internal/models"
	"github.com/desertthunder/badmusic/internal/player"
	"github.com/desertthunder/badmusic/internal/shared"
)

// Tab identifies one of the song lists.
type Tab int

const (
	SongsTab Tab = iota
	SunoTab
	LikedTab
	tabCount
)

func (t Tab) String() string {
	switch t {
	case SongsTab:
		return "Songs"
	case SunoTab:
		return "Suno"
	case LikedTab:
		return "Liked"
	default:
		return "?"
	}
}

// Catalog returns the catalog the tab's tracks belong to.
func (t Tab) Catalog() models.Catalog {
	if t == SunoTab {
		return models.CatalogGenerated
	}
	return models.CatalogStandard
}

// DetailTab selects the lower panel of a generated song's detail page.
type DetailTab int

const (
	LyricsTab DetailTab = iota
	SimilarTab
)

const similarLimit = 10

// Player is satisfied by [playback.Coordinator].
type Player interface {
	RequestPlay(ctx context.Context, id string, queue []string, c models.Catalog) error
	Store() *player.Store
}

// Library is satisfied by [catalog.Library].
type Library interface {
	List(ctx context.Context, c models.Catalog, criteria map[string]any) ([]*catalog.TrackMetadata, error)
	Liked(ctx context.Context) ([]*catalog.TrackMetadata, error)
	Similar(ctx context.Context, ref models.TrackRef, limit int) ([]*catalog.TrackMetadata, error)
	ToggleLike(ref models.TrackRef) (bool, error)
}

// Deps bundles what the TUI talks to.
type Deps struct {
	Player    Player
	Library   Library
	Resolver  catalog.RefResolver
	URLs      catalog.URLLoader
	Waves     *player.WaveStore
	CacheSize int
	Logger    *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	deps   Deps
	store  *player.Store
	cache  *catalog.Cache
	logger *log.Logger

	sub      *player.Subscription[player.Event]
	waveSub  *player.Subscription[player.WaveState]
	resolved chan Msg

	state  player.State
	wave   player.WaveState
	active *catalog.TrackMetadata

	tab       Tab
	lists     [tabCount]list.Model
	detail    *catalog.TrackMetadata
	detailTab DetailTab
	similar   []*catalog.TrackMetadata

	status string
	err    error
	width  int
	height int
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, deps Deps) (*Model, error) {
	if deps.Player == nil || deps.Library == nil || deps.Resolver == nil {
		return nil, fmt.Errorf("%w: player, library and resolver are required", shared.ErrMissingArgument)
	}
	if deps.Waves == nil {
		deps.Waves = player.NewWaveStore()
	}

	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	m := &Model{
		ctx:      ctx,
		deps:     deps,
		store:    deps.Player.Store(),
		logger:   logger,
		resolved: make(chan Msg, 64),
		help:     help.New(),
		keys:     newKeyMap(),
	}

	cache, err := catalog.NewCache(deps.Resolver, deps.CacheSize, m.notify)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata cache: %w", err)
	}
	m.cache = cache

	for t := range tabCount {
		m.lists[t] = newTrackList(t.String(), nil, 0, 0)
	}

	m.state = m.store.Snapshot()
	m.wave = deps.Waves.Snapshot()
	m.sub = m.store.Subscribe()
	m.waveSub = deps.Waves.Subscribe()
	return m, nil
}

// Init loads every list and starts listening for player changes.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadTab(SongsTab),
		m.loadTab(SunoTab),
		m.loadTab(LikedTab),
		m.waitForEvent(),
		m.waitForWave(),
		m.waitForResolved(),
	)
}

// Close releases subscriptions and stops background fetches.
func (m *Model) Close() {
	m.store.Unsubscribe(m.sub)
	m.deps.Waves.Unsubscribe(m.waveSub)
	m.cache.Close()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for t := range tabCount {
			m.lists[t].SetSize(max(msg.Width-4, 0), max(msg.Height-10, 0))
		}
		return m, nil

	case tea.KeyMsg:
		if m.lists[m.tab].FilterState() == list.Filtering {
			return m.updateList(msg)
		}
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgTracksLoaded:
		data := msg.data.(tracksLoaded)
		if data.err != nil {
			m.logger.Error("failed to load tracks", "tab", data.tab, "error", data.err)
			m.status = fmt.Sprintf("Could not load %s: %v", data.tab, data.err)
			return m, nil
		}
		cmd := m.lists[data.tab].SetItems(toItems(data.tracks))
		return m, cmd

	case MsgPlayerEvent:
		e := msg.data.(player.Event)
		m.setState(e.Current)
		return m, m.waitForEvent()

	case MsgTrackResolved:
		data := msg.data.(trackResolved)
		if data.err != nil {
			m.logger.Warn("failed to resolve track", "ref", data.ref, "error", data.err)
		} else if data.ref == m.state.ActiveRef() {
			m.active = data.meta
		}
		return m, m.waitForResolved()

	case MsgSimilarLoaded:
		data := msg.data.(similarLoaded)
		if m.detail != nil && m.detail.Ref == data.ref {
			m.similar = data.tracks
			if data.err != nil {
				m.status = fmt.Sprintf("Could not load similar songs: %v", data.err)
			}
		}
		return m, nil

	case MsgLikeToggled:
		data := msg.data.(likeToggled)
		switch {
		case data.err != nil:
			m.status = fmt.Sprintf("Like failed: %v", data.err)
			return m, nil
		case data.liked:
			m.status = "Added to liked songs"
		default:
			m.status = "Removed from liked songs"
		}
		m.cache.Invalidate(data.ref)
		return m, tea.Batch(m.loadTab(LikedTab), m.loadTab(SongsTab))

	case MsgWaveChanged:
		m.wave = msg.data.(player.WaveState)
		return m, m.waitForWave()

	case MsgFailed:
		err := msg.data.(error)
		m.logger.Error("player request failed", "error", err)
		if errors.Is(err, shared.ErrClosed) {
			m.err = err
			return m, nil
		}
		m.status = err.Error()
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.back):
		switch {
		case m.detail != nil:
			m.closeDetail()
		case m.state.IsMobilePlayerExpanded:
			m.store.ToggleMobilePlayer()
			m.setState(m.store.Snapshot())
		}
		return m, nil

	case key.Matches(msg, m.keys.enter):
		return m, m.playSelected()

	case key.Matches(msg, m.keys.toggle):
		if err := m.store.TogglePlay(); errors.Is(err, shared.ErrNoActiveTrack) {
			m.status = "Nothing is playing"
		}
		m.setState(m.store.Snapshot())
		return m, nil

	case key.Matches(msg, m.keys.next):
		m.store.Next()
		m.setState(m.store.Snapshot())
		return m, nil

	case key.Matches(msg, m.keys.prev):
		m.store.Previous()
		m.setState(m.store.Snapshot())
		return m, nil

	case key.Matches(msg, m.keys.mobile):
		m.store.ToggleMobilePlayer()
		m.setState(m.store.Snapshot())
		return m, nil

	case key.Matches(msg, m.keys.tab):
		m.closeDetail()
		m.tab = (m.tab + 1) % tabCount
		return m, nil

	case key.Matches(msg, m.keys.detail):
		return m, m.openDetail()

	case key.Matches(msg, m.keys.subtab):
		if m.detail != nil && m.detail.Ref.Catalog == models.CatalogGenerated {
			m.detailTab = (m.detailTab + 1) % 2
		}
		return m, nil

	case key.Matches(msg, m.keys.like):
		return m, m.toggleLike()

	case key.Matches(msg, m.keys.wave):
		m.previewWave()
		return m, nil
	}

	if m.detail != nil {
		return m, nil
	}
	return m.updateList(msg)
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.lists[m.tab], cmd = m.lists[m.tab].Update(msg)
	return m, cmd
}

// setState records a new player snapshot and looks up the active track when it changes.
func (m *Model) setState(s player.State) {
	changed := s.ActiveRef() != m.state.ActiveRef()
	m.state = s
	if !changed && m.active != nil {
		return
	}

	m.active = nil
	if ref := s.ActiveRef(); !ref.IsZero() {
		if meta, ok := m.cache.Lookup(ref); ok {
			m.active = meta
		}
	}
}

func (m *Model) selected() *catalog.TrackMetadata {
	if m.detail != nil {
		return m.detail
	}
	if it, ok := m.lists[m.tab].SelectedItem().(trackItem); ok {
		return it.meta
	}
	return nil
}

func (m *Model) playSelected() tea.Cmd {
	meta := m.selected()
	if meta == nil {
		return nil
	}

	queue := ids(m.lists[m.tab])
	if m.detail != nil && m.detail.Ref.Catalog != m.tab.Catalog() {
		queue = []string{meta.Ref.ID}
	}

	ref := meta.Ref
	return func() tea.Msg {
		if err := m.deps.Player.RequestPlay(m.ctx, ref.ID, queue, ref.Catalog); err != nil {
			return failedMsg(err)
		}
		return nil
	}
}

func (m *Model) openDetail() tea.Cmd {
	meta := m.selected()
	if meta == nil || m.detail != nil {
		return nil
	}

	m.detail = meta
	m.detailTab = LyricsTab
	m.similar = nil
	if meta.Ref.Catalog != models.CatalogGenerated {
		return nil
	}

	ref := meta.Ref
	return func() tea.Msg {
		tracks, err := m.deps.Library.Similar(m.ctx, ref, similarLimit)
		return similarLoadedMsg(ref, tracks, err)
	}
}

func (m *Model) closeDetail() {
	m.detail = nil
	m.similar = nil
	m.detailTab = LyricsTab
}

func (m *Model) toggleLike() tea.Cmd {
	meta := m.selected()
	if meta == nil {
		return nil
	}
	if meta.Ref.Catalog != models.CatalogStandard {
		m.status = "Only uploaded songs can be liked"
		return nil
	}

	ref := meta.Ref
	return func() tea.Msg {
		liked, err := m.deps.Library.ToggleLike(ref)
		return likeToggledMsg(ref, liked, err)
	}
}

// previewWave toggles the standalone preview for the selected generated song.
func (m *Model) previewWave() {
	meta := m.selected()
	if meta == nil || meta.Ref.Catalog != models.CatalogGenerated {
		return
	}

	url, ok := m.deps.URLs.Load(meta)
	if !ok {
		m.status = "No preview available"
		return
	}
	if err := m.deps.Waves.HandlePlayClick(meta.Ref.ID, url); err != nil {
		m.status = err.Error()
	}
	m.wave = m.deps.Waves.Snapshot()
}

func (m *Model) loadTab(t Tab) tea.Cmd {
	return func() tea.Msg {
		var (
			tracks []*catalog.TrackMetadata
			err    error
		)
		if t == LikedTab {
			tracks, err = m.deps.Library.Liked(m.ctx)
		} else {
			tracks, err = m.deps.Library.List(m.ctx, t.Catalog(), nil)
		}
		return tracksLoadedMsg(t, tracks, err)
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	sub := m.sub
	return func() tea.Msg {
		select {
		case e := <-sub.Events:
			return playerEventMsg(e)
		case <-sub.Done:
			return nil
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) waitForWave() tea.Cmd {
	sub := m.waveSub
	return func() tea.Msg {
		select {
		case s := <-sub.Events:
			return waveChangedMsg(s)
		case <-sub.Done:
			return nil
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) waitForResolved() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.resolved:
			return msg
		case <-m.ctx.Done():
			return nil
		}
	}
}

// notify forwards background cache fetches into the update loop.
func (m *Model) notify(ref models.TrackRef, meta *catalog.TrackMetadata, err error) {
	select {
	case m.resolved <- trackResolvedMsg(ref, meta, err):
	case <-m.ctx.Done():
	}
}

// View renders the tab strip, the current page, the player bar and help.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch {
	case m.state.IsMobilePlayerExpanded:
		b.WriteString(m.renderExpanded())
	case m.detail != nil:
		b.WriteString(m.renderDetail())
	default:
		b.WriteString(m.lists[m.tab].View())
	}

	if bar := m.renderPlayerBar(); bar != "" && !m.state.IsMobilePlayerExpanded {
		b.WriteString("\n")
		b.WriteString(bar)
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(styles.warn.Render(m.status))
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.helpKeys()))
	return b.String()
}

func (m *Model) helpKeys() []key.Binding {
	switch {
	case m.state.IsMobilePlayerExpanded:
		return []key.Binding{m.keys.toggle, m.keys.next, m.keys.prev, m.keys.back, m.keys.quit}
	case m.detail != nil && m.detail.Ref.Catalog == models.CatalogGenerated:
		return []key.Binding{m.keys.enter, m.keys.subtab, m.keys.wave, m.keys.back, m.keys.quit}
	case m.detail != nil:
		return []key.Binding{m.keys.enter, m.keys.like, m.keys.back, m.keys.quit}
	default:
		return []key.Binding{m.keys.enter, m.keys.toggle, m.keys.tab, m.keys.detail, m.keys.like, m.keys.mobile, m.keys.quit}
	}
}
