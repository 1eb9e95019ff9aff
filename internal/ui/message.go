package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/badmusic/internal/catalog"
	"github.com/desertthunder/badmusic/internal/models"
	"github.com/desertthunder/badmusic/internal/player"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgTracksLoaded MsgKind = iota
	MsgPlayerEvent
	MsgTrackResolved
	MsgSimilarLoaded
	MsgLikeToggled
	MsgWaveChanged
	MsgFailed
)

type tracksLoaded struct {
	tab    Tab
	tracks []*catalog.TrackMetadata
	err    error
}

type trackResolved struct {
	ref  models.TrackRef
	meta *catalog.TrackMetadata
	err  error
}

type similarLoaded struct {
	ref    models.TrackRef
	tracks []*catalog.TrackMetadata
	err    error
}

type likeToggled struct {
	ref   models.TrackRef
	liked bool
	err   error
}

// tracksLoadedMsg is the constructor for [MsgTracksLoaded]
func tracksLoadedMsg(tab Tab, tracks []*catalog.TrackMetadata, err error) Msg {
	return Msg{kind: MsgTracksLoaded, data: tracksLoaded{tab, tracks, err}}
}

// playerEventMsg is the constructor for [MsgPlayerEvent]
func playerEventMsg(e player.Event) Msg {
	return Msg{kind: MsgPlayerEvent, data: e}
}

// trackResolvedMsg is the constructor for [MsgTrackResolved]
func trackResolvedMsg(ref models.TrackRef, meta *catalog.TrackMetadata, err error) Msg {
	return Msg{kind: MsgTrackResolved, data: trackResolved{ref, meta, err}}
}

// similarLoadedMsg is the constructor for [MsgSimilarLoaded]
func similarLoadedMsg(ref models.TrackRef, tracks []*catalog.TrackMetadata, err error) Msg {
	return Msg{kind: MsgSimilarLoaded, data: similarLoaded{ref, tracks, err}}
}

// likeToggledMsg is the constructor for [MsgLikeToggled]
func likeToggledMsg(ref models.TrackRef, liked bool, err error) Msg {
	return Msg{kind: MsgLikeToggled, data: likeToggled{ref, liked, err}}
}

// waveChangedMsg is the constructor for [MsgWaveChanged]
func waveChangedMsg(s player.WaveState) Msg {
	return Msg{kind: MsgWaveChanged, data: s}
}

// failedMsg is the constructor for [MsgFailed]
func failedMsg(err error) Msg {
	return Msg{kind: MsgFailed, data: err}
}
