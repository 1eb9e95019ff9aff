package player

import (
	"slices"
	"sync"

	"github.com/desertthunder/badmusic/internal/models"
	"github.com/desertthunder/badmusic/internal/shared"
)

// State is a value snapshot of the player.
//
// IsPlaying is only ever true while ActiveTrackID is set.
type State struct {
	ActiveTrackID          string         `json:"active_track_id"`
	ActiveTrackIDs         []string       `json:"active_track_ids"`
	Catalog                models.Catalog `json:"catalog"`
	IsPlaying              bool           `json:"is_playing"`
	IsMobilePlayerExpanded bool           `json:"is_mobile_player_expanded"`
}

// IsSunoContext reports whether the active track belongs to the generated catalog.
func (s State) IsSunoContext() bool { return s.Catalog == models.CatalogGenerated }

// ActiveRef returns the active track tagged with its catalog.
func (s State) ActiveRef() models.TrackRef {
	return models.TrackRef{Catalog: s.Catalog, ID: s.ActiveTrackID}
}

// Equal compares two snapshots field by field.
func (s State) Equal(o State) bool {
	return s.ActiveTrackID == o.ActiveTrackID &&
		slices.Equal(s.ActiveTrackIDs, o.ActiveTrackIDs) &&
		s.Catalog == o.Catalog &&
		s.IsPlaying == o.IsPlaying &&
		s.IsMobilePlayerExpanded == o.IsMobilePlayerExpanded
}

func (s State) clone() State {
	s.ActiveTrackIDs = slices.Clone(s.ActiveTrackIDs)
	return s
}

// EventKind names the mutation that produced an [Event].
type EventKind string

const (
	EventTrack  EventKind = "track"
	EventQueue  EventKind = "queue"
	EventPlay   EventKind = "play"
	EventPause  EventKind = "pause"
	EventMobile EventKind = "mobile"
	EventReset  EventKind = "reset"
	EventLoad   EventKind = "load"
)

// Event is published after every mutation that changed the state.
type Event struct {
	Kind     EventKind `json:"kind"`
	Previous State     `json:"previous"`
	Current  State     `json:"current"`
}

// Store is the shared player state.
type Store struct {
	mu    sync.RWMutex
	state State
	hub   hub[Event]
}

// NewStore creates an empty store: no active track, paused, mobile player collapsed.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers a new subscriber for state events.
func (s *Store) Subscribe() *Subscription[Event] {
	return s.hub.subscribe()
}

// Unsubscribe removes sub and closes its Done channel.
func (s *Store) Unsubscribe(sub *Subscription[Event]) {
	s.hub.unsubscribe(sub)
}

// Close ends every subscription.
func (s *Store) Close() {
	s.hub.closeAll()
}

// SetActiveTrack sets the active track and its catalog without touching IsPlaying.
//
// An empty id clears the active track and stops playback.
func (s *Store) SetActiveTrack(id string, catalog models.Catalog) {
	s.mutate(EventTrack, func(st *State) error {
		st.ActiveTrackID = id
		st.Catalog = catalog
		if id == "" {
			st.IsPlaying = false
		}
		return nil
	})
}

// SetQueue replaces the list used for next and previous.
func (s *Store) SetQueue(ids []string, catalog models.Catalog) {
	s.mutate(EventQueue, func(st *State) error {
		st.ActiveTrackIDs = slices.Clone(ids)
		st.Catalog = catalog
		return nil
	})
}

// Load makes id the active track, replaces the queue and starts playback in one mutation.
//
// id is appended to the queue when missing, so subscribers never observe an
// active track outside ActiveTrackIDs.
func (s *Store) Load(id string, queue []string, catalog models.Catalog) error {
	if id == "" {
		return shared.ErrNoActiveTrack
	}

	return s.mutate(EventLoad, func(st *State) error {
		ids := slices.Clone(queue)
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}

		st.ActiveTrackID = id
		st.ActiveTrackIDs = ids
		st.Catalog = catalog
		st.IsPlaying = true
		return nil
	})
}

// Play marks the active track as playing.
//
// With no active track the state is left alone and [shared.ErrNoActiveTrack] is returned.
func (s *Store) Play() error {
	return s.mutate(EventPlay, func(st *State) error {
		if st.ActiveTrackID == "" {
			return shared.ErrNoActiveTrack
		}
		st.IsPlaying = true
		return nil
	})
}

// Pause stops playback. Pausing a paused player does nothing.
func (s *Store) Pause() {
	s.mutate(EventPause, func(st *State) error {
		st.IsPlaying = false
		return nil
	})
}

// TogglePlay pauses a playing track or plays a paused one.
func (s *Store) TogglePlay() error {
	return s.mutateKind(func(st *State) (EventKind, error) {
		if st.IsPlaying {
			st.IsPlaying = false
			return EventPause, nil
		}
		if st.ActiveTrackID == "" {
			return EventPlay, shared.ErrNoActiveTrack
		}
		st.IsPlaying = true
		return EventPlay, nil
	})
}

// ToggleMobilePlayer opens or closes the expanded player.
func (s *Store) ToggleMobilePlayer() {
	s.mutate(EventMobile, func(st *State) error {
		st.IsMobilePlayerExpanded = !st.IsMobilePlayerExpanded
		return nil
	})
}

// Reset returns every field to its zero value.
func (s *Store) Reset() {
	s.mutate(EventReset, func(st *State) error {
		*st = State{}
		return nil
	})
}

// Next moves to the following track in the queue, wrapping to the start.
func (s *Store) Next() { s.step(1) }

// Previous moves to the preceding track in the queue, wrapping to the end.
func (s *Store) Previous() { s.step(-1) }

func (s *Store) step(delta int) {
	s.mutate(EventTrack, func(st *State) error {
		n := len(st.ActiveTrackIDs)
		if n == 0 {
			return nil
		}

		i := slices.Index(st.ActiveTrackIDs, st.ActiveTrackID)
		switch {
		case i < 0 && delta > 0:
			i = 0
		case i < 0:
			i = n - 1
		default:
			i = ((i+delta)%n + n) % n
		}

		st.ActiveTrackID = st.ActiveTrackIDs[i]
		return nil
	})
}

func (s *Store) mutate(kind EventKind, fn func(*State) error) error {
	return s.mutateKind(func(st *State) (EventKind, error) {
		return kind, fn(st)
	})
}

// mutateKind applies fn to a copy of the state, commits it on success and
// publishes an event when something changed.
func (s *Store) mutateKind(fn func(*State) (EventKind, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state.clone()
	next := s.state.clone()

	kind, err := fn(&next)
	if err != nil {
		return err
	}
	if next.Equal(prev) {
		return nil
	}

	s.state = next
	s.hub.publish(Event{Kind: kind, Previous: prev, Current: next.clone()})
	return nil
}
