package player

import (
	"sync"

	"github.com/desertthunder/badmusic/internal/shared"
)

// WaveState is a snapshot of the waveform preview.
type WaveState struct {
	CurrentSongID string `json:"current_song_id"`
	AudioURL      string `json:"audio_url"`
	IsPlaying     bool   `json:"is_playing"`
}

// WaveStore drives the play/pause preview on a generated song's detail page.
type WaveStore struct {
	mu    sync.Mutex
	state WaveState
	hub   hub[WaveState]
}

// NewWaveStore creates an uninitialized preview.
func NewWaveStore() *WaveStore {
	return &WaveStore{}
}

// Snapshot returns the current preview state.
func (w *WaveStore) Snapshot() WaveState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Subscribe registers a new subscriber for preview changes.
func (w *WaveStore) Subscribe() *Subscription[WaveState] { return w.hub.subscribe() }

// Unsubscribe removes sub and closes its Done channel.
func (w *WaveStore) Unsubscribe(sub *Subscription[WaveState]) { w.hub.unsubscribe(sub) }

// Initialize loads url as the audio for songID, paused.
func (w *WaveStore) Initialize(url, songID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.set(WaveState{CurrentSongID: songID, AudioURL: url})
}

// Play starts the loaded audio. It returns [shared.ErrNoAudio] before Initialize.
func (w *WaveStore) Play() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.play()
}

// Pause stops the loaded audio.
func (w *WaveStore) Pause() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pause()
}

// HandlePlayClick reacts to the play button for songID.
//
// An empty url is ignored. A different song is loaded and started; the
// current song toggles between playing and paused.
func (w *WaveStore) HandlePlayClick(songID, url string) error {
	if url == "" {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.CurrentSongID != songID || w.state.AudioURL == "" {
		w.set(WaveState{CurrentSongID: songID, AudioURL: url})
		return w.play()
	}

	if w.state.IsPlaying {
		w.pause()
		return nil
	}
	return w.play()
}

// HandleEnded pauses once the audio reaches its end.
func (w *WaveStore) HandleEnded() {
	w.Pause()
}

func (w *WaveStore) play() error {
	if w.state.AudioURL == "" {
		return shared.ErrNoAudio
	}
	next := w.state
	next.IsPlaying = true
	w.set(next)
	return nil
}

func (w *WaveStore) pause() {
	next := w.state
	next.IsPlaying = false
	w.set(next)
}

func (w *WaveStore) set(next WaveState) {
	if next == w.state {
		return
	}
	w.state = next
	w.hub.publish(next)
}
