package player

import (
	"errors"
	"testing"

	"github.com/desertthunder/badmusic/internal/shared"
)

func TestWaveStore(t *testing.T) {
	t.Run("Play before Initialize", func(t *testing.T) {
		w := NewWaveStore()
		if err := w.Play(); !errors.Is(err, shared.ErrNoAudio) {
			t.Errorf("expected ErrNoAudio, got %v", err)
		}
	})

	t.Run("HandlePlayClick", func(t *testing.T) {
		tests := []struct {
			name   string
			clicks [][2]string
			want   WaveState
		}{
			{
				name:   "empty url ignored",
				clicks: [][2]string{{"a", ""}},
				want:   WaveState{},
			},
			{
				name:   "new song starts",
				clicks: [][2]string{{"a", "http://a.mp3"}},
				want:   WaveState{CurrentSongID: "a", AudioURL: "http://a.mp3", IsPlaying: true},
			},
			{
				name:   "same song toggles",
				clicks: [][2]string{{"a", "http://a.mp3"}, {"a", "http://a.mp3"}},
				want:   WaveState{CurrentSongID: "a", AudioURL: "http://a.mp3"},
			},
			{
				name:   "same song toggles back",
				clicks: [][2]string{{"a", "http://a.mp3"}, {"a", "http://a.mp3"}, {"a", "http://a.mp3"}},
				want:   WaveState{CurrentSongID: "a", AudioURL: "http://a.mp3", IsPlaying: true},
			},
			{
				name:   "different song switches",
				clicks: [][2]string{{"a", "http://a.mp3"}, {"b", "http://b.mp3"}},
				want:   WaveState{CurrentSongID: "b", AudioURL: "http://b.mp3", IsPlaying: true},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := NewWaveStore()
				for _, c := range tt.clicks {
					if err := w.HandlePlayClick(c[0], c[1]); err != nil {
						t.Fatalf("unexpected error: %v", err)
					}
				}
				if got := w.Snapshot(); got != tt.want {
					t.Errorf("expected %+v, got %+v", tt.want, got)
				}
			})
		}
	})

	t.Run("HandleEnded pauses", func(t *testing.T) {
		w := NewWaveStore()
		sub := w.Subscribe()
		defer w.Unsubscribe(sub)

		w.Initialize("http://a.mp3", "a")
		if err := w.Play(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		w.HandleEnded()

		if w.Snapshot().IsPlaying {
			t.Error("expected paused after end")
		}
		if got := len(sub.Events); got != 3 {
			t.Errorf("expected 3 events, got %d", got)
		}
	})
}
