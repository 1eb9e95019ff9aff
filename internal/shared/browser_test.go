package shared

import (
	"errors"
	"testing"
)

func TestOpenURL(t *testing.T) {
	t.Run("rejects non-http links", func(t *testing.T) {
		for _, link := range []string{"", "songs/a.mp3", "file:///etc/passwd", "https://"} {
			if err := OpenURL(link); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("OpenURL(%q) = %v, want ErrInvalidArgument", link, err)
			}
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		orig := getRuntime
		t.Cleanup(func() { getRuntime = orig })
		getRuntime = func() string { return "plan9" }

		if err := OpenURL("https://cdn.example.com/a.mp3"); !errors.Is(err, ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}
