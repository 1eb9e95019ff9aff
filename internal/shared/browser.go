package shared

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// OpenURL hands an http(s) link, such as a song's audio URL, to the system opener.
//
// Supports macOS, Linux, and Windows platforms.
func OpenURL(link string) error {
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: not an http(s) URL: %q", ErrInvalidArgument, link)
	}

	var cmd *exec.Cmd
	switch rt := getRuntime(); rt {
	case "darwin":
		cmd = exec.Command("open", link)
	case "linux":
		cmd = exec.Command("xdg-open", link)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", link)
	default:
		return fmt.Errorf("%w: unsupported platform: %s", ErrServiceUnavailable, rt)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", link, err)
	}
	return nil
}
