// Utilities for parsing cURL commands.
package shared

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
)

var (
	headerRegex = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	cookieRegex = regexp.MustCompile(`-b\s+'([^']+)'|-b\s+"([^"]+)"`)
	urlRegex    = regexp.MustCompile(`'(https?://[^']+)'|"(https?://[^"]+)"|(https?://\S+)`)
)

// CurlRequest is a request copied from browser DevTools ("Copy as cURL").
type CurlRequest struct {
	URL     string
	Headers map[string]string
	Cookie  string
}

// ParseCurlFile reads a .sh file containing a cURL command.
func ParseCurlFile(filepath string) (*CurlRequest, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(content)
}

// ParseCurlCommand extracts the target URL, headers and cookie from a cURL command.
//
// Header names are lower-cased.
func ParseCurlCommand(data []byte) (*CurlRequest, error) {
	curlCmd := string(data)
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	req := &CurlRequest{Headers: make(map[string]string)}

	for _, match := range headerRegex.FindAllStringSubmatch(curlCmd, -1) {
		key, value, ok := strings.Cut(firstGroup(match), ":")
		if !ok {
			continue
		}

		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if key == "cookie" {
			if req.Cookie == "" {
				req.Cookie = value
			}
			continue
		}
		req.Headers[key] = value
	}

	if match := cookieRegex.FindStringSubmatch(curlCmd); match != nil {
		req.Cookie = firstGroup(match)
	}

	if match := urlRegex.FindStringSubmatch(headerRegex.ReplaceAllString(curlCmd, "")); match != nil {
		req.URL = firstGroup(match)
	}

	if len(req.Headers) == 0 && req.Cookie == "" {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrInvalidInput)
	}

	return req, nil
}

// BaseURL returns scheme://host of the request, dropping the REST path.
func (c *CurlRequest) BaseURL() (string, error) {
	if c.URL == "" {
		return "", fmt.Errorf("%w: no URL found in curl command", ErrInvalidInput)
	}

	u, err := url.Parse(c.URL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: invalid URL %q", ErrInvalidInput, c.URL)
	}
	return u.Scheme + "://" + u.Host, nil
}

// APIKey returns the apikey header, falling back to the bearer token.
func (c *CurlRequest) APIKey() string {
	if key := c.Headers["apikey"]; key != "" {
		return key
	}
	if auth, ok := strings.CutPrefix(c.Headers["authorization"], "Bearer "); ok {
		return strings.TrimSpace(auth)
	}
	return ""
}

// Apply copies the base URL and key into cfg.
func (c *CurlRequest) Apply(cfg *BackendConfig) error {
	base, err := c.BaseURL()
	if err != nil {
		return err
	}

	key := c.APIKey()
	if key == "" {
		return fmt.Errorf("%w: no apikey or bearer token in curl command", ErrInvalidInput)
	}

	cfg.URL = base
	cfg.AnonKey = key
	return nil
}

func firstGroup(match []string) string {
	for _, g := range match[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}
