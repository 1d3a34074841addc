// Browser session capture: the webscraper pages authenticate with a session cookie,
// which is lifted from a "Copy as cURL" command out of the browser's DevTools.
package shared

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	curlHeaderRe = regexp.MustCompile(`(?:-H|--header)\s+(?:'([^']+)'|"([^"]+)")`)
	curlCookieRe = regexp.MustCompile(`(?:-b|--cookie)\s+(?:'([^']+)'|"([^"]+)")`)
)

// skippedHeaders are set per request by the client and must not be replayed.
var skippedHeaders = map[string]bool{
	"accept-encoding": true,
	"content-length":  true,
	"content-type":    true,
	"host":            true,
}

// Session holds the headers and cookie replayed on every request to the webscraper.
type Session struct {
	Headers map[string]string `json:"headers"`
	Cookie  string            `json:"cookie,omitempty"`
}

// ParseCurlCommand extracts replayable headers and the cookie from a cURL command.
func ParseCurlCommand(data []byte) (*Session, error) {
	cmd := strings.ReplaceAll(string(data), "\\\n", " ")

	s := &Session{Headers: make(map[string]string)}
	for _, m := range curlHeaderRe.FindAllStringSubmatch(cmd, -1) {
		key, value, ok := strings.Cut(firstGroup(m), ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)

		switch lower := strings.ToLower(key); {
		case lower == "cookie":
			s.Cookie = value
		case skippedHeaders[lower]:
		default:
			s.Headers[key] = value
		}
	}

	if m := curlCookieRe.FindStringSubmatch(cmd); m != nil {
		s.Cookie = firstGroup(m)
	}

	if len(s.Headers) == 0 && s.Cookie == "" {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrInvalidInput)
	}
	return s, nil
}

func firstGroup(m []string) string {
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}

// Apply sets the session headers and cookie on req.
func (s *Session) Apply(req *http.Request) {
	if s == nil {
		return
	}
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}
	if s.Cookie != "" {
		req.Header.Set("Cookie", s.Cookie)
	}
}

// SaveSession writes s as JSON with owner-only permissions.
func SaveSession(path string, s *Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// LoadSession reads a session file written by [SaveSession].
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: session file: %v", ErrInvalidInput, err)
	}
	return &s, nil
}
