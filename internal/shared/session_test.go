package shared

import (
	"errors"
	"net/http"
	"path/filepath"
	"testing"
)

func TestParseCurlCommand(t *testing.T) {
	t.Run("headers and cookie flag", func(t *testing.T) {
		cmd := `curl 'http://127.0.0.1:8000/webscraper/default/index' \
  -H 'Accept: text/html' \
  -H "User-Agent: Mozilla/5.0" \
  -H 'Content-Length: 12' \
  -b 'session_id_webscraper=127.0.0.1-abc'`

		s, err := ParseCurlCommand([]byte(cmd))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if s.Headers["Accept"] != "text/html" {
			t.Errorf("expected Accept header, got %q", s.Headers["Accept"])
		}
		if s.Headers["User-Agent"] != "Mozilla/5.0" {
			t.Errorf("expected User-Agent header, got %q", s.Headers["User-Agent"])
		}
		if _, ok := s.Headers["Content-Length"]; ok {
			t.Error("Content-Length should not be replayed")
		}
		if s.Cookie != "session_id_webscraper=127.0.0.1-abc" {
			t.Errorf("unexpected cookie %q", s.Cookie)
		}
	})

	t.Run("cookie header", func(t *testing.T) {
		s, err := ParseCurlCommand([]byte(`curl 'http://x' -H 'Cookie: a=1; b=2'`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Cookie != "a=1; b=2" {
			t.Errorf("unexpected cookie %q", s.Cookie)
		}
		if len(s.Headers) != 0 {
			t.Errorf("cookie should not be kept as a plain header: %v", s.Headers)
		}
	})

	t.Run("nothing to replay", func(t *testing.T) {
		_, err := ParseCurlCommand([]byte(`curl 'http://x'`))
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestSession(t *testing.T) {
	t.Run("Save And Load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "session.json")
		want := &Session{Headers: map[string]string{"X-Test": "1"}, Cookie: "c=1"}

		if err := SaveSession(path, want); err != nil {
			t.Fatalf("failed to save session: %v", err)
		}

		got, err := LoadSession(path)
		if err != nil {
			t.Fatalf("failed to load session: %v", err)
		}
		if got.Cookie != want.Cookie || got.Headers["X-Test"] != "1" {
			t.Errorf("loaded session = %+v, want %+v", got, want)
		}
	})

	t.Run("Apply", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "http://x", nil)
		s := &Session{Headers: map[string]string{"X-Test": "1"}, Cookie: "c=1"}
		s.Apply(req)

		if req.Header.Get("X-Test") != "1" || req.Header.Get("Cookie") != "c=1" {
			t.Errorf("headers not applied: %v", req.Header)
		}

		var nilSession *Session
		nilSession.Apply(req)
	})
}

func TestOpenBrowser(t *testing.T) {
	origRuntime, origOpen := getRuntime, openCommand
	t.Cleanup(func() { getRuntime, openCommand = origRuntime, origOpen })

	var launched []string
	openCommand = func(name string, args ...string) error {
		launched = append([]string{name}, args...)
		return nil
	}

	getRuntime = func() string { return "linux" }
	if err := OpenBrowser("http://x/new_task?name=foo"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(launched) != 2 || launched[0] != "xdg-open" {
		t.Errorf("unexpected command %v", launched)
	}

	getRuntime = func() string { return "plan9" }
	if err := OpenBrowser("http://x"); err == nil {
		t.Error("expected error on unsupported platform")
	}
}
