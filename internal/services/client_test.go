package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/wsctl/internal/models"
	"github.com/desertthunder/wsctl/internal/shared"
	tu "github.com/desertthunder/wsctl/internal/testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *WebscraperClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewWebscraperClient(ClientOpts{BaseURL: server.URL})
}

func TestWebscraperClient(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Defaults", func(t *testing.T) {
			c := NewWebscraperClient(ClientOpts{})
			if c.baseURL != defaultBaseURL {
				t.Errorf("expected default baseURL, got %s", c.baseURL)
			}
			if c.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})

		t.Run("Trims Trailing Slash", func(t *testing.T) {
			c := NewWebscraperClient(ClientOpts{BaseURL: "http://example.com/"})
			if c.URL("/") != "http://example.com/" {
				t.Errorf("unexpected URL %s", c.URL("/"))
			}
		})
	})

	t.Run("NewTaskURL", func(t *testing.T) {
		c := NewWebscraperClient(ClientOpts{BaseURL: "http://example.com"})

		got := c.NewTaskURL("foo")
		if got != "http://example.com/webscraper/ajax/new_task?name=foo" {
			t.Errorf("unexpected URL %s", got)
		}

		escaped := c.NewTaskURL("a b&c")
		u, err := url.Parse(escaped)
		if err != nil {
			t.Fatalf("URL should parse: %v", err)
		}
		if u.Query().Get("name") != "a b&c" {
			t.Errorf("name should survive escaping, got %q", u.Query().Get("name"))
		}
	})

	t.Run("SaveTask", func(t *testing.T) {
		t.Run("Posts Form Body", func(t *testing.T) {
			var gotBody, gotType, gotXHR string
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != SaveTaskPath {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				body, _ := io.ReadAll(r.Body)
				gotBody = string(body)
				gotType = r.Header.Get("Content-Type")
				gotXHR = r.Header.Get("X-Requested-With")
				w.WriteHeader(http.StatusOK)
			})

			form := models.NewTaskForm("injuries")
			if err := c.SaveTask(context.Background(), form); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if gotBody != form.Encode() {
				t.Errorf("body = %q, want %q", gotBody, form.Encode())
			}
			if !strings.HasPrefix(gotType, "application/x-www-form-urlencoded") {
				t.Errorf("unexpected content type %q", gotType)
			}
			if gotXHR != "XMLHttpRequest" {
				t.Errorf("expected XHR header, got %q", gotXHR)
			}
		})

		t.Run("Rejects Unnamed Form", func(t *testing.T) {
			c := NewWebscraperClient(ClientOpts{HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("should not be called"))}})
			err := c.SaveTask(context.Background(), models.NewTaskForm(""))
			if !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", err)
			}
		})

		t.Run("Server Error", func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "ticket 42", http.StatusInternalServerError)
			})

			err := c.SaveTask(context.Background(), models.NewTaskForm("t1"))
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), "status 500") || !strings.Contains(err.Error(), "ticket 42") {
				t.Errorf("error should carry status and body, got %v", err)
			}
		})
	})

	t.Run("Name Operations", func(t *testing.T) {
		tc := []struct {
			name string
			path string
			call func(*WebscraperClient) error
		}{
			{name: "Schedule", path: SchedulePath, call: func(c *WebscraperClient) error { return c.Schedule(context.Background(), "t1") }},
			{name: "DeleteResults", path: DeleteResultsPath, call: func(c *WebscraperClient) error { return c.DeleteResults(context.Background(), "t1") }},
			{name: "DeleteTask", path: DeleteTaskPath, call: func(c *WebscraperClient) error { return c.DeleteTask(context.Background(), "t1") }},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				called := false
				c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
					called = true
					if r.Method != http.MethodPost {
						t.Errorf("expected POST, got %s", r.Method)
					}
					if r.URL.Path != tt.path {
						t.Errorf("expected path %s, got %s", tt.path, r.URL.Path)
					}
					if err := r.ParseForm(); err != nil {
						t.Fatalf("form should parse: %v", err)
					}
					if r.PostForm.Get("name") != "t1" {
						t.Errorf("expected name=t1 in body, got %v", r.PostForm)
					}
				})

				if err := tt.call(c); err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if !called {
					t.Error("server was not called")
				}
			})
		}

		t.Run("Empty Name", func(t *testing.T) {
			c := NewWebscraperClient(ClientOpts{})
			if err := c.Schedule(context.Background(), " "); !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", err)
			}
		})
	})

	t.Run("TestTask", func(t *testing.T) {
		t.Run("Returns Results", func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"results": "spieler_id=10 injury=knee"})
			})

			got, err := c.TestTask(context.Background(), "t1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != "spieler_id=10 injury=knee" {
				t.Errorf("unexpected results %q", got)
			}
		})

		t.Run("Malformed Body", func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>oops</html>"))
			})

			_, err := c.TestTask(context.Background(), "t1")
			if !errors.Is(err, shared.ErrDecode) {
				t.Errorf("expected ErrDecode, got %v", err)
			}
		})
	})

	t.Run("TaskStatus", func(t *testing.T) {
		tc := []struct {
			name     string
			body     string
			code     int
			wantKind models.StatusKind
			wantMsg  string
			wantErr  error
		}{
			{name: "running", body: `{"status": "12 urls left"}`, code: 200, wantKind: models.StatusRunning, wantMsg: "12 urls left"},
			{name: "finished", body: `{"status": ""}`, code: 200, wantKind: models.StatusIdle},
			{name: "missing field", body: `{}`, code: 200, wantKind: models.StatusUnknown, wantErr: shared.ErrDecode},
			{name: "server error", body: `{"status": ""}`, code: 502, wantKind: models.StatusUnknown, wantErr: shared.ErrAPIRequest},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
					if r.Method != http.MethodGet || r.URL.Query().Get("name") != "t1" {
						t.Errorf("unexpected request %s %s", r.Method, r.URL.String())
					}
					w.WriteHeader(tt.code)
					w.Write([]byte(tt.body))
				})

				status, err := c.TaskStatus(context.Background(), "t1")
				if tt.wantErr != nil {
					if !errors.Is(err, tt.wantErr) {
						t.Errorf("expected %v, got %v", tt.wantErr, err)
					}
				} else if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}

				if status.Kind != tt.wantKind {
					t.Errorf("kind = %v, want %v", status.Kind, tt.wantKind)
				}
				if tt.wantMsg != "" && status.Message != tt.wantMsg {
					t.Errorf("message = %q, want %q", status.Message, tt.wantMsg)
				}
			})
		}

		t.Run("Transport Failure Is Unknown", func(t *testing.T) {
			c := NewWebscraperClient(ClientOpts{
				HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))},
			})

			status, err := c.TaskStatus(context.Background(), "t1")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
			if status.Done() {
				t.Error("a failed status request must not read as finished")
			}
		})

		t.Run("Body Read Failure", func(t *testing.T) {
			resp := &http.Response{StatusCode: 200, Body: &tu.FCloser{}, Header: http.Header{}}
			c := NewWebscraperClient(ClientOpts{
				HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)},
			})

			status, err := c.TaskStatus(context.Background(), "t1")
			if err == nil || status.Kind != models.StatusUnknown {
				t.Errorf("expected unknown status with error, got %v / %v", status, err)
			}
		})
	})

	t.Run("SelectorNames", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != SelectorNamesPath || r.URL.Query().Get("name") != "players" {
				t.Errorf("unexpected request %s", r.URL.String())
			}
			w.Write([]byte(`["spieler_id", "injury", "from"]`))
		})

		names, err := c.SelectorNames(context.Background(), "players")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if strings.Join(names, ",") != "spieler_id,injury,from" {
			t.Errorf("unexpected names %v", names)
		}
	})

	t.Run("Do", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("plain text response"))
		})

		resp, err := c.Do(context.Background(), http.MethodGet, "/anything", url.Values{"a": {"1"}})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.IsJSON || string(resp.Body) != "plain text response" || !resp.OK() {
			t.Errorf("unexpected response %+v", resp)
		}

		if _, err := c.Do(context.Background(), http.MethodGet, "/bad\x00path", nil); err == nil {
			t.Error("expected error for invalid URL")
		}
	})

	t.Run("Session And Token", func(t *testing.T) {
		var gotAuth, gotCookie string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotCookie = r.Header.Get("Cookie")
		}))
		defer server.Close()

		c := NewWebscraperClient(ClientOpts{
			BaseURL:    server.URL,
			HTTPClient: NewHTTPClient("tok", 5*time.Second),
			Session:    &shared.Session{Cookie: "session_id_webscraper=abc"},
		})

		if err := c.DeleteResults(context.Background(), "t1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if gotAuth != "Bearer tok" {
			t.Errorf("expected bearer token, got %q", gotAuth)
		}
		if gotCookie != "session_id_webscraper=abc" {
			t.Errorf("expected session cookie, got %q", gotCookie)
		}
	})

	t.Run("Limiter Honors Context", func(t *testing.T) {
		limiter := NewLimiter(0.001, 1)
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
		c.limiter = limiter

		if err := c.Schedule(context.Background(), "t1"); err != nil {
			t.Fatalf("first request should use the burst: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		if err := c.Schedule(ctx, "t1"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected limiter wait to fail with ErrAPIRequest, got %v", err)
		}
	})
}

func TestNewLimiter(t *testing.T) {
	if NewLimiter(0, 1) != nil {
		t.Error("non-positive rate should disable limiting")
	}
	if l := NewLimiter(5, 0); l == nil || l.Burst() != 1 {
		t.Error("burst should be clamped to 1")
	}
}

func TestNewHTTPClient(t *testing.T) {
	plain := NewHTTPClient("", time.Second)
	if plain.Transport != nil || plain.Timeout != time.Second {
		t.Errorf("unexpected plain client %+v", plain)
	}
}
