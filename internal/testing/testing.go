// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/wsctl/internal/models"
)

// Call records one invocation on [MockTaskAPI].
type Call struct {
	Method string
	Name   string
}

// MockTaskAPI is a test double for [services.TaskAPI].
//
// Errors are injected per method name; statuses are served in order and the last one repeats.
type MockTaskAPI struct {
	mu        sync.Mutex
	calls     []Call
	Errors    map[string]error
	Statuses  []models.Status
	Results   string
	Selectors []string
	Saved     []string
}

func NewMockTaskAPI() *MockTaskAPI {
	return &MockTaskAPI{Errors: map[string]error{}}
}

func (m *MockTaskAPI) record(method, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: method, Name: name})
	return m.Errors[method]
}

// SetError injects err for every later call of method.
func (m *MockTaskAPI) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[method] = err
}

// Calls returns a copy of the calls made so far.
func (m *MockTaskAPI) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Methods returns the method names of the calls made so far, in order.
func (m *MockTaskAPI) Methods() []string {
	calls := m.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Method
	}
	return out
}

// Count returns how many times method was called.
func (m *MockTaskAPI) Count(method string) int {
	n := 0
	for _, c := range m.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (m *MockTaskAPI) SaveTask(ctx context.Context, form *models.TaskForm) error {
	if err := m.record("SaveTask", form.Name); err != nil {
		return err
	}
	m.mu.Lock()
	m.Saved = append(m.Saved, form.Encode())
	m.mu.Unlock()
	return nil
}

func (m *MockTaskAPI) Schedule(ctx context.Context, name string) error {
	return m.record("Schedule", name)
}

func (m *MockTaskAPI) TestTask(ctx context.Context, name string) (string, error) {
	if err := m.record("TestTask", name); err != nil {
		return "", err
	}
	return m.Results, nil
}

func (m *MockTaskAPI) DeleteResults(ctx context.Context, name string) error {
	return m.record("DeleteResults", name)
}

func (m *MockTaskAPI) DeleteTask(ctx context.Context, name string) error {
	return m.record("DeleteTask", name)
}

func (m *MockTaskAPI) TaskStatus(ctx context.Context, name string) (models.Status, error) {
	if err := m.record("TaskStatus", name); err != nil {
		return models.UnknownStatus(err), err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Statuses) == 0 {
		return models.StatusFromServer(""), nil
	}
	s := m.Statuses[0]
	if len(m.Statuses) > 1 {
		m.Statuses = m.Statuses[1:]
	}
	return s, nil
}

func (m *MockTaskAPI) SelectorNames(ctx context.Context, name string) ([]string, error) {
	if err := m.record("SelectorNames", name); err != nil {
		return nil, err
	}
	return append([]string(nil), m.Selectors...), nil
}

func (m *MockTaskAPI) NewTaskURL(name string) string {
	return "/webscraper/ajax/new_task?name=" + name
}

func (m *MockTaskAPI) URL(path string) string { return path }

// RecordingNotifier collects flashes and hides in order.
type RecordingNotifier struct {
	mu      sync.Mutex
	Flashes []models.Flash
	Hides   int
}

func (n *RecordingNotifier) Flash(kind models.FlashKind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Flashes = append(n.Flashes, models.Flash{Kind: kind, Message: message})
}

func (n *RecordingNotifier) Hide() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Hides++
}

// Last returns the most recent flash, or the zero value.
func (n *RecordingNotifier) Last() models.Flash {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Flashes) == 0 {
		return models.Flash{}
	}
	return n.Flashes[len(n.Flashes)-1]
}

// Snapshot returns a copy of the flashes and the hide count.
func (n *RecordingNotifier) Snapshot() ([]models.Flash, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.Flash(nil), n.Flashes...), n.Hides
}

// RecordingNavigator collects reloads and navigations.
type RecordingNavigator struct {
	mu        sync.Mutex
	Reloads   int
	Locations []string
	Err       error
}

func (n *RecordingNavigator) Reload(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Reloads++
	return n.Err
}

func (n *RecordingNavigator) Navigate(ctx context.Context, location string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Locations = append(n.Locations, location)
	return n.Err
}

// StaticPrompter answers every prompt with Answer and OK.
type StaticPrompter struct {
	Answer string
	OK     bool
	Asked  []string
}

func (p *StaticPrompter) Prompt(ctx context.Context, message string) (string, bool) {
	p.Asked = append(p.Asked, message)
	return p.Answer, p.OK
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// MustWriteFile writes content to path or fails the test.
func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
