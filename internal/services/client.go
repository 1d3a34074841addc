package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/wsctl/internal/models"
	"github.com/desertthunder/wsctl/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const defaultBaseURL string = "http://127.0.0.1:8000"

var _ TaskAPI = (*WebscraperClient)(nil)

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ClientOpts contains configuration options for creating a [WebscraperClient].
type ClientOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	Limiter    *rate.Limiter   // optional request pacing
	Session    *shared.Session // optional browser session replayed on each request
}

// WebscraperClient implements [TaskAPI] over HTTP.
type WebscraperClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	session    *shared.Session
}

// NewWebscraperClient creates a client for the webscraper application at opts.BaseURL.
func NewWebscraperClient(opts ClientOpts) *WebscraperClient {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &WebscraperClient{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		limiter:    opts.Limiter,
		session:    opts.Session,
	}
}

// NewHTTPClient returns an [http.Client] bounded by timeout that sends token as a bearer token when set.
func NewHTTPClient(token string, timeout time.Duration) *http.Client {
	client := &http.Client{Timeout: timeout}
	if token == "" {
		return client
	}

	client.Transport = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		Base:   http.DefaultTransport,
	}
	return client
}

// NewLimiter returns a limiter allowing rps requests per second, or nil (unlimited) when rps is not positive.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// URL resolves an application path against the base URL.
func (c *WebscraperClient) URL(path string) string {
	return c.baseURL + path
}

// NewTaskURL returns the location that creates a task named name.
func (c *WebscraperClient) NewTaskURL(name string) string {
	return c.URL(NewTaskPath) + "?" + url.Values{"name": {name}}.Encode()
}

// Do performs a request and returns the raw response. GET params go in the query string, POST params in a form body.
func (c *WebscraperClient) Do(ctx context.Context, method, path string, params url.Values) (*APIResponse, error) {
	var body string
	if method == http.MethodPost {
		body = params.Encode()
	} else if len(params) > 0 {
		path += "?" + params.Encode()
	}
	return c.send(ctx, method, path, body)
}

func (c *WebscraperClient) send(ctx context.Context, method, path, body string) (*APIResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", shared.ErrAPIRequest, err)
		}
	}

	var reader io.Reader
	if method == http.MethodPost {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.session.Apply(req)
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	}
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", shared.ErrAPIRequest, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// doRequest sends the request, rejects non-2xx responses and decodes the body into result when non-nil.
func (c *WebscraperClient) doRequest(ctx context.Context, method, path string, params url.Values, body string, result any) error {
	var (
		resp *APIResponse
		err  error
	)
	if body != "" {
		resp, err = c.send(ctx, method, path, body)
	} else {
		resp, err = c.Do(ctx, method, path, params)
	}
	if err != nil {
		return err
	}

	if !resp.OK() {
		return fmt.Errorf("%w: %s %s: status %d: %s", shared.ErrAPIRequest, method, path, resp.StatusCode, snippet(resp.Body))
	}

	if result != nil {
		if err := json.Unmarshal(resp.Body, result); err != nil {
			return fmt.Errorf("%w: %s: %v", shared.ErrDecode, path, err)
		}
	}

	return nil
}

func snippet(body []byte) string {
	return shared.Truncate(strings.TrimSpace(string(body)), 200)
}

func nameParams(name string) (url.Values, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: task name", shared.ErrMissingArgument)
	}
	return url.Values{"name": {name}}, nil
}

// SaveTask posts the serialized form.
//
// Calls POST /webscraper/ajax/save_task.
func (c *WebscraperClient) SaveTask(ctx context.Context, form *models.TaskForm) error {
	if form == nil || strings.TrimSpace(form.Name) == "" {
		return fmt.Errorf("%w: task form name", shared.ErrMissingArgument)
	}
	return c.doRequest(ctx, http.MethodPost, SaveTaskPath, nil, form.Encode(), nil)
}

func (c *WebscraperClient) postName(ctx context.Context, path, name string, result any) error {
	params, err := nameParams(name)
	if err != nil {
		return err
	}
	return c.doRequest(ctx, http.MethodPost, path, params, "", result)
}

// Schedule enqueues the task.
//
// Calls POST /webscraper/ajax/schedule.
func (c *WebscraperClient) Schedule(ctx context.Context, name string) error {
	return c.postName(ctx, SchedulePath, name, nil)
}

// TestTask runs the task once and returns the result text.
//
// Calls POST /webscraper/ajax/test_task, expecting {"results": string}.
func (c *WebscraperClient) TestTask(ctx context.Context, name string) (string, error) {
	var out struct {
		Results string `json:"results"`
	}
	if err := c.postName(ctx, TestTaskPath, name, &out); err != nil {
		return "", err
	}
	return out.Results, nil
}

// DeleteResults removes the stored results of the task.
//
// Calls POST /webscraper/ajax/delete_results.
func (c *WebscraperClient) DeleteResults(ctx context.Context, name string) error {
	return c.postName(ctx, DeleteResultsPath, name, nil)
}

// DeleteTask removes the task definition.
//
// Calls POST /webscraper/ajax/delete_task.
func (c *WebscraperClient) DeleteTask(ctx context.Context, name string) error {
	return c.postName(ctx, DeleteTaskPath, name, nil)
}

// TaskStatus fetches the execution status of the task.
//
// Calls GET /webscraper/ajax/get_task_status, expecting {"status": string}.
// On any failure the returned status is [models.StatusUnknown].
func (c *WebscraperClient) TaskStatus(ctx context.Context, name string) (models.Status, error) {
	params, err := nameParams(name)
	if err != nil {
		return models.UnknownStatus(err), err
	}

	var out struct {
		Status *string `json:"status"`
	}
	if err := c.doRequest(ctx, http.MethodGet, TaskStatusPath, params, "", &out); err != nil {
		return models.UnknownStatus(err), err
	}
	if out.Status == nil {
		err := fmt.Errorf("%w: %s: missing status field", shared.ErrDecode, TaskStatusPath)
		return models.UnknownStatus(err), err
	}

	return models.StatusFromServer(*out.Status), nil
}

// SelectorNames lists the property names of the results set name.
//
// Calls GET /webscraper/ajax/get_task_selector_names, expecting a JSON array of strings.
func (c *WebscraperClient) SelectorNames(ctx context.Context, name string) ([]string, error) {
	params, err := nameParams(name)
	if err != nil {
		return nil, err
	}

	var names []string
	if err := c.doRequest(ctx, http.MethodGet, SelectorNamesPath, params, "", &names); err != nil {
		return nil, err
	}
	return names, nil
}
