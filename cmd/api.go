package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/wsctl/internal/services"
	"github.com/desertthunder/wsctl/internal/shared"
	"github.com/urfave/cli/v3"
)

// requester sends raw requests to the webscraper application.
type requester interface {
	Do(ctx context.Context, method, path string, params url.Values) (*services.APIResponse, error)
}

// APIGet makes a direct GET request and prints the response
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	return r.apiRequest(ctx, cmd, http.MethodGet)
}

// APIPost makes a direct POST request with a form body and prints the response
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	return r.apiRequest(ctx, cmd, http.MethodPost)
}

func (r *Runner) apiRequest(ctx context.Context, cmd *cli.Command, method string) error {
	path, err := requireArg(cmd, "path")
	if err != nil {
		return err
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	params, err := parseParams(cmd.StringSlice("param"))
	if err != nil {
		return err
	}

	client, ok := r.api.(requester)
	if !ok {
		return fmt.Errorf("%w: raw requests need the HTTP client", shared.ErrServiceUnavailable)
	}

	r.logger.Info(method+" request", "path", path)

	resp, err := client.Do(ctx, method, path, params)
	if err != nil {
		return err
	}

	if !resp.OK() {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, cmd.Bool("pretty"))
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

// visit requests location the way a browser navigation would, so server-side effects of the page happen.
func (r *Runner) visit(ctx context.Context, location string) error {
	client, ok := r.api.(requester)
	if !ok {
		return nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return fmt.Errorf("%w: location %q: %v", shared.ErrInvalidInput, location, err)
	}

	resp, err := client.Do(ctx, http.MethodGet, u.Path, u.Query())
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("%w: GET %s: status %d", shared.ErrAPIRequest, u.Path, resp.StatusCode)
	}
	r.logger.Debug("visited", "location", location, "status", resp.StatusCode)
	return nil
}

// parseParams turns key=value pairs into request values.
func parseParams(pairs []string) (url.Values, error) {
	params := url.Values{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: parameter %q is not key=value", shared.ErrInvalidFlag, p)
		}
		params.Add(k, v)
	}
	return params, nil
}
