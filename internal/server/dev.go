package server

import (
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
)

// DevRouterOpts configures [NewDevRouter].
type DevRouterOpts struct {
	Store  *Webscraper
	Logger *log.Logger
	Token  string // required bearer token, empty to accept anonymous requests
}

// NewDevRouter wires the in-memory endpoints behind recovery, logging and bearer-token middleware.
//
// It also serves a plain-text task index on "/" and a task page stub on [TaskPagePath].
func NewDevRouter(opts DevRouterOpts) *BasicRouter {
	if opts.Store == nil {
		opts.Store = NewWebscraper()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	router := NewBasicRouter()
	router.Use(RecoverMiddleware(opts.Logger), LoggingMiddleware(opts.Logger), BearerTokenMiddleware(opts.Token))
	router.Handler(opts.Store)

	router.HandleFunc(http.MethodGet, TaskPagePath, func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		form, ok := opts.Store.Task(name)
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "task %s: %d url selectors, %d content selectors\n",
			form.Name, form.UrlSelectors.Len(), form.ContentSelectors.Len())
	})

	router.HandleFunc(http.MethodGet, "/{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for _, name := range opts.Store.Names() {
			fmt.Fprintln(w, name)
		}
	})

	return router
}
