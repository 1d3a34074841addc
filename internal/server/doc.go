// Package server provides HTTP routing, middleware and an in-memory implementation of the webscraper
// task endpoints for offline development and tests.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Fake Endpoints
//
// [Webscraper] serves every /webscraper/ajax endpoint the client calls. Tasks live in memory; scheduling
// queues progress messages that the status endpoint hands out one per request, ending with the empty
// status.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
