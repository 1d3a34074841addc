// Package services implements the request interface to the webscraper application's task endpoints.
//
// # TaskAPI Interface
//
// [TaskAPI] is the set of remote calls behind the task page: save, schedule, test, delete results,
// delete task, status and selector names. [WebscraperClient] implements it over HTTP.
//
// # Transport
//
// POST bodies are form-encoded, matching what the page submits. Every request is:
//   - paced by an optional [rate.Limiter] shared across callers
//   - bounded by the [http.Client] timeout built by [NewHTTPClient]
//   - authenticated by a bearer token ([oauth2.Transport]) and/or a replayed browser [shared.Session]
//
// # Error Handling
//
// Calls return errors wrapping the shared sentinels:
//   - [shared.ErrMissingArgument] : empty task name, no request issued
//   - [shared.ErrAPIRequest] : transport failure or non-2xx status
//   - [shared.ErrDecode] : response body did not match the expected shape
//
// A failed status request yields [models.StatusUnknown], never an idle status.
package services
