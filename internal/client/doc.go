// Package client implements the HTTP client for the traffic-video analysis
// backend.
//
// The backend is session-scoped: it issues a session cookie on the index page
// and requires it on every subsequent request. The client carries the cookie
// in a jar so callers never handle it directly.
//
// Two failure kinds exist and both surface as ordinary errors:
//   - transport failures (non-2xx responses, connection errors), reported
//     as *APIError where an HTTP status is available
//   - application failures (an "error" field inside a 200 JSON envelope)
package client
