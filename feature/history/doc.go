// Package history keeps a journal of sync runs.
//
// Each content or DNS sync records one Run with an event per item it
// handled. The journal lives in the optional MySQL database; without one the
// syncs use NopRecorder and the HTTP routes answer 503.
//
// # HTTP Endpoints
//
//   - GET /runs : Latest runs (?kind=content|dns, ?limit=N).
//   - GET /runs/:id : One run with its events.
package history
