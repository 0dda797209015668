// Package hub owns the daemon's event registry and its sinks. It is
// structured into small files by concern:
//
//   - hub.go: Hub type, constructor, subscribe/unsubscribe/purge.
//   - publish.go: Publish with per-call delivery accounting.
//   - stats.go: delivery counters fed by the registry observer.
//   - status.go: Status and ListEvents reporting.
//   - reload.go: Reload and the fsnotify based config Watch.
//   - errors.go: error types carrying HTTP status codes.
//
// External packages should use the exported methods only; the HTTP layer
// talks to Hub through its Service interface.
package hub
