package types

// SubscribeRequest is the body of POST /events/{name}/subscriptions.
type SubscribeRequest struct {
	// Sink kind: log, count or journal.
	// example: log
	Kind string `json:"kind" example:"log"`
	// Optional receiver label; defaults to the kind.
	// example: audit
	Label string `json:"label,omitempty" example:"audit"`
}

// SubscribeResponse carries the id of a new subscription.
type SubscribeResponse struct {
	// example: 4
	ID int64 `json:"id" example:"4"`
	// example: user.login
	Event string `json:"event" example:"user.login"`
}

// PublishRequest is the body of POST /events/{name}/publish.
type PublishRequest struct {
	// Positional arguments forwarded to every subscriber.
	// example: ["ada",42]
	Args []any `json:"args"`
}

// PublishResponse reports how many subscribers were invoked.
type PublishResponse struct {
	// example: user.login
	Event string `json:"event" example:"user.login"`
	// example: 2
	Delivered int `json:"delivered" example:"2"`
	// Subscribers whose handler panicked (only with recover_panics).
	// example: 0
	Failed int `json:"failed,omitempty" example:"0"`
}

// EventsResponse wraps the list returned by GET /events.
type EventsResponse struct {
	Events []EventInfo `json:"events"`
}

// CountsResponse is returned by GET /counts.
type CountsResponse struct {
	// Deliveries per event seen by count sinks.
	Counts map[string]int64 `json:"counts"`
}

// DeliveriesResponse is returned by GET /deliveries.
type DeliveriesResponse struct {
	Deliveries []Delivery `json:"deliveries"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Number of known event names.
	// example: 3
	Events int `json:"events" example:"3"`
	// Number of live subscriptions across all events.
	// example: 5
	Subscriptions int `json:"subscriptions" example:"5"`
	// Most recently issued subscription id, -1 if none.
	// example: 7
	LastID int64 `json:"last_id" example:"7"`
	// Total publish calls since start.
	// example: 120
	PublishesTotal uint64 `json:"publishes_total" example:"120"`
	// Total subscriber invocations since start.
	// example: 240
	DeliveriesTotal uint64 `json:"deliveries_total" example:"240"`
	// Total recovered handler panics since start.
	// example: 0
	PanicsTotal uint64 `json:"panics_total" example:"0"`
	// Panic policy in effect (propagate or recover).
	// example: recover
	PanicPolicy string `json:"panic_policy" example:"recover"`
	// Last time the sink configuration was (re)applied, unix seconds.
	// example: 1700000000
	ReloadedUnix int64 `json:"reloaded_unix,omitempty" example:"1700000000"`
	// Last reload error, if any.
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
