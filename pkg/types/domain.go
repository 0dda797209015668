package types

// EventInfo describes one known event name.
type EventInfo struct {
	// Event name.
	// example: user.login
	Name string `json:"name" example:"user.login"`
	// Number of live subscriptions for this event. Zero for an event that
	// was unsubscribed by name.
	// example: 2
	Subscribers int `json:"subscribers" example:"2"`
	// Live subscriptions in subscription order.
	Subscriptions []SubscriptionInfo `json:"subscriptions,omitempty"`
}

// SubscriptionInfo describes a single live subscription.
type SubscriptionInfo struct {
	// Subscription id.
	// example: 3
	ID int64 `json:"id" example:"3"`
	// Sink kind that handles deliveries (log, count, journal).
	// example: log
	Kind string `json:"kind,omitempty" example:"log"`
	// Receiver label bound to the subscription.
	// example: audit
	Label string `json:"label,omitempty" example:"audit"`
}

// Delivery is one journaled subscriber invocation.
type Delivery struct {
	// Event name.
	// example: user.login
	Event string `json:"event" example:"user.login"`
	// Receiver label of the sink that recorded it.
	// example: audit
	Label string `json:"label" example:"audit"`
	// Positional arguments as published.
	Args []any `json:"args"`
	// Delivery time in unix nanoseconds.
	// example: 1700000000000000000
	AtUnixNano int64 `json:"at_unix_nano" example:"1700000000000000000"`
}
