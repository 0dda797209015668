package evt

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Registry maps event names to ordered subscriber sets. The zero value is not
// usable; construct with New.
type Registry struct {
	mu     sync.RWMutex
	events map[string]*subscriptionSet
	lastID ID

	log       zerolog.Logger
	observers []Observer
	observer  Observer
	policy    PanicPolicy
}

// Stats is a point-in-time summary of a Registry.
type Stats struct {
	Events        int
	Subscriptions int
	// LastID is the most recently issued id, -1 if none was issued yet.
	LastID ID
}

// New returns an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		events: make(map[string]*subscriptionSet),
		lastID: -1,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	switch len(r.observers) {
	case 0:
		r.observer = NopObserver{}
	case 1:
		r.observer = r.observers[0]
	default:
		r.observer = multiObserver(r.observers)
	}
	return r
}

// Subscribe registers h for event and returns the new subscription id. h is
// invoked with a nil receiver.
func (r *Registry) Subscribe(event string, h Handler) ID {
	return r.subscribe(Subscriber{Event: event, Handler: h})
}

// SubscribeWith registers h for event with recv bound as its receiver.
func (r *Registry) SubscribeWith(event string, h Handler, recv any) ID {
	return r.subscribe(Subscriber{Event: event, Handler: h, Receiver: recv, Bound: true})
}

func (r *Registry) subscribe(sub Subscriber) ID {
	r.mu.Lock()
	set, ok := r.events[sub.Event]
	if !ok {
		set = newSubscriptionSet()
		r.events[sub.Event] = set
	}
	r.lastID++
	sub.ID = r.lastID
	set.add(sub)
	r.mu.Unlock()

	r.log.Debug().Str("event", sub.Event).Int64("id", int64(sub.ID)).Bool("bound", sub.Bound).Msg("subscribe")
	r.observer.Subscribed(sub.Event, sub.ID)
	return sub.ID
}

// Unsubscribe removes what key selects. Unknown ids and event names are
// ignored.
func (r *Registry) Unsubscribe(key Key) {
	if id, ok := key.ID(); ok {
		r.UnsubscribeID(id)
		return
	}
	if name, ok := key.Event(); ok {
		r.UnsubscribeEvent(name)
	}
}

// UnsubscribeID removes the subscription with the given id from whichever
// event holds it. It reports whether a subscription was removed.
func (r *Registry) UnsubscribeID(id ID) bool {
	r.mu.Lock()
	var (
		event   string
		removed bool
	)
	for name, set := range r.events {
		if set.remove(id) {
			event, removed = name, true
			break
		}
	}
	r.mu.Unlock()

	if !removed {
		return false
	}
	r.log.Debug().Str("event", event).Int64("id", int64(id)).Msg("unsubscribe")
	r.observer.Unsubscribed(event, id, false)
	return true
}

// UnsubscribeEvent drops every subscription of the named event. The event
// name stays known with an empty subscriber set. It reports whether the name
// was known.
func (r *Registry) UnsubscribeEvent(name string) bool {
	r.mu.Lock()
	set, ok := r.events[name]
	if ok {
		r.events[name] = newSubscriptionSet()
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	dropped := set.snapshot()
	r.log.Debug().Str("event", name).Int("dropped", len(dropped)).Msg("unsubscribe event")
	for _, s := range dropped {
		r.observer.Unsubscribed(name, s.ID, true)
	}
	return true
}

// Publish invokes every subscriber of event with args, in subscription order.
// Subscribers added or removed by a handler during the call do not affect the
// current fan-out. Publishing an unknown event does nothing.
func (r *Registry) Publish(event string, args ...any) {
	r.mu.RLock()
	set, ok := r.events[event]
	var subs []Subscriber
	if ok {
		subs = set.snapshot()
	}
	r.mu.RUnlock()

	if !ok {
		return
	}
	r.observer.Published(event, len(subs))
	for _, s := range subs {
		if r.policy == RecoverAndContinue {
			r.invokeRecover(s, args)
		} else {
			s.invoke(args)
		}
		r.observer.Delivered(event, s.ID)
	}
}

func (r *Registry) invokeRecover(s Subscriber, args []any) {
	defer func() {
		if v := recover(); v != nil {
			pe := &PanicError{Event: s.Event, ID: s.ID, Value: v}
			r.log.Error().Err(pe).Str("event", s.Event).Int64("id", int64(s.ID)).Msg("subscriber panic recovered")
			r.observer.Panicked(pe)
		}
	}()
	s.invoke(args)
}

// Purge drops every event name and subscription. The id counter is kept, so
// ids issued after Purge continue from the previous high-water mark.
func (r *Registry) Purge() {
	r.mu.Lock()
	n := 0
	for _, set := range r.events {
		n += set.len()
	}
	r.events = make(map[string]*subscriptionSet)
	r.mu.Unlock()

	r.log.Debug().Int("dropped", n).Msg("purge")
	r.observer.Purged(n)
}

// Events returns the known event names in lexical order, including names
// whose subscriber set is empty.
func (r *Registry) Events() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.events))
	for name := range r.events {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Subscribers returns a copy of the subscribers of event in subscription order.
func (r *Registry) Subscribers(event string) []Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.events[event]
	if !ok {
		return nil
	}
	return append([]Subscriber(nil), set.snapshot()...)
}

// Len returns the number of subscribers of event.
func (r *Registry) Len(event string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if set, ok := r.events[event]; ok {
		return set.len()
	}
	return 0
}

// Has reports whether id is a live subscription.
func (r *Registry) Has(id ID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, set := range r.events {
		if set.index(id) >= 0 {
			return true
		}
	}
	return false
}

// LastID returns the most recently issued id, or -1.
func (r *Registry) LastID() ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastID
}

// Stats returns the number of known events, live subscriptions and the last id.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st := Stats{Events: len(r.events), LastID: r.lastID}
	for _, set := range r.events {
		st.Subscriptions += set.len()
	}
	return st
}
