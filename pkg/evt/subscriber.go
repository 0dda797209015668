package evt

import "sort"

// ID identifies a single subscription.
type ID int64

// Handler is a subscriber callback. recv is the receiver bound at subscribe
// time, or nil for a bare subscription.
type Handler func(recv any, args ...any)

// Subscriber is a registered callback plus its optional receiver.
type Subscriber struct {
	ID       ID
	Event    string
	Handler  Handler
	Receiver any
	// Bound reports whether a receiver was supplied at subscribe time.
	Bound bool
}

func (s Subscriber) invoke(args []any) {
	if s.Bound {
		s.Handler(s.Receiver, args...)
		return
	}
	s.Handler(nil, args...)
}

// subscriptionSet keeps subscribers in subscription order. IDs are handed out
// monotonically so the slice is also sorted by ID.
type subscriptionSet struct {
	subs []Subscriber
}

func newSubscriptionSet() *subscriptionSet { return &subscriptionSet{} }

func (s *subscriptionSet) add(sub Subscriber) { s.subs = append(s.subs, sub) }

func (s *subscriptionSet) index(id ID) int {
	i := sort.Search(len(s.subs), func(i int) bool { return s.subs[i].ID >= id })
	if i < len(s.subs) && s.subs[i].ID == id {
		return i
	}
	return -1
}

func (s *subscriptionSet) remove(id ID) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	// copy instead of reslicing in place: snapshots handed to Publish share the
	// old backing array
	next := make([]Subscriber, 0, len(s.subs)-1)
	next = append(next, s.subs[:i]...)
	next = append(next, s.subs[i+1:]...)
	s.subs = next
	return true
}

// snapshot returns the current subscribers. Callers must not modify it.
func (s *subscriptionSet) snapshot() []Subscriber { return s.subs }

func (s *subscriptionSet) len() int { return len(s.subs) }
