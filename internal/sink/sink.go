// Package sink provides the built-in subscribers evtd registers from its
// configuration: log, count and journal.
package sink

import (
	"strings"

	"github.com/rs/zerolog"

	"evt/internal/config"
	"evt/pkg/evt"
)

// Sink kinds.
const (
	KindLog     = "log"
	KindCount   = "count"
	KindJournal = "journal"
)

// Kinds lists the supported sink kinds.
var Kinds = []string{KindLog, KindCount, KindJournal}

// Receiver is bound to every sink subscription and identifies it in output.
type Receiver struct {
	Event string
	Kind  string
	Label string
}

// unknownKindError signals an unsupported sink kind.
type unknownKindError struct{ kind string }

func (e unknownKindError) Error() string {
	return "unknown sink kind: " + e.kind + " (want " + strings.Join(Kinds, "|") + ")"
}

// IsUnknownKind reports whether err indicates an unsupported sink kind.
func IsUnknownKind(err error) bool {
	_, ok := err.(unknownKindError)
	return ok
}

// journalUnavailableError signals a journal sink without a configured journal.
type journalUnavailableError struct{}

func (journalUnavailableError) Error() string { return "journal sink requires journal_path" }

// IsJournalUnavailable reports whether err indicates a missing journal.
func IsJournalUnavailable(err error) bool {
	_, ok := err.(journalUnavailableError)
	return ok
}

// Set holds the shared sink state. Journal may be nil, in which case journal
// sinks are rejected.
type Set struct {
	Log     zerolog.Logger
	Counts  *Counter
	Journal *Journal
}

// NewSet returns a Set with a fresh Counter and the given logger and journal.
func NewSet(log zerolog.Logger, j *Journal) *Set {
	return &Set{Log: log, Counts: NewCounter(), Journal: j}
}

// Handler returns the subscriber callback for kind.
func (s *Set) Handler(kind string) (evt.Handler, error) {
	switch kind {
	case KindLog:
		return logHandler(s.Log), nil
	case KindCount:
		return s.Counts.handle, nil
	case KindJournal:
		if s.Journal == nil {
			return nil, journalUnavailableError{}
		}
		return s.Journal.handler(s.Log), nil
	default:
		return nil, unknownKindError{kind: kind}
	}
}

// Subscribe registers a sink of the given kind for event. The label defaults
// to the kind.
func (s *Set) Subscribe(reg *evt.Registry, event, kind, label string) (evt.ID, error) {
	h, err := s.Handler(kind)
	if err != nil {
		return 0, err
	}
	if label == "" {
		label = kind
	}
	return reg.SubscribeWith(event, h, Receiver{Event: event, Kind: kind, Label: label}), nil
}

// Apply subscribes every declared sink in order. On error the sinks already
// subscribed by this call are unsubscribed again.
func (s *Set) Apply(reg *evt.Registry, specs []config.Sink) ([]evt.ID, error) {
	ids := make([]evt.ID, 0, len(specs))
	for _, spec := range specs {
		id, err := s.Subscribe(reg, spec.Event, spec.Kind, spec.Label)
		if err != nil {
			for _, done := range ids {
				reg.UnsubscribeID(done)
			}
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// receiverOf extracts the bound Receiver, tolerating bare subscriptions.
func receiverOf(recv any) Receiver {
	if r, ok := recv.(Receiver); ok {
		return r
	}
	return Receiver{}
}
