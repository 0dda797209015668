package evt

import "strconv"

type keyKind uint8

const (
	keyByID keyKind = iota + 1
	keyByEvent
)

// Key selects what Unsubscribe removes: a single subscription or every
// subscription of one event. Build it with ByID or ByEvent. The zero Key
// selects nothing.
type Key struct {
	kind  keyKind
	id    ID
	event string
}

// ByID selects the subscription with the given id.
func ByID(id ID) Key { return Key{kind: keyByID, id: id} }

// ByEvent selects every subscription of the named event.
func ByEvent(name string) Key { return Key{kind: keyByEvent, event: name} }

// ID returns the subscription id and true for a ByID key.
func (k Key) ID() (ID, bool) { return k.id, k.kind == keyByID }

// Event returns the event name and true for a ByEvent key.
func (k Key) Event() (string, bool) { return k.event, k.kind == keyByEvent }

func (k Key) String() string {
	switch k.kind {
	case keyByID:
		return "id:" + strconv.FormatInt(int64(k.id), 10)
	case keyByEvent:
		return "event:" + k.event
	default:
		return "none"
	}
}
