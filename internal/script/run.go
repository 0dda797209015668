package script

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"evt/pkg/evt"
)

// Call is one recorder invocation.
type Call struct {
	Recorder string
	Receiver string
	Bound    bool
	Args     []any
}

// String renders the call as name(args), with a bound receiver in brackets.
func (c Call) String() string {
	var b strings.Builder
	b.WriteString(c.Recorder)
	if c.Bound {
		fmt.Fprintf(&b, "[%s]", c.Receiver)
	}
	b.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprint(&b, a)
	}
	b.WriteByte(')')
	return b.String()
}

// Entry records the effect of one step. ID is -1 for steps that neither
// issue nor target a subscription id.
type Entry struct {
	Step    int
	Op      string
	Event   string
	ID      evt.ID
	Removed bool
	Calls   []Call
	Panics  []string
}

// Trace is the result of Run.
type Trace struct {
	Name    string
	Entries []Entry
	Stats   evt.Stats
}

// Run executes s against a new Registry. A panic that escapes Publish under
// the default policy is recorded on its entry and the script continues.
func Run(s Script, log zerolog.Logger) (Trace, error) {
	if err := s.Validate(); err != nil {
		return Trace{}, err
	}
	x := &execution{ids: make(map[string]evt.ID), declared: make(map[string]bool), log: log}
	for _, st := range s.Steps {
		if st.Name != "" {
			x.declared[st.Name] = true
		}
	}
	policy := evt.Propagate
	if s.RecoverPanics {
		policy = evt.RecoverAndContinue
	}
	x.reg = evt.New(
		evt.WithLogger(log),
		evt.WithPanicPolicy(policy),
		evt.WithObserver(panicRecorder{x: x}),
	)

	tr := Trace{Name: s.Name, Entries: make([]Entry, 0, len(s.Steps))}
	for i, st := range s.Steps {
		tr.Entries = append(tr.Entries, Entry{Step: i, Op: st.Op, Event: st.Event, ID: -1})
		x.cur = &tr.Entries[i]
		x.exec(st)
		log.Debug().Int("step", i).Str("op", st.Op).Int("calls", len(x.cur.Calls)).Msg("step done")
	}
	x.cur = nil
	tr.Stats = x.reg.Stats()
	return tr, nil
}

type execution struct {
	reg *evt.Registry
	ids map[string]evt.ID
	cur *Entry
	log zerolog.Logger
	n   int
	// declared holds every name the script gives a recorder; generated
	// names skip them.
	declared map[string]bool
}

func (x *execution) exec(st Step) {
	switch st.Op {
	case OpSubscribe:
		x.cur.ID = x.reg.Subscribe(st.Event, x.recorder(st))
		x.remember(st, x.cur.ID)
	case OpSubscribeWith:
		x.cur.ID = x.reg.SubscribeWith(st.Event, x.recorder(st), st.Receiver)
		x.remember(st, x.cur.ID)
	case OpUnsubscribeID:
		id := x.target(st)
		x.cur.ID = id
		x.cur.Removed = x.reg.UnsubscribeID(id)
	case OpUnsubscribeEvent:
		x.cur.Removed = x.reg.UnsubscribeEvent(st.Event)
	case OpUnsubscribe:
		var key evt.Key
		if st.Event != "" {
			key = evt.ByEvent(st.Event)
		} else {
			x.cur.ID = x.target(st)
			key = evt.ByID(x.cur.ID)
		}
		before := x.reg.Stats().Subscriptions
		x.reg.Unsubscribe(key)
		x.cur.Removed = x.reg.Stats().Subscriptions < before
	case OpPublish:
		x.publish(st)
	case OpPurge:
		x.reg.Purge()
	}
}

func (x *execution) publish(st Step) {
	defer func() {
		if v := recover(); v != nil {
			x.cur.Panics = append(x.cur.Panics, fmt.Sprint(v))
		}
	}()
	x.reg.Publish(st.Event, st.Args...)
}

func (x *execution) target(st Step) evt.ID {
	if st.Ref != "" {
		return x.ids[st.Ref]
	}
	return evt.ID(*st.ID)
}

func (x *execution) remember(st Step, id evt.ID) {
	if st.Name != "" {
		x.ids[st.Name] = id
	}
}

// recorder returns a handler that appends its invocations to the entry of the
// step currently executing.
func (x *execution) recorder(st Step) evt.Handler {
	name := st.Name
	for name == "" || (st.Name == "" && x.declared[name]) {
		x.n++
		name = fmt.Sprintf("f%d", x.n)
	}
	panics := st.Panic
	return func(recv any, args ...any) {
		c := Call{Recorder: name, Args: append([]any(nil), args...)}
		if recv != nil {
			c.Bound = true
			c.Receiver = fmt.Sprint(recv)
		}
		x.cur.Calls = append(x.cur.Calls, c)
		if panics {
			panic(fmt.Sprintf("%s panicked", name))
		}
	}
}

// panicRecorder copies recovered panics onto the current entry.
type panicRecorder struct {
	evt.NopObserver
	x *execution
}

func (p panicRecorder) Panicked(err *evt.PanicError) {
	p.x.cur.Panics = append(p.x.cur.Panics, fmt.Sprint(err.Value))
}
