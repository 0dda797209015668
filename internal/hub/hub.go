package hub

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"evt/internal/common/fsutil"
	"evt/internal/config"
	"evt/internal/sink"
	"evt/pkg/evt"
	"evt/pkg/types"
)

// Hub wires an evt.Registry to the configured sinks.
type Hub struct {
	reg   *evt.Registry
	sinks *sink.Set
	stats *deliveryStats
	log   zerolog.Logger

	policy       evt.PanicPolicy
	ownedJournal bool
	startTime    time.Time

	// pubMu serializes Publish so per-call delivery counts are exact among
	// publishes made through the hub.
	pubMu sync.Mutex

	mu       sync.RWMutex
	cfg      config.Config
	reloaded time.Time
	lastErr  string
}

// Options configures New.
type Options struct {
	Config config.Config
	Logger zerolog.Logger
	// Journal overrides Config.JournalPath; the caller keeps ownership.
	Journal *sink.Journal
	// Observers are added to the registry, e.g. the Prometheus observer.
	Observers []evt.Observer
}

// New builds the registry, opens the journal when configured and applies the
// configured sinks.
func New(opts Options) (*Hub, error) {
	h := &Hub{
		stats:     &deliveryStats{},
		log:       opts.Logger,
		startTime: time.Now(),
	}
	if opts.Config.RecoverPanics {
		h.policy = evt.RecoverAndContinue
	}

	j := opts.Journal
	if j == nil && opts.Config.JournalPath != "" {
		p, err := fsutil.ResolvePath(opts.Config.JournalPath)
		if err != nil {
			return nil, err
		}
		if err := fsutil.EnsureParentDir(p); err != nil {
			return nil, err
		}
		if j, err = sink.OpenJournal(p); err != nil {
			return nil, err
		}
		h.ownedJournal = true
	}
	h.sinks = sink.NewSet(h.log.With().Str("component", "sink").Logger(), j)

	ropts := []evt.Option{
		evt.WithLogger(h.log.With().Str("component", "registry").Logger()),
		evt.WithPanicPolicy(h.policy),
		evt.WithObserver(h.stats),
	}
	for _, o := range opts.Observers {
		ropts = append(ropts, evt.WithObserver(o))
	}
	h.reg = evt.New(ropts...)

	if err := h.Reload(opts.Config); err != nil {
		_ = h.Close()
		return nil, err
	}
	return h, nil
}

// Registry exposes the underlying registry for in-process subscribers.
func (h *Hub) Registry() *evt.Registry { return h.reg }

// Ready reports whether the last configuration was applied successfully.
func (h *Hub) Ready() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastErr == "" && !h.reloaded.IsZero()
}

// Subscribe adds a sink subscriber for event.
func (h *Hub) Subscribe(event, kind, label string) (types.SubscribeResponse, error) {
	id, err := h.sinks.Subscribe(h.reg, event, kind, label)
	if err != nil {
		if sink.IsJournalUnavailable(err) {
			return types.SubscribeResponse{}, unavailableError{msg: err.Error()}
		}
		return types.SubscribeResponse{}, badRequestError{err: err}
	}
	return types.SubscribeResponse{ID: int64(id), Event: event}, nil
}

// UnsubscribeID removes a single subscription.
func (h *Hub) UnsubscribeID(id int64) error {
	if !h.reg.UnsubscribeID(evt.ID(id)) {
		return errSubscriptionNotFound(id)
	}
	return nil
}

// UnsubscribeEvent removes every subscription of an event.
func (h *Hub) UnsubscribeEvent(name string) error {
	if !h.reg.UnsubscribeEvent(name) {
		return errEventNotFound(name)
	}
	return nil
}

// Purge drops every event and subscription, including configured sinks.
// They come back on the next Reload.
func (h *Hub) Purge() {
	h.reg.Purge()
	h.log.Info().Msg("registry purged")
}

// Counts returns deliveries per event seen by count sinks.
func (h *Hub) Counts() map[string]int64 { return h.sinks.Counts.Snapshot() }

// Deliveries returns recent journal entries, newest first.
func (h *Hub) Deliveries(ctx context.Context, event string, n int) ([]types.Delivery, error) {
	if h.sinks.Journal == nil {
		return nil, unavailableError{msg: "journal not configured"}
	}
	return h.sinks.Journal.Recent(ctx, event, n)
}

// Close releases the journal if the hub opened it.
func (h *Hub) Close() error {
	if h.ownedJournal && h.sinks != nil && h.sinks.Journal != nil {
		return h.sinks.Journal.Close()
	}
	return nil
}
