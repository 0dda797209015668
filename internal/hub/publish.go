package hub

import "evt/pkg/types"

// Publish fans args out to the subscribers of event and reports how many
// handlers ran. Unknown events deliver to nobody. The counts are deltas of
// the hub-wide counters, so a concurrent publish made directly on Registry()
// is included in them.
func (h *Hub) Publish(event string, args []any) types.PublishResponse {
	h.pubMu.Lock()
	defer h.pubMu.Unlock()

	delivered := h.stats.deliveries.Load()
	panics := h.stats.panics.Load()
	h.reg.Publish(event, args...)

	resp := types.PublishResponse{
		Event:     event,
		Delivered: int(h.stats.deliveries.Load() - delivered),
		Failed:    int(h.stats.panics.Load() - panics),
	}
	h.log.Debug().Str("event", event).Int("delivered", resp.Delivered).Int("failed", resp.Failed).Msg("publish")
	return resp
}
