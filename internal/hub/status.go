package hub

import (
	"time"

	"evt/internal/sink"
	"evt/pkg/types"
)

// Status summarizes the registry and delivery counters.
func (h *Hub) Status() types.StatusResponse {
	st := h.reg.Stats()
	now := time.Now()
	resp := types.StatusResponse{
		Events:          st.Events,
		Subscriptions:   st.Subscriptions,
		LastID:          int64(st.LastID),
		PublishesTotal:  h.stats.publishes.Load(),
		DeliveriesTotal: h.stats.deliveries.Load(),
		PanicsTotal:     h.stats.panics.Load(),
		PanicPolicy:     h.policy.String(),
		UptimeSeconds:   int64(now.Sub(h.startTime).Seconds()),
		ServerTimeUnix:  now.Unix(),
	}
	h.mu.RLock()
	if !h.reloaded.IsZero() {
		resp.ReloadedUnix = h.reloaded.Unix()
	}
	resp.LastError = h.lastErr
	h.mu.RUnlock()
	return resp
}

// ListEvents returns every known event with its live subscriptions.
func (h *Hub) ListEvents() []types.EventInfo {
	names := h.reg.Events()
	out := make([]types.EventInfo, 0, len(names))
	for _, name := range names {
		subs := h.reg.Subscribers(name)
		info := types.EventInfo{Name: name, Subscribers: len(subs)}
		for _, s := range subs {
			si := types.SubscriptionInfo{ID: int64(s.ID)}
			if r, ok := s.Receiver.(sink.Receiver); ok {
				si.Kind, si.Label = r.Kind, r.Label
			}
			info.Subscriptions = append(info.Subscriptions, si)
		}
		out = append(out, info)
	}
	return out
}
