package hub

import (
	"sync/atomic"

	"evt/pkg/evt"
)

// deliveryStats counts registry activity. It is installed as an observer on
// the hub's registry.
type deliveryStats struct {
	evt.NopObserver
	publishes  atomic.Uint64
	deliveries atomic.Uint64
	panics     atomic.Uint64
}

func (s *deliveryStats) Published(string, int)    { s.publishes.Add(1) }
func (s *deliveryStats) Delivered(string, evt.ID) { s.deliveries.Add(1) }
func (s *deliveryStats) Panicked(*evt.PanicError) { s.panics.Add(1) }
