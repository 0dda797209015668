package sink

import "sync"

// Counter counts deliveries per event.
type Counter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewCounter() *Counter { return &Counter{counts: make(map[string]int64)} }

func (c *Counter) handle(recv any, _ ...any) {
	event := receiverOf(recv).Event
	c.mu.Lock()
	c.counts[event]++
	c.mu.Unlock()
}

// Snapshot returns a copy of the counts.
func (c *Counter) Snapshot() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// Reset clears all counts.
func (c *Counter) Reset() {
	c.mu.Lock()
	c.counts = make(map[string]int64)
	c.mu.Unlock()
}
