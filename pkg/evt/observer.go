package evt

// Observer receives registry lifecycle notifications. Implementations must be
// cheap and must not call back into the Registry; hooks run while the caller
// of the triggering operation waits.
type Observer interface {
	Subscribed(event string, id ID)
	// Unsubscribed is called once per removed subscription. byEvent is true
	// when the removal came from UnsubscribeEvent.
	Unsubscribed(event string, id ID, byEvent bool)
	// Published is called before fan-out with the number of subscribers in
	// the snapshot.
	Published(event string, subscribers int)
	Delivered(event string, id ID)
	Panicked(err *PanicError)
	// Purged is called with the number of subscriptions dropped.
	Purged(subscriptions int)
}

// NopObserver ignores every notification. Embed it to implement a subset.
type NopObserver struct{}

func (NopObserver) Subscribed(string, ID)         {}
func (NopObserver) Unsubscribed(string, ID, bool) {}
func (NopObserver) Published(string, int)         {}
func (NopObserver) Delivered(string, ID)          {}
func (NopObserver) Panicked(*PanicError)          {}
func (NopObserver) Purged(int)                    {}

// multiObserver fans notifications out to several observers.
type multiObserver []Observer

func (m multiObserver) Subscribed(e string, id ID) {
	for _, o := range m {
		o.Subscribed(e, id)
	}
}

func (m multiObserver) Unsubscribed(e string, id ID, byEvent bool) {
	for _, o := range m {
		o.Unsubscribed(e, id, byEvent)
	}
}

func (m multiObserver) Published(e string, n int) {
	for _, o := range m {
		o.Published(e, n)
	}
}

func (m multiObserver) Delivered(e string, id ID) {
	for _, o := range m {
		o.Delivered(e, id)
	}
}

func (m multiObserver) Panicked(err *PanicError) {
	for _, o := range m {
		o.Panicked(err)
	}
}

func (m multiObserver) Purged(n int) {
	for _, o := range m {
		o.Purged(n)
	}
}
