// Package evt provides an in-process publish/subscribe registry. It is
// structured into small files by concern:
//
//   - registry.go: Registry type, Subscribe/Unsubscribe/Publish/Purge.
//   - subscriber.go: Subscriber record and the ordered subscription set.
//   - key.go: Key, the tagged unsubscribe handle (ByID / ByEvent).
//   - options.go: functional options (logger, observer, panic policy).
//   - observer.go: Observer hooks used by metrics and delivery accounting.
//   - errors.go: PanicError and ErrSubscriberPanic.
//
// Subscription ids start at 0 and increase by one per Subscribe call on a
// given Registry. They are never reused, not even after Purge.
//
// Publish is synchronous: it returns once every subscriber registered for the
// event at the time of the call has been invoked, in subscription order.
// Handlers run without the registry lock held, so they may subscribe,
// unsubscribe or publish from inside a callback.
package evt
