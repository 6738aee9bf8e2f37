// Package events provides an ordered multi-subscriber callback registry.
package events

import "sync"

// A Subscription identifies one registered callback. The zero value is
// never returned by Subscribe.
type Subscription int

type subscriber[T any] struct {
	id Subscription
	fn func(T)
}

// An Aggregator fans values out to subscribed callbacks. Callbacks run
// synchronously on the goroutine calling Invoke, in subscription order.
// The zero value is ready to use and all methods are safe for concurrent
// use.
//
// A panicking callback aborts notification of the callbacks registered
// after it; the panic propagates to the Invoke caller.
type Aggregator[T any] struct {
	mu     sync.Mutex
	nextID Subscription
	subs   []subscriber[T]
}

// Subscribe registers fn and returns a token that removes it again.
func (a *Aggregator[T]) Subscribe(fn func(T)) Subscription {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	a.subs = append(a.subs, subscriber[T]{a.nextID, fn})
	return a.nextID
}

// Unsubscribe removes the callback registered under sub. Removing a
// subscription twice, or one that was never issued, is a no-op.
func (a *Aggregator[T]) Unsubscribe(sub Subscription) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, s := range a.subs {
		if s.id == sub {
			a.subs = append(a.subs[:i], a.subs[i+1:]...)
			return
		}
	}
}

// Clear removes every registered callback.
func (a *Aggregator[T]) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.subs = nil
}

// Len returns the number of registered callbacks.
func (a *Aggregator[T]) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.subs)
}

// Invoke calls the callbacks registered at the time of the call, in
// subscription order, passing value to each. Callbacks registered or
// removed while an Invoke is in flight take effect on the next Invoke.
func (a *Aggregator[T]) Invoke(value T) {
	a.mu.Lock()
	subs := make([]subscriber[T], len(a.subs))
	copy(subs, a.subs)
	a.mu.Unlock()

	for _, s := range subs {
		s.fn(value)
	}
}
