package event

import "sync"

// Bus fans an event out to every subscriber, in subscription order, before
// Publish returns. There is no queue and no dispatch goroutine: events for
// one request id are published from the goroutine running that exchange, so
// per-id causal order holds for free. No ordering is promised between
// different ids.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscriber
}

type subscriber struct {
	id int
	fn func(Event)
}

// NewBus returns an empty bus.
func NewBus() *Bus { return &Bus{} }

// Subscribe registers fn and returns a function that removes it. A
// subscription added or removed while a Publish is in flight takes effect
// for the next Publish.
func (b *Bus) Subscribe(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscriber{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers ev to every current subscriber and returns once all have
// run. A subscriber panic is swallowed so observer failures never reach the
// intercepted call site.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		deliver(s.fn, ev)
	}
}

func deliver(fn func(Event), ev Event) {
	defer func() {
		_ = recover()
	}()
	fn(ev)
}
