// Package event implements a small in-process publish/subscribe registry,
// used to fan connection and stream lifecycle notifications out to whoever
// is listening without those packages importing each other directly.
package event

import (
	"sync/atomic"

	cmap "github.com/orcaman/concurrent-map"
)

// Handler receives the arguments passed to Dispatch for the event it
// subscribed to.
type Handler func(args ...interface{})

// Token identifies one Subscribe call, returned so the caller can later
// Unsubscribe exactly that registration and no other.
type Token struct {
	event string
	id    uint64
	owner interface{}
}

type subscription struct {
	id      uint64
	owner   interface{}
	handler Handler
}

// Dispatcher is a synchronous, registration-ordered pub/sub registry.
// Dispatch calls every handler subscribed to an event, in the order they
// subscribed, on the calling goroutine.
type Dispatcher struct {
	listeners cmap.ConcurrentMap
	nextID    uint64
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: cmap.New()}
}

// Subscribe registers handler to run on every future Dispatch of
// eventName. owner identifies the subscriber for later removal; it plays
// no role in dispatch itself.
func (d *Dispatcher) Subscribe(eventName string, owner interface{}, handler Handler) Token {
	id := atomic.AddUint64(&d.nextID, 1)
	sub := subscription{id: id, owner: owner, handler: handler}
	d.listeners.Upsert(eventName, sub, func(exists bool, valueInMap, newValue interface{}) interface{} {
		s := newValue.(subscription)
		if !exists {
			return []subscription{s}
		}
		return append(valueInMap.([]subscription), s)
	})
	return Token{event: eventName, id: id, owner: owner}
}

// Unsubscribe removes exactly the registration t identifies. Dispatching
// the same event again will not invoke that handler.
func (d *Dispatcher) Unsubscribe(t Token) {
	d.listeners.Upsert(t.event, nil, func(exists bool, valueInMap, _ interface{}) interface{} {
		if !exists {
			return []subscription{}
		}
		subs := valueInMap.([]subscription)
		out := make([]subscription, 0, len(subs))
		for _, s := range subs {
			if s.id == t.id && s.owner == t.owner {
				continue
			}
			out = append(out, s)
		}
		return out
	})
}

// Dispatch synchronously invokes every handler subscribed to eventName, in
// the order they were registered, passing args to each.
func (d *Dispatcher) Dispatch(eventName string, args ...interface{}) {
	v, ok := d.listeners.Get(eventName)
	if !ok {
		return
	}
	for _, s := range v.([]subscription) {
		s.handler(args...)
	}
}
