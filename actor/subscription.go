// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

package actor

import (
	"context"
	"reflect"
)

// subscriptionKey identifies one (address, payload type) slot in a
// subscription map.
type subscriptionKey struct {
	addr *addressID
	tag  reflect.Type
}

// subscriptionEntry is one registered handler. local is true when the
// subscribing actor belongs to the same supervisor that owns addr; a
// foreign entry's messages are wrapped and re-enqueued to the
// subscriber's own locality rather than invoked in place.
type subscriptionEntry struct {
	actor *Actor
	tag   reflect.Type
	fn    HandlerFunc
	local bool
}

// subscriptionMap is owned by exactly one supervisor and mutated only from
// within that supervisor's locality dispatch loop, so it needs no locking
// of its own.
type subscriptionMap struct {
	entries map[subscriptionKey][]*subscriptionEntry
}

func newSubscriptionMap() *subscriptionMap {
	return &subscriptionMap{entries: make(map[subscriptionKey][]*subscriptionEntry)}
}

func (m *subscriptionMap) add(addr Address, tag reflect.Type, e *subscriptionEntry) {
	k := subscriptionKey{addr: addr.id, tag: tag}
	m.entries[k] = append(m.entries[k], e)
}

func (m *subscriptionMap) get(addr Address, tag reflect.Type) []*subscriptionEntry {
	return m.entries[subscriptionKey{addr: addr.id, tag: tag}]
}

func (m *subscriptionMap) remove(addr Address, tag reflect.Type, e *subscriptionEntry) {
	k := subscriptionKey{addr: addr.id, tag: tag}
	list := m.entries[k]
	for i, it := range list {
		if it == e {
			next := make([]*subscriptionEntry, 0, len(list)-1)
			next = append(next, list[:i]...)
			next = append(next, list[i+1:]...)
			if len(next) == 0 {
				delete(m.entries, k)
			} else {
				m.entries[k] = next
			}
			return
		}
	}
}

// empty reports whether the map holds any entries at all, local or
// foreign.
func (m *subscriptionMap) empty() bool {
	return len(m.entries) == 0
}

// SubscriptionPoint is the handle returned by Subscribe, used to
// unsubscribe a single handler later. Its zero value is not usable.
type SubscriptionPoint struct {
	addr  Address
	tag   reflect.Type
	entry *subscriptionEntry
}

// Subscribe registers fn to receive messages of type T sent to addr, on
// behalf of a. If addr is owned by a's own supervisor, the entry is
// inserted directly; otherwise a subscription request is routed to addr's
// owning supervisor.
func Subscribe[T any](a *Actor, addr Address, fn func(ctx context.Context, msg Message, payload T)) *SubscriptionPoint {
	tag, h := typedHandler(fn)
	return a.subscribe(addr, tag, h)
}

// Unsubscribe removes a single subscription. onDone, if non-nil, is called
// once the removal has taken effect; for a local entry this happens
// synchronously before Unsubscribe returns, for a foreign entry it happens
// asynchronously once the owning supervisor's loop processes the commit.
func Unsubscribe(a *Actor, p *SubscriptionPoint, onDone func()) {
	a.unsubscribe(p, onDone)
}
