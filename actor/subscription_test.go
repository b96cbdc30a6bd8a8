// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

package actor

import (
	"reflect"
	"testing"
)

func TestSubscriptionMapAddGetRemove(t *testing.T) {
	m := newSubscriptionMap()
	addr := Address{id: &addressID{}}
	tag := reflect.TypeOf(42)

	if !m.empty() {
		t.Fatal("newSubscriptionMap() should start empty")
	}

	e1 := &subscriptionEntry{tag: tag}
	e2 := &subscriptionEntry{tag: tag}
	m.add(addr, tag, e1)
	m.add(addr, tag, e2)

	got := m.get(addr, tag)
	if len(got) != 2 || got[0] != e1 || got[1] != e2 {
		t.Fatalf("get() = %v, want [e1 e2] in insertion order", got)
	}
	if m.empty() {
		t.Error("empty() = true after adding entries, want false")
	}

	m.remove(addr, tag, e1)
	got = m.get(addr, tag)
	if len(got) != 1 || got[0] != e2 {
		t.Fatalf("get() after removing e1 = %v, want [e2]", got)
	}

	m.remove(addr, tag, e2)
	got = m.get(addr, tag)
	if len(got) != 0 {
		t.Fatalf("get() after removing both entries = %v, want empty", got)
	}
	if !m.empty() {
		t.Error("empty() = false after removing every entry, want true")
	}
}

func TestSubscriptionMapDistinctTagsAndAddresses(t *testing.T) {
	m := newSubscriptionMap()
	addrA := Address{id: &addressID{}}
	addrB := Address{id: &addressID{}}
	intTag := reflect.TypeOf(0)
	strTag := reflect.TypeOf("")

	eInt := &subscriptionEntry{tag: intTag}
	eStr := &subscriptionEntry{tag: strTag}
	eOther := &subscriptionEntry{tag: intTag}

	m.add(addrA, intTag, eInt)
	m.add(addrA, strTag, eStr)
	m.add(addrB, intTag, eOther)

	if got := m.get(addrA, intTag); len(got) != 1 || got[0] != eInt {
		t.Errorf("get(addrA, intTag) = %v, want [eInt]", got)
	}
	if got := m.get(addrA, strTag); len(got) != 1 || got[0] != eStr {
		t.Errorf("get(addrA, strTag) = %v, want [eStr]", got)
	}
	if got := m.get(addrB, intTag); len(got) != 1 || got[0] != eOther {
		t.Errorf("get(addrB, intTag) = %v, want [eOther]", got)
	}
}
