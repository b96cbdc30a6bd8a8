// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

package actor

import "testing"

func TestMailboxFIFOOrder(t *testing.T) {
	m := newMailbox()
	m.push(Message{payload: 1})
	m.push(Message{payload: 2})
	m.push(Message{payload: 3})

	if got := m.len(); got != 3 {
		t.Fatalf("len() = %d, want 3", got)
	}

	for i, want := range []int{1, 2, 3} {
		msg, ok := m.pop()
		if !ok {
			t.Fatalf("pop() #%d: ok = false, want true", i)
		}
		if got := msg.Payload().(int); got != want {
			t.Errorf("pop() #%d payload = %d, want %d", i, got, want)
		}
	}

	if _, ok := m.pop(); ok {
		t.Error("pop() on drained mailbox: ok = true, want false")
	}
}

func TestMailboxWakeSignalsOnce(t *testing.T) {
	m := newMailbox()
	m.push(Message{payload: 1})
	m.push(Message{payload: 2})

	select {
	case <-m.wake:
	default:
		t.Fatal("expected a pending wake signal after two pushes")
	}

	select {
	case <-m.wake:
		t.Error("wake channel should not carry a second pending signal")
	default:
	}
}
