// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

package actor

import "sync"

// mailbox is the FIFO queue backing one locality. Pushes happen from any
// goroutine; pops happen only from the locality's own dispatch loop.
//
// No off-the-shelf MPSC queue appears among the example repos' go.mod
// dependency sets (the teacher hand-rolls its own channel-based hub
// instead of importing one for its WebSocket broadcast path), so this
// follows that precedent rather than reaching for an unrelated library.
type mailbox struct {
	mu    sync.Mutex
	queue []Message
	wake  chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{wake: make(chan struct{}, 1)}
}

func (m *mailbox) push(msg Message) {
	m.mu.Lock()
	m.queue = append(m.queue, msg)
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *mailbox) pop() (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		return Message{}, false
	}
	msg := m.queue[0]
	m.queue = m.queue[1:]
	return msg, true
}

func (m *mailbox) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}
