// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

package actor

import "reflect"

// Message is the envelope carried through the engine: a typed payload
// addressed to a destination, optionally part of a request awaiting a
// reply at replyTo.
type Message struct {
	dest    Address
	replyTo Address
	tag     reflect.Type
	reqID   uint64
	payload interface{}
}

// Dest returns the message's destination address.
func (m Message) Dest() Address { return m.dest }

// Payload returns the message's untyped payload.
func (m Message) Payload() interface{} { return m.payload }

// IsRequest reports whether the message carries a reply address, i.e. was
// sent through Request rather than Send.
func (m Message) IsRequest() bool { return !m.replyTo.IsZero() }
