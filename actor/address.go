// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

package actor

import "github.com/google/uuid"

// addressID is the identity of an Address. Two addresses are equal iff
// they share the same addressID pointer; the type carries no fields
// because only its address is ever observed.
type addressID struct{}

// Address is an opaque, process-local destination for messages. It is
// cheap to copy: equality is carried entirely by the internal id pointer,
// not by structural comparison of the other fields.
type Address struct {
	id    *addressID
	sup   *Supervisor
	loc   *locality
	trace uuid.UUID
}

// Equal reports whether a and b name the same address.
func (a Address) Equal(b Address) bool {
	return a.id == b.id
}

// IsZero reports whether a is the zero Address (never the destination of
// any real message).
func (a Address) IsZero() bool {
	return a.id == nil
}

// SameLocality reports whether a and b are owned by supervisors sharing a
// locality (and therefore a single dispatch loop).
func (a Address) SameLocality(b Address) bool {
	return a.loc != nil && a.loc == b.loc
}

// String returns a short opaque trace identifier for logging; it plays no
// role in equality or routing.
func (a Address) String() string {
	if a.id == nil {
		return "addr:<zero>"
	}
	return "addr:" + a.trace.String()
}
