// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

package actor

import (
	"testing"

	"github.com/google/uuid"
)

func TestAddressZeroValue(t *testing.T) {
	var z Address
	if !z.IsZero() {
		t.Error("zero Address.IsZero() = false, want true")
	}

	l := &locality{}
	a := Address{id: &addressID{}, loc: l}
	if a.IsZero() {
		t.Error("non-zero Address.IsZero() = true, want false")
	}
}

func TestAddressEquality(t *testing.T) {
	id := &addressID{}
	a := Address{id: id, trace: uuid.New()}
	b := Address{id: id, trace: uuid.New()}
	if !a.Equal(b) {
		t.Error("two addresses sharing an id should be Equal regardless of trace")
	}

	c := Address{id: &addressID{}}
	if a.Equal(c) {
		t.Error("addresses with distinct ids should not be Equal")
	}
}

func TestAddressSameLocality(t *testing.T) {
	l1 := &locality{}
	l2 := &locality{}

	a := Address{id: &addressID{}, loc: l1}
	b := Address{id: &addressID{}, loc: l1}
	c := Address{id: &addressID{}, loc: l2}

	if !a.SameLocality(b) {
		t.Error("addresses sharing a locality pointer should be SameLocality")
	}
	if a.SameLocality(c) {
		t.Error("addresses with distinct locality pointers should not be SameLocality")
	}

	var z Address
	if z.SameLocality(a) {
		t.Error("zero Address should not be SameLocality with anything")
	}
}
