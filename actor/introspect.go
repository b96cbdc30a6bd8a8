// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

package actor

import (
	"context"

	"github.com/goccy/go-json"
)

// TreeSnapshot is a point-in-time, JSON-friendly view of one unit and its
// children, extending spec.md's per-unit "introspect via state(), address()"
// surface to a whole subtree for logging and debug dumps.
type TreeSnapshot struct {
	Name     string         `json:"name"`
	Address  string         `json:"address"`
	State    string         `json:"state"`
	Children []TreeSnapshot `json:"children,omitempty"`
}

// snapshotEnvelope routes a Snapshot call onto s's own locality so its
// children table is only ever walked from within its own dispatch loop.
type snapshotEnvelope struct {
	sup    *Supervisor
	ctx    context.Context
	result chan<- TreeSnapshot
}

func (e snapshotEnvelope) deliver(ctx context.Context) {
	e.result <- e.sup.buildSnapshot(e.ctx)
}

// Snapshot captures s and every descendant's current name/address/state.
// Descendants sharing s's locality are read in place; a child supervisor
// running its own locality is asked for its own snapshot instead, so no
// unit's state is ever read from outside the loop that owns it.
func (s *Supervisor) Snapshot(ctx context.Context) (TreeSnapshot, error) {
	result := make(chan TreeSnapshot, 1)
	s.loc.binding.Enqueue(Message{payload: snapshotEnvelope{sup: s, ctx: ctx, result: result}})
	select {
	case snap := <-result:
		return snap, nil
	case <-ctx.Done():
		return TreeSnapshot{}, ctx.Err()
	}
}

func (s *Supervisor) buildSnapshot(ctx context.Context) TreeSnapshot {
	snap := TreeSnapshot{Name: s.Name(), Address: s.Address().String(), State: s.State().String()}
	for _, entry := range s.children {
		switch child := entry.child.(type) {
		case *Supervisor:
			if child.loc == s.loc {
				snap.Children = append(snap.Children, child.buildSnapshot(ctx))
				continue
			}
			if childSnap, err := child.Snapshot(ctx); err == nil {
				snap.Children = append(snap.Children, childSnap)
			}
		case *Actor:
			snap.Children = append(snap.Children, TreeSnapshot{
				Name:    child.Name(),
				Address: child.Address().String(),
				State:   child.State().String(),
			})
		}
	}
	return snap
}

// DumpJSON renders snap as indented JSON via goccy/go-json's encoder, for
// log lines and debug endpoints that want a whole subtree's state in one
// call rather than probing State()/Address() unit by unit.
func DumpJSON(snap TreeSnapshot) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}
