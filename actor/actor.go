// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

package actor

import (
	"context"
	"reflect"

	"github.com/tomtom215/actorloop/internal/metrics"
)

// unit is implemented by both Actor and Supervisor so the engine's internal
// lifecycle plumbing (initActorEnvelope, shutdownActorEnvelope) can target
// either one uniformly. Supervisor embeds Actor but redefines every method
// here rather than relying on promotion: Go embedding cannot give Actor's
// receiveInit a virtual call back into Supervisor's override, so the
// override must be reachable through the interface directly.
type unit interface {
	selfAddr() Address
	currentState() LifecycleState
	receiveInit(ctx context.Context, req *pendingRequest)
	receiveShutdown(ctx context.Context, req *pendingRequest)
}

// Hooks are the user-supplied lifecycle callbacks for an Actor or
// Supervisor. All three are optional. self is the unit's own Actor handle
// (for a Supervisor, its embedded Actor), the same handle passed to
// Send/Request/Subscribe elsewhere — hooks use it to wire subscriptions
// and fire off initial messages without needing a separate reference back
// to the unit under construction.
type Hooks struct {
	// OnInitialize runs once, before the unit accepts any message. An
	// error here fails the unit's creation and is reported to whatever
	// created it.
	OnInitialize func(ctx context.Context, self *Actor) error

	// OnStart runs once OnInitialize has succeeded (and, for a
	// supervisor, once every child created during OnInitialize has
	// itself finished initializing), immediately before the unit starts
	// accepting messages.
	OnStart func(ctx context.Context, self *Actor)

	// OnShutdown runs once all of the unit's own subscriptions have been
	// torn down (and, for a supervisor, once every child has shut down),
	// immediately before the unit reports shutdown complete.
	OnShutdown func(ctx context.Context, self *Actor)
}

// Actor is the base unit of the engine: an addressable, single-threaded
// handler of typed messages. A Supervisor is an Actor that may also own
// children.
type Actor struct {
	name    string
	addrVal Address
	owner   *Supervisor
	hooks   Hooks

	state LifecycleState
	beh   behavior

	subs         []*SubscriptionPoint
	unsubDone    map[*SubscriptionPoint]func()
	unsubPending int
	unsubAllDone func()

	pendingInit     *pendingRequest
	pendingShutdown *pendingRequest
}

func newActor(name string, owner *Supervisor, addr Address, hooks Hooks) *Actor {
	return &Actor{
		name:    name,
		addrVal: addr,
		owner:   owner,
		hooks:   hooks,
		state:   StateNew,
	}
}

// Address returns the actor's own address.
func (a *Actor) Address() Address { return a.addrVal }

// Name returns the name the actor was created with, for logging.
func (a *Actor) Name() string { return a.name }

// State returns the actor's current lifecycle state.
func (a *Actor) State() LifecycleState { return a.state }

// Owner returns the supervisor that owns this actor: its creator for a
// plain actor, or itself for a Supervisor's own embedded Actor. Hooks use
// this to reach supervisor-only operations (CreateActor, CreateSupervisor,
// DoShutdown) from within their own OnInitialize/OnStart/OnShutdown
// callbacks, which only ever receive the plain *Actor handle.
func (a *Actor) Owner() *Supervisor { return a.owner }

func (a *Actor) selfAddr() Address            { return a.addrVal }
func (a *Actor) currentState() LifecycleState { return a.state }

// DoShutdown triggers this actor's own shutdown via its owner's
// shutdown_trigger protocol (spec.md §4.9's "subject is a child" case).
// Supervisor defines its own DoShutdown for the "subject is itself" case
// and so is never reached through this promoted method.
func (a *Actor) DoShutdown() {
	a.owner.routeShutdownTrigger(a.owner.selfAddr(), a.addrVal)
}

// receiveInit implements unit. It runs OnInitialize, then OnStart, moving
// through StateInitializing -> StateInitialized -> StateOperational, and
// resolves req with the outcome.
func (a *Actor) receiveInit(ctx context.Context, req *pendingRequest) {
	a.state = StateInitializing
	a.beh.init = initSelf
	a.pendingInit = req

	var err error
	if a.hooks.OnInitialize != nil {
		err = a.hooks.OnInitialize(ctx, a)
	}
	a.finishInit(ctx, err)
}

// finishInit resolves the pending init request with err. A non-nil err
// leaves the actor in StateNew rather than advancing it, since nothing
// created under it ever ran.
func (a *Actor) finishInit(ctx context.Context, err error) {
	req := a.pendingInit
	a.pendingInit = nil
	a.beh.init = initDone

	if err != nil {
		a.state = StateNew
		req.replyError(err)
		return
	}

	a.state = StateInitialized
	if a.hooks.OnStart != nil {
		a.hooks.OnStart(ctx, a)
	}
	a.state = StateOperational
	req.replySuccess()
}

// receiveShutdown implements unit. If the actor was still initializing, its
// pending init request is aborted with ErrInitAborted before shutdown
// proceeds. Every subscription the actor holds is torn down before
// OnShutdown runs and req is resolved.
func (a *Actor) receiveShutdown(ctx context.Context, req *pendingRequest) {
	if a.state == StateShutdown {
		req.replySuccess()
		return
	}
	if a.state == StateInitializing && a.pendingInit != nil {
		pending := a.pendingInit
		a.pendingInit = nil
		pending.replyError(ErrInitAborted)
	}

	a.state = StateShuttingDown
	a.beh.shutdown = shutdownSelf
	a.pendingShutdown = req

	a.beginUnsubscribeAll(func() {
		a.finishShutdown(ctx)
	})
}

// finishShutdown is the single point where a unit (plain actor or
// supervisor, reached via the embedded Actor either directly or through
// Supervisor.finishOwnShutdown) transitions into StateShutdown, so it is
// also the single place metrics.ActorsShutdown is incremented.
func (a *Actor) finishShutdown(ctx context.Context) {
	if a.hooks.OnShutdown != nil {
		a.hooks.OnShutdown(ctx, a)
	}
	a.beh.shutdown = shutdownDone
	a.state = StateShutdown
	metrics.ActorsShutdown.Inc()

	req := a.pendingShutdown
	a.pendingShutdown = nil
	req.replySuccess()
}

// subscribe registers fn for messages tagged tag sent to addr, on a's
// behalf. A local entry is inserted directly, since a's hooks and handlers
// already run on its own supervisor's dispatch loop; a foreign entry's
// commit travels through addr's owning locality. Either way the
// subscription map is only ever mutated from within its own dispatch loop.
func (a *Actor) subscribe(addr Address, tag reflect.Type, fn HandlerFunc) *SubscriptionPoint {
	// local means "owned by the dispatching supervisor" (spec.md §2 item
	// 4), i.e. a's own supervisor is addr's owning supervisor — not
	// merely that the two share a locality. Two supervisors can share a
	// locality and still require the handler_call wrap for each other's
	// subscriptions.
	local := a.owner == addr.sup
	entry := &subscriptionEntry{actor: a, tag: tag, fn: fn, local: local}
	point := &SubscriptionPoint{addr: addr, tag: tag, entry: entry}
	a.subs = append(a.subs, point)

	if local {
		if addr.sup.state < StateShuttingDown {
			addr.sup.subMap.add(addr, tag, entry)
		}
		return point
	}
	addr.sup.loc.binding.Enqueue(Message{
		dest:    addr,
		payload: externalSubscribeEnvelope{addr: addr, tag: tag, entry: entry},
	})
	return point
}

// unsubscribe removes a single subscription point, calling onDone (if
// non-nil) once the removal has taken effect: synchronously for a local
// entry, and for a foreign entry once the removal has committed on the
// owning locality and the result has been relayed back to a's own locality.
func (a *Actor) unsubscribe(p *SubscriptionPoint, onDone func()) {
	for i, sp := range a.subs {
		if sp == p {
			a.subs = append(a.subs[:i], a.subs[i+1:]...)
			break
		}
	}
	a.commitUnsubscribe(p, onDone)
}

// commitUnsubscribe issues the unsubscribe commit for p without touching
// a.subs, for callers that manage that bookkeeping themselves.
func (a *Actor) commitUnsubscribe(p *SubscriptionPoint, onDone func()) {
	if onDone != nil {
		if a.unsubDone == nil {
			a.unsubDone = make(map[*SubscriptionPoint]func())
		}
		a.unsubDone[p] = onDone
	}

	if p.entry.local {
		p.addr.sup.subMap.remove(p.addr, p.tag, p.entry)
		a.onUnsubscribeComplete(p)
		return
	}

	selfAddr := a.addrVal
	p.addr.sup.loc.binding.Enqueue(Message{
		dest: p.addr,
		payload: commitUnsubscribeEnvelope{
			addr:  p.addr,
			tag:   p.tag,
			entry: p.entry,
			done: func() {
				selfAddr.sup.loc.binding.Enqueue(Message{
					dest:    selfAddr,
					payload: unsubCompleteEnvelope{actor: a, point: p},
				})
			},
		},
	})
}

// beginUnsubscribeAll tears down every subscription a currently holds,
// calling done once all of them have committed. With no subscriptions it
// calls done immediately.
func (a *Actor) beginUnsubscribeAll(done func()) {
	subs := a.subs
	a.subs = nil
	if len(subs) == 0 {
		done()
		return
	}
	a.unsubAllDone = done
	a.unsubPending = len(subs)
	for _, p := range subs {
		a.commitUnsubscribe(p, nil)
	}
}

// onUnsubscribeComplete is called back on a's own locality once a single
// unsubscribe commit (local or foreign) has taken effect.
func (a *Actor) onUnsubscribeComplete(p *SubscriptionPoint) {
	if fn, ok := a.unsubDone[p]; ok {
		delete(a.unsubDone, p)
		fn()
	}
	if a.unsubAllDone != nil {
		a.unsubPending--
		if a.unsubPending <= 0 {
			done := a.unsubAllDone
			a.unsubAllDone = nil
			done()
		}
	}
}
