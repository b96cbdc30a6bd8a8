// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

package actor

import (
	"context"
	"reflect"
)

// internalEnvelope marks a Message payload as engine-internal plumbing
// rather than user data. dispatch() recognizes these and calls deliver
// directly instead of consulting a subscription map.
//
// Every producer pushes an envelope straight onto the binding of the
// locality that must act on it, and dispatch() calls deliver immediately
// without consulting Message.dest. Some producers also fill in
// Message.dest (subscribe/unsubscribe commits, unsubscribe completions,
// lifecycle and user replies); others leave it zero (handler calls, timer
// fires, lifecycle requests, shutdown triggers). Either way it plays no
// part in routing an envelope.
type internalEnvelope interface {
	deliver(ctx context.Context)
}

// handlerCallEnvelope wraps a message destined for a foreign handler: the
// handler's owning actor lives under a different supervisor than the one
// whose subscription map matched, so the call is marshaled back onto that
// actor's own locality instead of being invoked in place.
type handlerCallEnvelope struct {
	entry    *subscriptionEntry
	original Message
}

func (e handlerCallEnvelope) deliver(ctx context.Context) {
	e.entry.fn(ctx, e.original)
}

// timerFiredEnvelope is what a Binding enqueues when one of its timers
// fires, instead of mutating the request registry from the timer's own
// goroutine.
type timerFiredEnvelope struct {
	owner *Supervisor
	id    uint64
}

func (e timerFiredEnvelope) deliver(ctx context.Context) {
	e.owner.onTimerFired(ctx, e.id)
}

// unsubCompleteEnvelope closes the loop on a foreign unsubscribe commit,
// routed back to the unsubscribing actor's own locality so its pending
// count is only ever mutated from its own loop.
type unsubCompleteEnvelope struct {
	actor *Actor
	point *SubscriptionPoint
}

func (e unsubCompleteEnvelope) deliver(ctx context.Context) {
	e.actor.onUnsubscribeComplete(e.point)
}

// externalSubscribeEnvelope asks addr's owning supervisor to insert a
// foreign subscription entry into its own map.
type externalSubscribeEnvelope struct {
	addr  Address
	tag   reflect.Type
	entry *subscriptionEntry
}

func (e externalSubscribeEnvelope) deliver(ctx context.Context) {
	if e.addr.sup.state >= StateShuttingDown {
		return
	}
	e.addr.sup.subMap.add(e.addr, e.tag, e.entry)
}

// commitUnsubscribeEnvelope asks addr's owning supervisor to remove a
// foreign subscription entry from its own map.
type commitUnsubscribeEnvelope struct {
	addr  Address
	tag   reflect.Type
	entry *subscriptionEntry
	done  func()
}

func (e commitUnsubscribeEnvelope) deliver(ctx context.Context) {
	e.addr.sup.subMap.remove(e.addr, e.tag, e.entry)
	if e.done != nil {
		e.done()
	}
}

// initActorEnvelope delivers an initialize_actor request to a newly
// created child, wherever its locality lives.
type initActorEnvelope struct {
	child  unit
	reqID  uint64
	parent *Supervisor
}

func (e initActorEnvelope) deliver(ctx context.Context) {
	e.child.receiveInit(ctx, &pendingRequest{
		onSuccess: func() {
			e.parent.loc.binding.Enqueue(Message{
				dest:    e.parent.selfAddr(),
				payload: childResultEnvelope{sup: e.parent, reqID: e.reqID, err: nil},
			})
		},
		onError: func(err error) {
			e.parent.loc.binding.Enqueue(Message{
				dest:    e.parent.selfAddr(),
				payload: childResultEnvelope{sup: e.parent, reqID: e.reqID, err: err},
			})
		},
	})
}

// shutdownActorEnvelope delivers a shutdown request to a child, wherever
// its locality lives.
type shutdownActorEnvelope struct {
	child  unit
	reqID  uint64
	parent *Supervisor
}

func (e shutdownActorEnvelope) deliver(ctx context.Context) {
	e.child.receiveShutdown(ctx, &pendingRequest{
		onSuccess: func() {
			e.parent.loc.binding.Enqueue(Message{
				dest:    e.parent.selfAddr(),
				payload: childResultEnvelope{sup: e.parent, reqID: e.reqID, err: nil},
			})
		},
	})
}

// childResultEnvelope carries the outcome of an internal (init or
// shutdown) lifecycle request back to the parent supervisor that issued
// it.
type childResultEnvelope struct {
	sup   *Supervisor
	reqID uint64
	err   error
}

func (e childResultEnvelope) deliver(ctx context.Context) {
	e.sup.onInternalReqResult(ctx, e.reqID, e.err)
}

// userReplyEnvelope carries a user-level Request's reply payload back to
// the requesting supervisor.
type userReplyEnvelope struct {
	sup     *Supervisor
	reqID   uint64
	payload interface{}
}

func (e userReplyEnvelope) deliver(ctx context.Context) {
	e.sup.onUserReply(e.reqID, e.payload)
}

// shutdownTriggerEnvelope implements DoShutdown's indirection: it is
// always routed to the target supervisor's own locality before being
// acted on, so the shutdown-requesting bookkeeping is only ever touched
// from within that supervisor's own loop.
type shutdownTriggerEnvelope struct {
	sup     *Supervisor
	subject Address
}

func (e shutdownTriggerEnvelope) deliver(ctx context.Context) {
	e.sup.handleShutdownTrigger(ctx, e.subject)
}
