// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

package actor

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/actorloop/internal/breaker"
	"github.com/tomtom215/actorloop/internal/logging"
	"github.com/tomtom215/actorloop/internal/metrics"
	"github.com/tomtom215/actorloop/internal/resilience"
)

// Policy names a supervisor's response to an uncorrectable child-init
// failure (spec.md §4.6). The string values line up with
// internal/config.Policy so a loaded Config converts with a plain cast:
// actor.Policy(cfg.Policy).
type Policy string

const (
	// PolicyShutdownSelf aborts the supervisor's own init (if any) and
	// tears down the whole subtree when any child fails to initialize.
	PolicyShutdownSelf Policy = "shutdown_self"

	// PolicyEscalate shuts down only the failing child and otherwise
	// continues operating.
	PolicyEscalate Policy = "escalate"
)

// childOpKind distinguishes the two internal lifecycle requests a
// supervisor issues against its own children.
type childOpKind int

const (
	opInit childOpKind = iota
	opShutdown
)

// pendingChildOp is a supervisor's bookkeeping for one outstanding
// initialize_actor or shutdown_actor request issued to a child, keyed by
// the same monotonic id used as both the request id and the timer id
// bound to it.
type pendingChildOp struct {
	kind childOpKind
	addr Address
	role string
}

// childEntry is one row of a supervisor's child table (spec.md §3).
// shutdownRequesting is the dedup flag from spec.md §4.9: once set, a
// repeated shutdown_trigger for this child is a no-op.
type childEntry struct {
	child              unit
	addr               Address
	role               string
	shutdownRequesting bool
}

// requestEntry is one row of a supervisor's request registry (spec.md
// §3): the continuation for a user-level Request, live until its reply
// arrives or its timer fires, whichever comes first.
type requestEntry struct {
	onReply func(ctx context.Context, payload interface{}, err error)
}

// Supervisor is an Actor that additionally owns children, a subscription
// map, a request registry, and the dispatch loop for its locality (if it
// is that locality's leader). It implements unit independently of Actor
// (see the comment on that interface in actor.go) so that every lifecycle
// envelope reaches the supervisor-aware override rather than the plain
// Actor behavior.
type Supervisor struct {
	Actor

	parent *Supervisor
	loc    *locality

	children        map[*addressID]*childEntry
	pendingInitSet  map[*addressID]struct{}
	subMap          *subscriptionMap
	requests        map[uint64]*requestEntry
	pendingChildOps map[uint64]pendingChildOp
	opCounter       uint64

	policy          Policy
	shutdownTimeout time.Duration
	breaker         *breaker.CreationBreaker
	sysCtx          *SystemContext

	shutdownDone chan struct{}
}

// RootOptions configures a new root supervisor (one with no parent).
type RootOptions struct {
	// Policy is this supervisor's (and, absent an override, its
	// descendants') child-init-failure disposition. Defaults to
	// PolicyShutdownSelf.
	Policy Policy

	// ShutdownTimeout bounds how long this supervisor waits for any
	// direct child to acknowledge a shutdown request. Defaults to 10s.
	ShutdownTimeout time.Duration

	// Binding is the event-loop binding for the root locality. Defaults
	// to a new LoopBinding with resilience.DefaultConfig().
	Binding Binding

	// Breaker guards repeated CreateActor/CreateSupervisor failures by
	// role. Nil disables the guard.
	Breaker *breaker.CreationBreaker

	// SystemContext receives SHUTDOWN_FAILED reports and this root's own
	// init failure, if any. Nil discards both.
	SystemContext *SystemContext

	// InitTimeout bounds the root's own OnInitialize/OnStart run. Defaults
	// to ShutdownTimeout.
	InitTimeout time.Duration
}

func (o RootOptions) withDefaults() RootOptions {
	if o.Policy == "" {
		o.Policy = PolicyShutdownSelf
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = 10 * time.Second
	}
	if o.InitTimeout <= 0 {
		o.InitTimeout = o.ShutdownTimeout
	}
	return o
}

// NewRoot constructs a root supervisor with no parent, starts its
// locality's dispatch loop, and drives it through OnInitialize/OnStart.
// It returns once init has completed (successfully or not); a failed root
// init is reported to opts.SystemContext rather than returned, matching
// spec.md §6 ("on_error(code) invoked on... init timeout at root") — the
// returned Supervisor is still usable for inspection but never reaches
// StateOperational.
func NewRoot(ctx context.Context, name string, hooks Hooks, opts RootOptions) (*Supervisor, error) {
	opts = opts.withDefaults()

	binding := opts.Binding
	if binding == nil {
		binding = NewLoopBinding(resilience.DefaultConfig())
	}

	root := newSupervisor(name, nil, nil, hooks, opts.Policy, opts.ShutdownTimeout, opts.Breaker, opts.SystemContext)
	loc := &locality{leader: root, binding: binding}
	root.loc = loc
	root.addrVal.loc = loc

	if err := binding.Start(ctx, loc); err != nil {
		return nil, fmt.Errorf("actor: starting root locality: %w", err)
	}

	done := make(chan struct{})
	req := &pendingRequest{
		onSuccess: func() { close(done) },
		onError: func(err error) {
			root.sysCtx.report(fmt.Errorf("%w: root init failed: %v", ErrInitFailed, err))
			close(done)
		},
	}
	binding.Enqueue(Message{payload: rootInitEnvelope{root: root, req: req}})

	select {
	case <-done:
	case <-time.After(opts.InitTimeout):
		root.sysCtx.report(fmt.Errorf("%w: root init timed out after %s", ErrInitFailed, opts.InitTimeout))
	}

	return root, nil
}

type rootInitEnvelope struct {
	root *Supervisor
	req  *pendingRequest
}

func (e rootInitEnvelope) deliver(ctx context.Context) {
	e.root.receiveInit(ctx, e.req)
}

// newSupervisor builds a Supervisor with every internal map initialized,
// sharing loc with parent unless the caller overwrites it afterward (as
// NewRoot and CreateSupervisor's new-locality path both do).
func newSupervisor(name string, parent *Supervisor, loc *locality, hooks Hooks, policy Policy, shutdownTimeout time.Duration, br *breaker.CreationBreaker, sysCtx *SystemContext) *Supervisor {
	s := &Supervisor{
		children:        make(map[*addressID]*childEntry),
		pendingInitSet:  make(map[*addressID]struct{}),
		subMap:          newSubscriptionMap(),
		requests:        make(map[uint64]*requestEntry),
		pendingChildOps: make(map[uint64]pendingChildOp),
		parent:          parent,
		loc:             loc,
		policy:          policy,
		shutdownTimeout: shutdownTimeout,
		breaker:         br,
		sysCtx:          sysCtx,
		shutdownDone:    make(chan struct{}),
	}
	addr := Address{id: &addressID{}, sup: s, loc: loc, trace: uuid.New()}
	// owner is self, not parent: a supervisor's own foreign-handler
	// routing and outgoing Request bookkeeping belong on its own locality
	// and registry, never its parent's (which may be a different
	// locality entirely once NewLocality is used). parent remains the
	// separate field tracking the supervision tree.
	s.Actor = *newActor(name, s, addr, hooks)
	return s
}

func (s *Supervisor) selfAddr() Address            { return s.addrVal }
func (s *Supervisor) currentState() LifecycleState { return s.state }

func (s *Supervisor) nextOpID() uint64 {
	s.opCounter++
	return s.opCounter
}

// --- init ---------------------------------------------------------------

// receiveInit implements unit for Supervisor. It runs the supervisor's own
// OnInitialize hook, then — unlike a plain Actor — waits for every child
// whose creation landed before init completion (tracked in
// pendingInitSet) to confirm its own init before running OnStart and
// reporting success upstream (spec.md §4.6).
func (s *Supervisor) receiveInit(ctx context.Context, req *pendingRequest) {
	s.state = StateInitializing
	s.beh.init = initSelf
	s.pendingInit = req

	var err error
	if s.hooks.OnInitialize != nil {
		err = s.hooks.OnInitialize(ctx, &s.Actor)
	}
	if err != nil {
		s.state = StateNew
		s.beh.init = initDone
		s.pendingInit = nil
		req.replyError(err)
		return
	}

	s.beh.init = initWaitingChildren
	s.maybeFinishOwnInit(ctx)
}

func (s *Supervisor) maybeFinishOwnInit(ctx context.Context) {
	if s.state != StateInitializing || s.beh.init != initWaitingChildren {
		return
	}
	if len(s.pendingInitSet) > 0 {
		return
	}
	s.beh.init = initDone
	s.finishInit(ctx, nil)
}

// onChildInitResult processes the outcome of one child's initialize_actor
// request, whether it arrived as a reply or as a timeout.
func (s *Supervisor) onChildInitResult(ctx context.Context, addr Address, role string, err error) {
	_, wasPending := s.pendingInitSet[addr.id]
	delete(s.pendingInitSet, addr.id)

	if err != nil {
		logging.CtxErr(ctx, err).Str("supervisor", s.name).Msg("child initialization failed")
		if s.breaker != nil && role != "" {
			s.breaker.Record(role, err)
		}
		s.handleChildInitFailure(ctx, addr, err)
	} else {
		metrics.ActorsCreated.Inc()
		if s.breaker != nil && role != "" {
			s.breaker.Record(role, nil)
		}
	}

	if wasPending {
		s.maybeFinishOwnInit(ctx)
	}
}

// handleChildInitFailure applies spec.md §4.6's policy.
func (s *Supervisor) handleChildInitFailure(ctx context.Context, addr Address, err error) {
	wrapped := fmt.Errorf("%w: %v", ErrInitFailed, err)

	switch s.policy {
	case PolicyEscalate:
		entry, ok := s.children[addr.id]
		if !ok || entry.shutdownRequesting {
			return
		}
		entry.shutdownRequesting = true
		s.requestChildShutdown(ctx, entry)
	default: // PolicyShutdownSelf
		if s.state >= StateShuttingDown {
			return
		}
		if s.pendingInit != nil {
			pending := s.pendingInit
			s.pendingInit = nil
			pending.replyError(wrapped)
		}
		s.state = StateShuttingDown
		s.beginShutdownCascade(ctx)
	}
}

// --- creation -------------------------------------------------------------

// CreateActorOptions configures one CreateActor/CreateSupervisor call.
type CreateActorOptions struct {
	// Role identifies this creation site to the breaker. Empty disables
	// breaker guarding for this call.
	Role string

	// Timeout bounds the child's initialize_actor request.
	Timeout time.Duration
}

// CreateActor constructs a plain (non-supervising) child of s, injects its
// address, and issues its initialize_actor request. It returns the new
// address immediately; the child is not yet initialized when CreateActor
// returns (spec.md §4.8 is asynchronous by nature — the result surfaces
// later through s's own supervision handling, not through this call).
func (s *Supervisor) CreateActor(ctx context.Context, name string, hooks Hooks, opts CreateActorOptions) (Address, error) {
	return s.createChild(ctx, name, opts, func(addr Address) unit {
		return newActor(name, s, addr, hooks)
	})
}

// ChildSupervisorOptions configures a CreateSupervisor call. Zero-valued
// Policy and ShutdownTimeout inherit from the parent.
type ChildSupervisorOptions struct {
	Policy          Policy
	ShutdownTimeout time.Duration

	// NewLocality starts the child as its own locality leader instead of
	// inheriting the parent's (spec.md §4.1: "a child supervisor that
	// shares its parent's locality token inherits the parent's leader;
	// otherwise it is its own leader").
	NewLocality bool

	// Binding is used only when NewLocality is true. Defaults to a new
	// LoopBinding with resilience.DefaultConfig().
	Binding Binding
}

// CreateSupervisor constructs a child Supervisor of s, optionally seeding
// its own locality, and issues its initialize_actor request exactly like
// CreateActor.
func (s *Supervisor) CreateSupervisor(ctx context.Context, name string, hooks Hooks, childOpts ChildSupervisorOptions, opts CreateActorOptions) (Address, error) {
	policy := childOpts.Policy
	if policy == "" {
		policy = s.policy
	}
	shutdownTimeout := childOpts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = s.shutdownTimeout
	}

	var childLoc *locality
	var newBinding Binding
	if childOpts.NewLocality {
		newBinding = childOpts.Binding
		if newBinding == nil {
			newBinding = NewLoopBinding(resilience.DefaultConfig())
		}
	}

	addr, err := s.createChild(ctx, name, opts, func(a Address) unit {
		loc := s.loc
		if childOpts.NewLocality {
			child := newSupervisor(name, s, nil, hooks, policy, shutdownTimeout, s.breaker, s.sysCtx)
			loc = &locality{leader: child, binding: newBinding}
			child.loc = loc
			child.addrVal.loc = loc
			childLoc = loc
			return child
		}
		child := newSupervisor(name, s, loc, hooks, policy, shutdownTimeout, s.breaker, s.sysCtx)
		return child
	})
	if err != nil {
		return Address{}, err
	}
	if childLoc != nil {
		if startErr := newBinding.Start(ctx, childLoc); startErr != nil {
			return Address{}, fmt.Errorf("actor: starting child locality: %w", startErr)
		}
	}
	return addr, nil
}

// createChild is the shared body of CreateActor and CreateSupervisor:
// refuse creation once shutdown has started (spec.md §9's open-question
// resolution), consult the breaker, mint an address via build, register
// the child, and kick off its initialize_actor request with a timeout.
//
// build receives a freshly minted Address owned by s on s's locality and
// is responsible for returning a unit whose own address is fully formed.
// CreateActor's build uses the passed Address as the new actor's own;
// CreateSupervisor's build closures construct their own Address directly
// via newSupervisor instead, since a supervisor's address names itself,
// not s.
func (s *Supervisor) createChild(ctx context.Context, name string, opts CreateActorOptions, build func(Address) unit) (Address, error) {
	if s.state >= StateShuttingDown {
		return Address{}, ErrCreationRefused
	}
	if s.breaker != nil && opts.Role != "" && !s.breaker.Allow(opts.Role) {
		return Address{}, ErrCreationBreakerOpen
	}

	placeholder := Address{id: &addressID{}, sup: s, loc: s.loc, trace: uuid.New()}
	child := build(placeholder)
	addr := child.selfAddr()

	s.children[addr.id] = &childEntry{child: child, addr: addr, role: opts.Role}
	if s.state == StateInitializing {
		s.pendingInitSet[addr.id] = struct{}{}
	}

	id := s.nextOpID()
	s.pendingChildOps[id] = pendingChildOp{kind: opInit, addr: addr, role: opts.Role}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = s.shutdownTimeout
	}
	s.loc.binding.StartTimer(timeout, id, s)
	addr.sup.loc.binding.Enqueue(Message{payload: initActorEnvelope{child: child, reqID: id, parent: s}})

	return addr, nil
}

// --- shutdown ---------------------------------------------------------------

// receiveShutdown implements unit for Supervisor. Unlike a plain Actor, it
// first cascades a shutdown request to every child, and only runs its own
// unsubscribe-all/OnShutdown once the child table is empty (spec.md §4.6).
func (s *Supervisor) receiveShutdown(ctx context.Context, req *pendingRequest) {
	if s.state == StateShutdown {
		req.replySuccess()
		return
	}
	if s.state == StateInitializing && s.pendingInit != nil {
		pending := s.pendingInit
		s.pendingInit = nil
		pending.replyError(ErrInitAborted)
	}

	s.state = StateShuttingDown
	s.pendingShutdown = req
	s.beginShutdownCascade(ctx)
}

// beginShutdownCascade is shared by receiveShutdown (external request) and
// the PolicyShutdownSelf path (self-initiated, no pendingShutdown).
func (s *Supervisor) beginShutdownCascade(ctx context.Context) {
	s.beh.shutdown = shutdownWaitingChildren
	if len(s.children) == 0 {
		s.finishOwnShutdown(ctx)
		return
	}
	for _, entry := range s.children {
		if entry.shutdownRequesting {
			continue
		}
		entry.shutdownRequesting = true
		s.requestChildShutdown(ctx, entry)
	}
}

func (s *Supervisor) requestChildShutdown(ctx context.Context, entry *childEntry) {
	id := s.nextOpID()
	s.pendingChildOps[id] = pendingChildOp{kind: opShutdown, addr: entry.addr}
	s.loc.binding.StartTimer(s.shutdownTimeout, id, s)
	entry.addr.sup.loc.binding.Enqueue(Message{payload: shutdownActorEnvelope{child: entry.child, reqID: id, parent: s}})
}

// onChildShutdownSettled is reached whether the child confirmed in time or
// its shutdown timer fired first; either way it leaves the child table.
func (s *Supervisor) onChildShutdownSettled(ctx context.Context, addr Address) {
	if _, ok := s.children[addr.id]; !ok {
		return
	}
	delete(s.children, addr.id)
	if len(s.children) == 0 && s.beh.shutdown == shutdownWaitingChildren {
		s.finishOwnShutdown(ctx)
	}
}

func (s *Supervisor) onChildShutdownTimeout(ctx context.Context, addr Address) {
	wrapped := fmt.Errorf("%w: child at %s", ErrShutdownFailed, addr.String())
	metrics.ShutdownFailures.Inc()
	s.sysCtx.report(wrapped)
	s.onChildShutdownSettled(ctx, addr)
}

func (s *Supervisor) finishOwnShutdown(ctx context.Context) {
	s.beh.shutdown = shutdownRunningOwnHook
	s.beginUnsubscribeAll(func() {
		s.finishShutdown(ctx)
		close(s.shutdownDone)

		// s owning its locality (root, or any NewLocality child) means its
		// dispatch loop must stop here regardless of whether anything ever
		// calls WaitShutdown on s specifically — otherwise a NewLocality
		// child's loop goroutine outlives the subtree that created it.
		// Run from a fresh goroutine: the loop cannot cancel itself from
		// inside the very callback it is currently running.
		if s.loc.leader == s {
			go s.loc.binding.Shutdown(context.Background())
		}
	})
}

// --- timers and replies -----------------------------------------------------

// onTimerFired implements the Binding contract's callback target: a
// timer id is either a live user Request or a live child lifecycle op,
// never both (ids are never reused, spec.md §9).
func (s *Supervisor) onTimerFired(ctx context.Context, id uint64) {
	if entry, ok := s.requests[id]; ok {
		delete(s.requests, id)
		metrics.RequestsPending.Dec()
		metrics.RequestTimeouts.Inc()
		entry.onReply(ctx, nil, ErrRequestTimeout)
		return
	}
	if op, ok := s.pendingChildOps[id]; ok {
		delete(s.pendingChildOps, id)
		switch op.kind {
		case opInit:
			s.onChildInitResult(ctx, op.addr, op.role, ErrRequestTimeout)
		case opShutdown:
			s.onChildShutdownTimeout(ctx, op.addr)
		}
	}
}

// onInternalReqResult delivers the outcome of a child's init or shutdown
// request back from the envelope that carried it.
func (s *Supervisor) onInternalReqResult(ctx context.Context, reqID uint64, err error) {
	op, ok := s.pendingChildOps[reqID]
	if !ok {
		return
	}
	delete(s.pendingChildOps, reqID)
	s.loc.binding.CancelTimer(reqID)

	switch op.kind {
	case opInit:
		s.onChildInitResult(ctx, op.addr, op.role, err)
	case opShutdown:
		s.onChildShutdownSettled(ctx, op.addr)
	}
}

// onUserReply delivers a Request's reply payload, consulting the request
// registry per spec.md §4.7: live -> cancel timer and resolve; otherwise
// the timeout already fired and the reply is dropped silently.
func (s *Supervisor) onUserReply(reqID uint64, payload interface{}) {
	entry, ok := s.requests[reqID]
	if !ok {
		return
	}
	delete(s.requests, reqID)
	s.loc.binding.CancelTimer(reqID)
	metrics.RequestsPending.Dec()
	entry.onReply(context.Background(), payload, nil)
}

func (s *Supervisor) sendRequest(from, dest Address, payload interface{}, timeout time.Duration, onReply func(ctx context.Context, payload interface{}, err error)) {
	id := s.nextOpID()
	s.requests[id] = &requestEntry{onReply: onReply}
	metrics.RequestsPending.Inc()
	s.loc.binding.StartTimer(timeout, id, s)
	dest.sup.loc.binding.Enqueue(Message{
		dest:    dest,
		replyTo: from,
		tag:     reflect.TypeOf(payload),
		reqID:   id,
		payload: payload,
	})
}

// --- message delivery ---------------------------------------------------

// deliverLocal implements spec.md §4.4 step 2: invoke every local handler
// directly, and wrap every foreign handler's call so it runs on its own
// actor's locality instead of in place.
func (s *Supervisor) deliverLocal(ctx context.Context, msg Message) {
	tag := msg.tag
	if tag == nil && msg.payload != nil {
		tag = reflect.TypeOf(msg.payload)
	}
	for _, e := range s.subMap.get(msg.dest, tag) {
		if e.local {
			e.fn(ctx, msg)
			continue
		}
		owner := e.actor.owner
		owner.loc.binding.Enqueue(Message{payload: handlerCallEnvelope{entry: e, original: msg}})
	}
}

// --- shutdown trigger (spec.md §4.9) ----------------------------------------

// DoShutdown triggers this supervisor's own shutdown. If it has a parent,
// the trigger is forwarded there so the parent shuts it down through the
// ordinary child protocol; a root enters shutdown directly.
func (s *Supervisor) DoShutdown() {
	s.routeShutdownTrigger(s.selfAddr(), s.selfAddr())
}

// routeShutdownTrigger enqueues onto actOn's own locality so
// handleShutdownTrigger always runs on the locality that owns the
// bookkeeping it mutates.
func (s *Supervisor) routeShutdownTrigger(actOn, subject Address) {
	actOn.sup.loc.binding.Enqueue(Message{payload: shutdownTriggerEnvelope{sup: actOn.sup, subject: subject}})
}

// handleShutdownTrigger implements spec.md §4.9. s is always the
// supervisor whose locality the trigger was routed onto: either subject's
// own supervisor (subject triggering its own shutdown) or a parent
// forwarding on behalf of a child.
func (s *Supervisor) handleShutdownTrigger(ctx context.Context, subject Address) {
	if subject.Equal(s.selfAddr()) {
		if s.parent != nil {
			s.routeShutdownTrigger(s.parent.selfAddr(), s.selfAddr())
			return
		}
		if s.state >= StateShuttingDown {
			return
		}
		s.state = StateShuttingDown
		s.beginShutdownCascade(ctx)
		return
	}

	entry, ok := s.children[subject.id]
	if !ok || entry.shutdownRequesting {
		return
	}
	entry.shutdownRequesting = true
	s.requestChildShutdown(ctx, entry)
}

// Shutdown blocks until s reaches StateShutdown, triggering it first if it
// has not already begun. It is a convenience wrapper for callers that want
// a synchronous teardown (tests, cmd/ binaries) rather than the purely
// async DoShutdown/OnShutdown hook pair.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.DoShutdown()
	return s.WaitShutdown(ctx)
}

// WaitShutdown blocks until s reaches StateShutdown without itself
// triggering shutdown — for a caller that expects something else in the
// tree (a handler calling DoShutdown on a pong received, say) to start the
// teardown and just wants to observe its completion.
func (s *Supervisor) WaitShutdown(ctx context.Context) error {
	select {
	case <-s.shutdownDone:
		if s.loc.leader == s {
			return s.loc.binding.Shutdown(ctx)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
