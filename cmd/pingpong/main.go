// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

// Package main demonstrates the engine end to end: a root supervisor with
// two children, pinger and ponger, exchanging exactly one ping/pong pair
// before pinger triggers the root's shutdown.
package main

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/tomtom215/actorloop/actor"
	"github.com/tomtom215/actorloop/internal/breaker"
	"github.com/tomtom215/actorloop/internal/config"
	"github.com/tomtom215/actorloop/internal/logging"
	"github.com/tomtom215/actorloop/internal/resilience"
)

type pingMsg struct {
	from actor.Address
}

type pongMsg struct{}

var (
	pingSent     int64
	pingReceived int64
	pongSent     int64
	pongReceived int64
)

func pongerHooks() actor.Hooks {
	return actor.Hooks{
		OnStart: func(ctx context.Context, self *actor.Actor) {
			actor.Subscribe(self, self.Address(), func(ctx context.Context, msg actor.Message, payload pingMsg) {
				atomic.AddInt64(&pingReceived, 1)
				logging.Ctx(ctx).Info().Str("actor", self.Name()).Msg("received ping")
				atomic.AddInt64(&pongSent, 1)
				actor.Send(payload.from, pongMsg{})
			})
		},
	}
}

func pingerHooks(pongerAddr actor.Address, root *actor.Supervisor) actor.Hooks {
	return actor.Hooks{
		OnStart: func(ctx context.Context, self *actor.Actor) {
			actor.Subscribe(self, self.Address(), func(ctx context.Context, msg actor.Message, payload pongMsg) {
				atomic.AddInt64(&pongReceived, 1)
				logging.Ctx(ctx).Info().Str("actor", self.Name()).Msg("received pong, triggering shutdown")
				root.DoShutdown()
			})
			atomic.AddInt64(&pingSent, 1)
			actor.Send(pongerAddr, pingMsg{from: self.Address()})
		},
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logging.Warn().Msg("received shutdown signal")
		cancel()
	}()

	sysCtx := actor.NewSystemContext(func(err error) {
		logging.Error().Err(err).Msg("unrecovered actor system error")
	}, time.Second, 10)

	loopCfg := resilience.DefaultConfig()
	loopCfg.FailureThreshold = cfg.FailureThreshold
	loopCfg.FailureDecay = cfg.FailureDecay
	loopCfg.FailureBackoff = cfg.FailureBackoff

	root, err := actor.NewRoot(ctx, "root", actor.Hooks{}, actor.RootOptions{
		Policy:          actor.Policy(cfg.Policy),
		ShutdownTimeout: cfg.ShutdownTimeout,
		Binding:         actor.NewLoopBinding(loopCfg),
		Breaker:         breaker.New(breaker.DefaultConfig()),
		SystemContext:   sysCtx,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to start root supervisor")
	}

	pongerAddr, err := root.CreateActor(ctx, "ponger", pongerHooks(), actor.CreateActorOptions{
		Role:    "ponger",
		Timeout: cfg.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create ponger")
	}

	_, err = root.CreateActor(ctx, "pinger", pingerHooks(pongerAddr, root), actor.CreateActorOptions{
		Role:    "pinger",
		Timeout: cfg.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create pinger")
	}

	if snap, err := root.Snapshot(ctx); err == nil {
		if dump, err := actor.DumpJSON(snap); err == nil {
			logging.Info().RawJSON("tree", dump).Msg("tree snapshot before shutdown")
		}
	}

	if err := root.WaitShutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("root supervisor did not shut down cleanly")
		os.Exit(1)
	}

	logging.Info().
		Int64("ping_sent", atomic.LoadInt64(&pingSent)).
		Int64("ping_received", atomic.LoadInt64(&pingReceived)).
		Int64("pong_sent", atomic.LoadInt64(&pongSent)).
		Int64("pong_received", atomic.LoadInt64(&pongReceived)).
		Msg("ping/pong scenario complete")
}
