// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

/*
Package logging provides the engine's zerolog-backed structured logging:
JSON output for production, console output for development, a context
carrier for per-call-chain logger overrides, and an slog.Handler adapter
so suture/sutureslog can log through the same zerolog sink.

	logging.Init(logging.Config{Level: "info", Format: "json"})
	logging.Info().Str("actor", name).Msg("started")
	logging.Ctx(ctx).Error().Err(err).Msg("dispatch loop terminated unexpectedly")

NewSlogLogger bridges to libraries built against log/slog:

	sutureHandler := &sutureslog.Handler{Logger: logging.NewSlogLogger()}
*/
package logging
