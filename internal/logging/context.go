// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey string

// loggerKey is the context key for a per-request/per-trace logger override.
const loggerKey contextKey = "logger"

// ContextWithLogger stores a logger in the context, for callers that want
// the rest of a call chain to inherit a pre-configured logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext retrieves a logger from context, falling back to the
// global logger if none is stored.
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		return logger
	}
	return Logger()
}

// Ctx returns the context's logger, or the global logger if none is
// stored. This is the entry point actor handlers use instead of the global
// Info/Warn/Error functions whenever a context is already in hand.
//
//	logging.Ctx(ctx).Info().Msg("dispatch loop terminated unexpectedly")
func Ctx(ctx context.Context) *zerolog.Logger {
	logger := LoggerFromContext(ctx)
	return &logger
}

// CtxErr starts an error level message against the context's logger with
// the error already attached. Shorthand for Ctx(ctx).Err(err).
func CtxErr(ctx context.Context, err error) *zerolog.Event {
	return Ctx(ctx).Err(err)
}
