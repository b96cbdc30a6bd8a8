// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

/*
Package config loads the engine's runtime configuration through koanf,
layering three sources in order of increasing precedence:

 1. Compiled-in defaults (DefaultConfig).
 2. An optional YAML file, located via ACTORLOOP_CONFIG or one of
    DefaultConfigPaths.
 3. Environment variables prefixed with ACTORLOOP_, e.g.
    ACTORLOOP_SHUTDOWN_TIMEOUT=30s or ACTORLOOP_POLICY=escalate.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
*/
package config
