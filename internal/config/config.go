// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

// Package config loads runtime configuration for the actor engine using
// koanf, layering defaults, an optional YAML file, and environment
// variables, in that order of increasing precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names the environment variable that, if set, points at a
// YAML config file to load.
const ConfigPathEnvVar = "ACTORLOOP_CONFIG"

// DefaultConfigPaths are checked in order when ConfigPathEnvVar is unset.
var DefaultConfigPaths = []string{
	"./actorloop.yaml",
	"/etc/actorloop/config.yaml",
}

// Policy names a supervisor's response to an uncorrectable child failure.
type Policy string

const (
	PolicyShutdownSelf Policy = "shutdown_self"
	PolicyEscalate     Policy = "escalate"
)

// Config is the runtime configuration for a root supervisor and its
// default locality binding.
type Config struct {
	// ShutdownTimeout bounds how long a supervisor waits for a child to
	// acknowledge a shutdown request before treating it as SHUTDOWN_FAILED.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// Policy is the default child-failure policy for supervisors that don't
	// specify their own.
	Policy Policy `koanf:"policy"`

	// FailureThreshold, FailureDecay, and FailureBackoff tune the
	// suture-backed restart behavior of each locality's dispatch loop.
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`

	// LogLevel and LogFormat configure internal/logging.
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
}

// DefaultConfig returns the built-in defaults, used as the lowest-priority
// layer before file and environment overrides are applied.
func DefaultConfig() Config {
	return Config{
		ShutdownTimeout:  10 * time.Second,
		Policy:           PolicyShutdownSelf,
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		LogLevel:         "info",
		LogFormat:        "json",
	}
}

// Validate rejects configurations that would make the engine unusable.
func (c Config) Validate() error {
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("config: shutdown_timeout must be positive, got %s", c.ShutdownTimeout)
	}
	if c.Policy != PolicyShutdownSelf && c.Policy != PolicyEscalate {
		return fmt.Errorf("config: policy must be %q or %q, got %q", PolicyShutdownSelf, PolicyEscalate, c.Policy)
	}
	if c.FailureThreshold <= 0 {
		return fmt.Errorf("config: failure_threshold must be positive, got %v", c.FailureThreshold)
	}
	return nil
}

// Load builds a Config from defaults, an optional YAML file, and
// environment variables prefixed with ACTORLOOP_ (e.g. ACTORLOOP_LOG_LEVEL
// sets log_level), in that order of increasing precedence.
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := DefaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: loading defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: loading file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("ACTORLOOP_", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("config: loading environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransformFunc maps ACTORLOOP_SHUTDOWN_TIMEOUT -> shutdown_timeout.
func envTransformFunc(s string) string {
	s = strings.TrimPrefix(s, "ACTORLOOP_")
	return strings.ToLower(s)
}
