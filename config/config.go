// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package config loads the runtime configuration from a YAML document and
// turns it into the options of the components it configures.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/tochemey/sentinel/actor"
	"github.com/tochemey/sentinel/heartbeat"
	"github.com/tochemey/sentinel/lifecycle"
	"github.com/tochemey/sentinel/log"
	"github.com/tochemey/sentinel/supervisor"
	"github.com/tochemey/sentinel/tree"
)

// the health probes a lifecycle manager can be configured with
const (
	ProbeAssumeHealthy = "assume_healthy"
	ProbeAsk           = "ask"
	ProbeHeartbeat     = "heartbeat"
)

// Config is the runtime configuration
type Config struct {
	// System configures the actor system
	System SystemConfig `yaml:"system"`
	// Lifecycle configures the lifecycle manager
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	// Heartbeat configures the heartbeat monitor
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
	// Supervision configures the default supervision strategy
	Supervision SupervisionConfig `yaml:"supervision"`
	// Tree configures the supervision tree nodes
	Tree TreeConfig `yaml:"tree"`
}

// SystemConfig configures the actor system
type SystemConfig struct {
	Name        string        `yaml:"name"`
	LogLevel    string        `yaml:"log_level"`
	AskTimeout  time.Duration `yaml:"ask_timeout"`
	StopTimeout time.Duration `yaml:"stop_timeout"`
}

// LifecycleConfig configures the lifecycle manager
type LifecycleConfig struct {
	// HealthCheckInterval is the default per-actor check interval
	HealthCheckInterval time.Duration `yaml:"health_check_interval"`
	// TickInterval is the cadence of the health-check tick
	TickInterval time.Duration `yaml:"tick_interval"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
	// Probe is one of assume_healthy, ask or heartbeat
	Probe string `yaml:"probe"`
}

// HeartbeatConfig configures the heartbeat monitor
type HeartbeatConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Interval  time.Duration `yaml:"interval"`
	MaxMissed int           `yaml:"max_missed"`
}

// SupervisionConfig configures the default supervision strategy
type SupervisionConfig struct {
	// RestartMode is one of permanent, transient or temporary
	RestartMode string `yaml:"restart_mode"`
	// AnyErrorDirective is one of restart, stop or escalate. Empty keeps restarting.
	AnyErrorDirective string        `yaml:"any_error_directive"`
	MaxRestarts       int           `yaml:"max_restarts"`
	RestartWindow     time.Duration `yaml:"restart_window"`
	SpawnAttempts     int           `yaml:"spawn_attempts"`
	MinBackoff        time.Duration `yaml:"min_backoff"`
	MaxBackoff        time.Duration `yaml:"max_backoff"`
}

// TreeConfig configures the supervision tree nodes
type TreeConfig struct {
	MaxRestarts   int           `yaml:"max_restarts"`
	RestartWindow time.Duration `yaml:"restart_window"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		System: SystemConfig{
			Name:        "sentinel",
			LogLevel:    log.InfoLevel.String(),
			AskTimeout:  actor.DefaultAskTimeout,
			StopTimeout: actor.DefaultStopTimeout,
		},
		Lifecycle: LifecycleConfig{
			HealthCheckInterval: lifecycle.DefaultTickInterval,
			TickInterval:        lifecycle.DefaultTickInterval,
			ProbeTimeout:        lifecycle.DefaultProbeTimeout,
			Probe:               ProbeAssumeHealthy,
		},
		Heartbeat: HeartbeatConfig{
			Interval:  heartbeat.DefaultInterval,
			MaxMissed: heartbeat.DefaultMaxMissed,
		},
		Supervision: SupervisionConfig{
			RestartMode:   "permanent",
			MaxRestarts:   supervisor.DefaultMaxRestarts,
			RestartWindow: supervisor.DefaultRestartWindow,
			SpawnAttempts: 1,
		},
		Tree: TreeConfig{
			MaxRestarts:   tree.DefaultMaxRestarts,
			RestartWindow: tree.DefaultRestartWindow,
		},
	}
}

// Load reads the configuration file at the given path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the configuration: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML document over the default configuration and validates it.
// Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	config := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse the configuration: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	var err error

	if c.System.Name == "" {
		err = multierr.Append(err, errors.New("system.name is required"))
	}
	if log.ParseLevel(c.System.LogLevel) == log.InvalidLevel {
		err = multierr.Append(err, fmt.Errorf("invalid system.log_level: %q", c.System.LogLevel))
	}
	if c.System.AskTimeout <= 0 {
		err = multierr.Append(err, errors.New("system.ask_timeout must be positive"))
	}
	if c.System.StopTimeout <= 0 {
		err = multierr.Append(err, errors.New("system.stop_timeout must be positive"))
	}

	if c.Lifecycle.HealthCheckInterval <= 0 {
		err = multierr.Append(err, errors.New("lifecycle.health_check_interval must be positive"))
	}
	if c.Lifecycle.TickInterval <= 0 {
		err = multierr.Append(err, errors.New("lifecycle.tick_interval must be positive"))
	}
	if c.Lifecycle.ProbeTimeout <= 0 {
		err = multierr.Append(err, errors.New("lifecycle.probe_timeout must be positive"))
	}
	switch c.Lifecycle.Probe {
	case ProbeAssumeHealthy, ProbeAsk:
	case ProbeHeartbeat:
		if !c.Heartbeat.Enabled {
			err = multierr.Append(err, errors.New("lifecycle.probe heartbeat requires heartbeat.enabled"))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("invalid lifecycle.probe: %q", c.Lifecycle.Probe))
	}

	if c.Heartbeat.Enabled {
		if c.Heartbeat.Interval <= 0 {
			err = multierr.Append(err, errors.New("heartbeat.interval must be positive"))
		}
		if c.Heartbeat.MaxMissed <= 0 {
			err = multierr.Append(err, errors.New("heartbeat.max_missed must be positive"))
		}
	}

	if _, e := parseRestartMode(c.Supervision.RestartMode); e != nil {
		err = multierr.Append(err, e)
	}
	if c.Supervision.AnyErrorDirective != "" {
		if _, e := parseDirective(c.Supervision.AnyErrorDirective); e != nil {
			err = multierr.Append(err, e)
		}
	}
	if c.Supervision.MaxRestarts >= 0 && c.Supervision.RestartWindow <= 0 {
		err = multierr.Append(err, errors.New("supervision.restart_window must be positive"))
	}
	if c.Supervision.SpawnAttempts < 1 {
		err = multierr.Append(err, errors.New("supervision.spawn_attempts must be at least 1"))
	}
	if c.Supervision.MaxBackoff < c.Supervision.MinBackoff {
		err = multierr.Append(err, errors.New("supervision.max_backoff must not be lower than supervision.min_backoff"))
	}

	if c.Tree.MaxRestarts >= 0 && c.Tree.RestartWindow <= 0 {
		err = multierr.Append(err, errors.New("tree.restart_window must be positive"))
	}
	return err
}

// LogLevel returns the configured log level
func (c *Config) LogLevel() log.Level {
	return log.ParseLevel(c.System.LogLevel)
}

// Logger returns a logger writing to the standard output at the configured level
func (c *Config) Logger() log.Logger {
	return log.NewZap(c.LogLevel(), os.Stdout)
}

// SystemOptions returns the actor system options
func (c *Config) SystemOptions(logger log.Logger) []actor.Option {
	return []actor.Option{
		actor.WithLogger(logger),
		actor.WithAskTimeout(c.System.AskTimeout),
		actor.WithStopTimeout(c.System.StopTimeout),
	}
}

// LifecycleOptions returns the lifecycle manager options. monitor is the
// health probe when the configured probe is heartbeat.
func (c *Config) LifecycleOptions(monitor *heartbeat.Monitor) []lifecycle.Option {
	opts := []lifecycle.Option{
		lifecycle.WithTickInterval(c.Lifecycle.TickInterval),
		lifecycle.WithProbeTimeout(c.Lifecycle.ProbeTimeout),
	}

	switch c.Lifecycle.Probe {
	case ProbeAsk:
		opts = append(opts, lifecycle.WithHealthProbe(lifecycle.NewAskProbe(c.Lifecycle.ProbeTimeout)))
	case ProbeHeartbeat:
		if monitor != nil {
			opts = append(opts, lifecycle.WithHealthProbe(monitor))
		}
	}
	return opts
}

// HeartbeatOptions returns the heartbeat monitor options
func (c *Config) HeartbeatOptions() []heartbeat.Option {
	return []heartbeat.Option{
		heartbeat.WithInterval(c.Heartbeat.Interval),
		heartbeat.WithMaxMissed(c.Heartbeat.MaxMissed),
	}
}

// Strategy returns the default supervision strategy
func (c *Config) Strategy() *supervisor.Strategy {
	mode, _ := parseRestartMode(c.Supervision.RestartMode)
	opts := []supervisor.StrategyOption{
		supervisor.WithRestartMode(mode),
		supervisor.WithMaxRestarts(c.Supervision.MaxRestarts, c.Supervision.RestartWindow),
		supervisor.WithRetry(c.Supervision.SpawnAttempts, c.Supervision.MinBackoff, c.Supervision.MaxBackoff),
	}

	if c.Supervision.AnyErrorDirective != "" {
		directive, _ := parseDirective(c.Supervision.AnyErrorDirective)
		opts = append(opts, supervisor.WithAnyErrorDirective(directive))
	}
	return supervisor.NewStrategy(opts...)
}

// TreeOptions returns the supervision tree options
func (c *Config) TreeOptions() []tree.Option {
	return []tree.Option{
		tree.WithMaxRestarts(c.Tree.MaxRestarts, c.Tree.RestartWindow),
		tree.WithAskTimeout(c.System.AskTimeout),
	}
}

func parseRestartMode(name string) (supervisor.RestartMode, error) {
	switch strings.ToLower(name) {
	case "permanent":
		return supervisor.Permanent, nil
	case "transient":
		return supervisor.Transient, nil
	case "temporary":
		return supervisor.Temporary, nil
	default:
		return supervisor.Permanent, fmt.Errorf("invalid supervision.restart_mode: %q", name)
	}
}

func parseDirective(name string) (supervisor.Directive, error) {
	switch strings.ToLower(name) {
	case "restart":
		return supervisor.RestartDirective, nil
	case "stop":
		return supervisor.StopDirective, nil
	case "escalate":
		return supervisor.EscalateDirective, nil
	default:
		return supervisor.RestartDirective, fmt.Errorf("invalid supervision.any_error_directive: %q", name)
	}
}
