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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/tochemey/sentinel/actor"
	"github.com/tochemey/sentinel/heartbeat"
	"github.com/tochemey/sentinel/lifecycle"
	"github.com/tochemey/sentinel/log"
	"github.com/tochemey/sentinel/supervisor"
)

const fullConfig = `
system:
  name: billing
  log_level: debug
  ask_timeout: 2s
  stop_timeout: 3s
lifecycle:
  health_check_interval: 500ms
  tick_interval: 250ms
  probe_timeout: 100ms
  probe: heartbeat
heartbeat:
  enabled: true
  interval: 200ms
  max_missed: 5
supervision:
  restart_mode: transient
  any_error_directive: escalate
  max_restarts: 10
  restart_window: 1m
  spawn_attempts: 3
  min_backoff: 10ms
  max_backoff: 100ms
tree:
  max_restarts: -1
  restart_window: 30s
`

func TestConfig(t *testing.T) {
	t.Run("With default configuration", func(t *testing.T) {
		config := Default()
		require.NoError(t, config.Validate())
		assert.Equal(t, "sentinel", config.System.Name)
		assert.Equal(t, log.InfoLevel, config.LogLevel())
		assert.Equal(t, actor.DefaultAskTimeout, config.System.AskTimeout)
		assert.Equal(t, ProbeAssumeHealthy, config.Lifecycle.Probe)
		assert.False(t, config.Heartbeat.Enabled)

		strategy := config.Strategy()
		assert.Equal(t, supervisor.Permanent, strategy.Mode())
		assert.Equal(t, supervisor.DefaultMaxRestarts, strategy.MaxRestarts())
		assert.Equal(t, supervisor.DefaultRestartWindow, strategy.Window())
		assert.Equal(t, 1, strategy.MaxAttempts())
	})
	t.Run("With empty document", func(t *testing.T) {
		config, err := Parse(nil)
		require.NoError(t, err)
		assert.Equal(t, Default(), config)
	})
	t.Run("With full document", func(t *testing.T) {
		config, err := Parse([]byte(fullConfig))
		require.NoError(t, err)

		assert.Equal(t, "billing", config.System.Name)
		assert.Equal(t, log.DebugLevel, config.LogLevel())
		assert.Equal(t, 2*time.Second, config.System.AskTimeout)
		assert.Equal(t, 3*time.Second, config.System.StopTimeout)
		assert.Equal(t, 500*time.Millisecond, config.Lifecycle.HealthCheckInterval)
		assert.Equal(t, 250*time.Millisecond, config.Lifecycle.TickInterval)
		assert.Equal(t, ProbeHeartbeat, config.Lifecycle.Probe)
		assert.True(t, config.Heartbeat.Enabled)
		assert.Equal(t, 5, config.Heartbeat.MaxMissed)
		assert.Equal(t, -1, config.Tree.MaxRestarts)

		strategy := config.Strategy()
		assert.Equal(t, supervisor.Transient, strategy.Mode())
		assert.Equal(t, 10, strategy.MaxRestarts())
		assert.Equal(t, time.Minute, strategy.Window())
		assert.Equal(t, 3, strategy.MaxAttempts())
		minBackoff, maxBackoff := strategy.Backoff()
		assert.Equal(t, 10*time.Millisecond, minBackoff)
		assert.Equal(t, 100*time.Millisecond, maxBackoff)
		assert.Equal(t, supervisor.EscalateDirective, strategy.Directive(actor.FailureReason(assert.AnError)))
	})
	t.Run("With partial document", func(t *testing.T) {
		config, err := Parse([]byte("supervision:\n  restart_mode: temporary\n"))
		require.NoError(t, err)
		assert.Equal(t, "sentinel", config.System.Name)
		assert.Equal(t, supervisor.Temporary, config.Strategy().Mode())
		assert.Equal(t, supervisor.DefaultMaxRestarts, config.Supervision.MaxRestarts)
	})
	t.Run("With unknown field", func(t *testing.T) {
		_, err := Parse([]byte("system:\n  nickname: x\n"))
		require.Error(t, err)
	})
	t.Run("With malformed duration", func(t *testing.T) {
		_, err := Parse([]byte("system:\n  ask_timeout: soon\n"))
		require.Error(t, err)
	})
	t.Run("With invalid values", func(t *testing.T) {
		config := Default()
		config.System.Name = ""
		config.System.LogLevel = "loud"
		config.Lifecycle.Probe = "ping"
		config.Supervision.RestartMode = "forever"
		config.Supervision.AnyErrorDirective = "ignore"
		config.Supervision.SpawnAttempts = 0

		err := config.Validate()
		require.Error(t, err)
		assert.Len(t, multierr.Errors(err), 6)
		assert.Contains(t, err.Error(), "system.name")
		assert.Contains(t, err.Error(), "system.log_level")
		assert.Contains(t, err.Error(), "lifecycle.probe")
		assert.Contains(t, err.Error(), "supervision.restart_mode")
		assert.Contains(t, err.Error(), "supervision.any_error_directive")
		assert.Contains(t, err.Error(), "supervision.spawn_attempts")
	})
	t.Run("With heartbeat probe and heartbeat disabled", func(t *testing.T) {
		config := Default()
		config.Lifecycle.Probe = ProbeHeartbeat
		err := config.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "heartbeat.enabled")
	})
	t.Run("With unlimited restarts and no window", func(t *testing.T) {
		config := Default()
		config.Supervision.MaxRestarts = -1
		config.Supervision.RestartWindow = 0
		config.Tree.MaxRestarts = -1
		config.Tree.RestartWindow = 0
		require.NoError(t, config.Validate())
	})
	t.Run("With configuration file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sentinel.yaml")
		require.NoError(t, os.WriteFile(path, []byte(fullConfig), 0o600))

		config, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "billing", config.System.Name)
	})
	t.Run("With missing configuration file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestOptions(t *testing.T) {
	t.Run("With components built from the configuration", func(t *testing.T) {
		ctx := t.Context()
		config, err := Parse([]byte(fullConfig))
		require.NoError(t, err)

		system, err := actor.NewSystem(config.System.Name, config.SystemOptions(log.DiscardLogger)...)
		require.NoError(t, err)
		t.Cleanup(func() { _ = system.Stop(context.Background()) })

		assert.Equal(t, 2*time.Second, system.AskTimeout())
		assert.Equal(t, 3*time.Second, system.StopTimeout())

		monitor, err := heartbeat.New(ctx, system, config.HeartbeatOptions()...)
		require.NoError(t, err)

		manager, err := lifecycle.New(ctx, system, config.Lifecycle.HealthCheckInterval, config.LifecycleOptions(monitor)...)
		require.NoError(t, err)

		require.NoError(t, manager.Stop(ctx))
		require.NoError(t, monitor.Stop(ctx))
	})
	t.Run("With lifecycle options per probe", func(t *testing.T) {
		config := Default()
		assert.Len(t, config.LifecycleOptions(nil), 2)

		config.Lifecycle.Probe = ProbeAsk
		assert.Len(t, config.LifecycleOptions(nil), 3)

		config.Lifecycle.Probe = ProbeHeartbeat
		assert.Len(t, config.LifecycleOptions(nil), 2)
	})
	t.Run("With tree options", func(t *testing.T) {
		assert.Len(t, Default().TreeOptions(), 2)
	})
}
