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

package lifecycle

import (
	"time"
)

const (
	// DefaultTickInterval is the cadence of the health-check tick
	DefaultTickInterval = time.Second
	// DefaultProbeTimeout bounds a health-check round
	DefaultProbeTimeout = time.Second
	// DefaultName is the name of the manager actor
	DefaultName = "lifecycle-manager"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(manager *Manager)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(manager *Manager)

// Apply applies the option
func (f OptionFunc) Apply(manager *Manager) {
	f(manager)
}

// WithName sets the name of the manager actor
func WithName(name string) Option {
	return OptionFunc(func(manager *Manager) {
		manager.name = name
	})
}

// WithTickInterval overrides the health-check tick cadence
func WithTickInterval(interval time.Duration) Option {
	return OptionFunc(func(manager *Manager) {
		manager.tickInterval = interval
	})
}

// WithHealthProbe sets the probe used to evaluate health
func WithHealthProbe(probe HealthProbe) Option {
	return OptionFunc(func(manager *Manager) {
		manager.probe = probe
	})
}

// WithProbeTimeout bounds a health-check round
func WithProbeTimeout(timeout time.Duration) Option {
	return OptionFunc(func(manager *Manager) {
		manager.probeTimeout = timeout
	})
}

// WithAskTimeout sets the timeout of the requests sent to the manager actor
func WithAskTimeout(timeout time.Duration) Option {
	return OptionFunc(func(manager *Manager) {
		manager.askTimeout = timeout
	})
}

// MonitorOption configures how an actor is monitored
type MonitorOption func(*monitorConfig)

type monitorConfig struct {
	checkInterval time.Duration
}

// WithCheckInterval overrides the health-check interval of a single actor
func WithCheckInterval(interval time.Duration) MonitorOption {
	return func(config *monitorConfig) {
		config.checkInterval = interval
	}
}

// StopOption configures how an actor is stopped
type StopOption func(*stopConfig)

type stopConfig struct {
	timeout time.Duration
}

// WithStopTimeout bounds the forced termination of an actor
func WithStopTimeout(timeout time.Duration) StopOption {
	return func(config *stopConfig) {
		config.timeout = timeout
	}
}
