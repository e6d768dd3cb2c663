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

package heartbeat

import "time"

const (
	// DefaultInterval is the default time between two heartbeats
	DefaultInterval = time.Second
	// DefaultMaxMissed is the default number of consecutive missed heartbeats
	// after which an actor is reported Unhealthy
	DefaultMaxMissed = 3
	// DefaultName is the default name of the monitor actor
	DefaultName = "heartbeat-monitor"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(monitor *Monitor)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Monitor)

func (f OptionFunc) Apply(c *Monitor) {
	f(c)
}

// WithName sets the monitor actor name.
// Use distinct names when running several monitors on the same system.
func WithName(name string) Option {
	return OptionFunc(func(m *Monitor) {
		m.name = name
	})
}

// WithInterval sets the time between two heartbeats
func WithInterval(interval time.Duration) Option {
	return OptionFunc(func(m *Monitor) {
		m.interval = interval
	})
}

// WithMaxMissed sets the number of consecutive missed heartbeats
// after which an actor is reported Unhealthy
func WithMaxMissed(maxMissed int) Option {
	return OptionFunc(func(m *Monitor) {
		m.maxMissed = maxMissed
	})
}

// WithAskTimeout sets the timeout of the requests made to the monitor actor
func WithAskTimeout(timeout time.Duration) Option {
	return OptionFunc(func(m *Monitor) {
		m.askTimeout = timeout
	})
}
