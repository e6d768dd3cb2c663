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

package supervisor

import (
	"time"

	"github.com/tochemey/sentinel/actor"
	"github.com/tochemey/sentinel/heartbeat"
	"github.com/tochemey/sentinel/lifecycle"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(sup *Supervisor)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Supervisor)

func (f OptionFunc) Apply(c *Supervisor) {
	f(c)
}

// WithParent sets the actor receiving the escalations of the supervisor.
// Without a parent unresolved failures are logged as unrecoverable.
func WithParent(parent *actor.PID) Option {
	return OptionFunc(func(s *Supervisor) {
		s.parent = parent
	})
}

// WithLifecycleManager spawns and stops the supervised actors through the given
// lifecycle manager. An Unhealthy health change of a supervised actor then
// terminates it so that it gets restarted.
func WithLifecycleManager(manager *lifecycle.Manager) Option {
	return OptionFunc(func(s *Supervisor) {
		s.manager = manager
	})
}

// WithHeartbeatMonitor registers every supervised incarnation with the given heartbeat monitor
func WithHeartbeatMonitor(monitor *heartbeat.Monitor) Option {
	return OptionFunc(func(s *Supervisor) {
		s.heartbeat = monitor
	})
}

// WithDefaultStrategy sets the strategy of the actors supervised without one
func WithDefaultStrategy(strategy *Strategy) Option {
	return OptionFunc(func(s *Supervisor) {
		s.strategy = strategy
	})
}

// WithAskTimeout sets the timeout of the requests made to the supervisor actor
func WithAskTimeout(timeout time.Duration) Option {
	return OptionFunc(func(s *Supervisor) {
		s.askTimeout = timeout
	})
}
