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

package tree

import (
	"time"

	"github.com/tochemey/sentinel/heartbeat"
	"github.com/tochemey/sentinel/lifecycle"
	"github.com/tochemey/sentinel/supervisor"
)

const (
	// DefaultMaxRestarts is the default number of child recreations a node
	// performs within DefaultRestartWindow before escalating
	DefaultMaxRestarts = supervisor.DefaultMaxRestarts
	// DefaultRestartWindow is the default node restart intensity window
	DefaultRestartWindow = supervisor.DefaultRestartWindow
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(node *Node)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Node)

func (f OptionFunc) Apply(c *Node) {
	f(c)
}

// WithLifecycleManager spawns the supervised actors of the tree through the
// given lifecycle manager. Children created afterward inherit it.
func WithLifecycleManager(manager *lifecycle.Manager) Option {
	return OptionFunc(func(n *Node) {
		n.manager = manager
	})
}

// WithHeartbeatMonitor registers the supervised actors of the tree with the
// given heartbeat monitor. Children created afterward inherit it.
func WithHeartbeatMonitor(monitor *heartbeat.Monitor) Option {
	return OptionFunc(func(n *Node) {
		n.heartbeat = monitor
	})
}

// WithMaxRestarts sets the node restart intensity: at most maxRestarts
// escalated failures handled within the window. Beyond that the node escalates
// to its own parent. A negative maxRestarts disables the limit.
// Children created afterward inherit it.
func WithMaxRestarts(maxRestarts int, window time.Duration) Option {
	return OptionFunc(func(n *Node) {
		n.maxRestarts = maxRestarts
		n.window = window
	})
}

// WithAskTimeout sets the timeout of the requests made to the node actors.
// Children created afterward inherit it.
func WithAskTimeout(timeout time.Duration) Option {
	return OptionFunc(func(n *Node) {
		n.askTimeout = timeout
	})
}
