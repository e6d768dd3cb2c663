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
	"reflect"
	"time"

	"github.com/tochemey/sentinel/actor"
	gerrors "github.com/tochemey/sentinel/errors"
)

const (
	// DefaultMaxRestarts is the default number of restarts allowed within DefaultRestartWindow
	DefaultMaxRestarts = 3
	// DefaultRestartWindow is the default restart intensity window
	DefaultRestartWindow = 5 * time.Second
)

// RestartMode defines which terminations of a supervised actor lead to a restart
type RestartMode int

const (
	// Permanent actors are always restarted, even after a normal stop
	Permanent RestartMode = iota
	// Transient actors are restarted only when they terminate abnormally
	Transient
	// Temporary actors are never restarted
	Temporary
)

// String returns the string representation of the restart mode
func (m RestartMode) String() string {
	switch m {
	case Permanent:
		return "Permanent"
	case Transient:
		return "Transient"
	case Temporary:
		return "Temporary"
	default:
		return ""
	}
}

// Directive defines the supervisor directive
//
// It represents the action that a supervisor takes when a supervised actor terminates.
type Directive int

const (
	// RestartDirective instructs the supervisor to replace the terminated actor
	// with a brand-new instance built from its producer.
	RestartDirective Directive = iota
	// StopDirective instructs the supervisor to let the actor go and forget about it.
	StopDirective
	// EscalateDirective instructs the supervisor to hand the failure over to its parent.
	EscalateDirective
)

// String returns the string representation of the directive
func (d Directive) String() string {
	switch d {
	case RestartDirective:
		return "Restart"
	case StopDirective:
		return "Stop"
	case EscalateDirective:
		return "Escalate"
	default:
		return ""
	}
}

// StrategyOption defines the various options to apply to a given Strategy
type StrategyOption func(*Strategy)

// WithRestartMode sets the restart mode
func WithRestartMode(mode RestartMode) StrategyOption {
	return func(s *Strategy) {
		s.mode = mode
	}
}

// WithDirective sets the mapping between an error and a given directive.
// Errors are matched on their concrete type.
func WithDirective(err error, directive Directive) StrategyOption {
	return func(s *Strategy) {
		s.directives[errorType(err)] = directive
	}
}

// WithAnyErrorDirective sets the directive to apply to any error.
// It overrides every error-specific directive.
func WithAnyErrorDirective(directive Directive) StrategyOption {
	return func(s *Strategy) {
		s.directives = map[string]Directive{errorType(new(gerrors.AnyError)): directive}
	}
}

// WithMaxRestarts sets the restart intensity: at most maxRestarts restarts
// within the given window. Restarting beyond that escalates the failure.
// A negative maxRestarts disables the limit.
func WithMaxRestarts(maxRestarts int, window time.Duration) StrategyOption {
	return func(s *Strategy) {
		s.maxRestarts = maxRestarts
		s.window = window
	}
}

// WithRetry sets how many times spawning the replacement actor is attempted
// and the backoff bounds between two attempts.
func WithRetry(maxAttempts int, minBackoff, maxBackoff time.Duration) StrategyOption {
	return func(s *Strategy) {
		s.maxAttempts = maxAttempts
		s.minBackoff = minBackoff
		s.maxBackoff = maxBackoff
	}
}

// Strategy is the restart policy applied by a supervisor to a supervised actor.
//
// Defaults:
//   - Mode: Permanent.
//   - Directives: Restart on any failure.
//   - Intensity: DefaultMaxRestarts within DefaultRestartWindow.
//   - Spawn attempts: 1, no backoff.
//
// A Strategy is immutable once built and can be shared.
type Strategy struct {
	mode        RestartMode
	directives  map[string]Directive
	maxRestarts int
	window      time.Duration
	maxAttempts int
	minBackoff  time.Duration
	maxBackoff  time.Duration
}

// NewStrategy creates a supervision strategy
func NewStrategy(opts ...StrategyOption) *Strategy {
	s := &Strategy{
		mode:        Permanent,
		directives:  make(map[string]Directive),
		maxRestarts: DefaultMaxRestarts,
		window:      DefaultRestartWindow,
		maxAttempts: 1,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.maxAttempts < 1 {
		s.maxAttempts = 1
	}
	if s.maxBackoff < s.minBackoff {
		s.maxBackoff = s.minBackoff
	}
	return s
}

// DefaultStrategy returns the default supervision strategy
func DefaultStrategy() *Strategy {
	return NewStrategy()
}

// Mode returns the restart mode
func (s *Strategy) Mode() RestartMode {
	return s.mode
}

// MaxRestarts returns the number of restarts allowed within Window
func (s *Strategy) MaxRestarts() int {
	return s.maxRestarts
}

// Window returns the restart intensity window
func (s *Strategy) Window() time.Duration {
	return s.window
}

// MaxAttempts returns how many times spawning a replacement is attempted
func (s *Strategy) MaxAttempts() int {
	return s.maxAttempts
}

// Backoff returns the bounds of the delay between two spawn attempts
func (s *Strategy) Backoff() (minBackoff, maxBackoff time.Duration) {
	return s.minBackoff, s.maxBackoff
}

// Directive returns the directive to apply to an actor that terminated for the given reason
func (s *Strategy) Directive(reason actor.StopReason) Directive {
	if s.mode == Temporary {
		return StopDirective
	}

	if reason.IsNormal() {
		if s.mode == Permanent {
			return RestartDirective
		}
		return StopDirective
	}

	if directive, ok := s.directives[errorType(new(gerrors.AnyError))]; ok {
		return directive
	}

	if reason.Err != nil {
		if directive, ok := s.directives[errorType(reason.Err)]; ok {
			return directive
		}
	}
	return RestartDirective
}

// errorType returns the string representation of an error's type using reflection
func errorType(err error) string {
	if err == nil {
		return "nil"
	}

	rtype := reflect.TypeOf(err)
	if rtype.Kind() == reflect.Pointer {
		rtype = rtype.Elem()
	}

	return rtype.String()
}
