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

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrDead indicates that the actor is no longer alive or has been terminated.
	ErrDead = errors.New("actor is not alive")

	// ErrActorNotFound is returned when an operation references an actor id that is not tracked.
	ErrActorNotFound = errors.New("actor not found")

	// ErrChildNotFound is returned when an operation references a tree child name that is not tracked.
	ErrChildNotFound = errors.New("child not found")

	// ErrActorAlreadyExists is returned when a name is already used by a supervised actor.
	ErrActorAlreadyExists = errors.New("actor already exists")

	// ErrChildAlreadyExists is returned when a tree node already holds a child with the same name.
	ErrChildAlreadyExists = errors.New("child already exists")

	// ErrParentAlreadySet is returned when a tree node is told its parent more than once.
	ErrParentAlreadySet = errors.New("parent is already set")

	// ErrNameRequired is returned when an empty name is given.
	ErrNameRequired = errors.New("name is required")

	// ErrUndefinedActor is returned when a nil actor or producer is given.
	ErrUndefinedActor = errors.New("actor is not defined")

	// ErrInvalidTimeout is returned when a timeout value is less than or equal to zero.
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrInvalidInterval is returned when an interval value is less than or equal to zero.
	ErrInvalidInterval = errors.New("invalid interval")

	// ErrRequestTimeout indicates that an Ask message timed out while waiting for a response.
	ErrRequestTimeout = errors.New("request timed out")

	// ErrUnhandled is returned when an actor receives a message it cannot handle.
	ErrUnhandled = errors.New("unhandled message")

	// ErrInvalidReply is returned when an actor answers with an unexpected message.
	ErrInvalidReply = errors.New("invalid reply")

	// ErrSchedulerNotStarted is returned when attempting to use the scheduler before it has started.
	ErrSchedulerNotStarted = errors.New("scheduler has not started")

	// ErrSystemStopped is returned when spawning on an actor system that has been stopped.
	ErrSystemStopped = errors.New("actor system is stopped")

	// ErrSpawnFailure is the category matched by every SpawnError.
	ErrSpawnFailure = errors.New("spawn failure")

	// ErrLinkFailure is the category matched by every LinkError.
	ErrLinkFailure = errors.New("link failure")

	// ErrSendFailure is the category matched by every SendError.
	ErrSendFailure = errors.New("send failure")

	// ErrUnhealthy is the failure cause of an actor terminated because its health check reported Unhealthy.
	ErrUnhealthy = errors.New("actor is unhealthy")

	// ErrRestartIntensityExceeded is the failure cause escalated when restarts happen too often.
	ErrRestartIntensityExceeded = errors.New("restart intensity exceeded")
)

// NewErrActorNotFound formats an ErrActorNotFound with the given actor id.
func NewErrActorNotFound(actorID string) error {
	return fmt.Errorf("(actor=%s) %w", actorID, ErrActorNotFound)
}

// NewErrChildNotFound formats an ErrChildNotFound with the given child name.
func NewErrChildNotFound(name string) error {
	return fmt.Errorf("(child=%s) %w", name, ErrChildNotFound)
}

// NewErrActorAlreadyExists formats an ErrActorAlreadyExists for the given actor name.
func NewErrActorAlreadyExists(name string) error {
	return fmt.Errorf("actor=(%s) %w", name, ErrActorAlreadyExists)
}

// NewErrChildAlreadyExists formats an ErrChildAlreadyExists for the given child name.
func NewErrChildAlreadyExists(name string) error {
	return fmt.Errorf("child=(%s) %w", name, ErrChildAlreadyExists)
}

// SpawnError defines an error when a new actor or tree node could not be constructed
type SpawnError struct {
	name string
	err  error
}

var _ error = (*SpawnError)(nil)

// NewSpawnError returns an instance of SpawnError
func NewSpawnError(name string, err error) *SpawnError {
	return &SpawnError{name: name, err: err}
}

// Error implements the standard error interface
func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn error: name=(%s): %v", e.name, e.err)
}

// Unwrap returns the cause
func (e *SpawnError) Unwrap() error {
	return e.err
}

// Is reports whether target is the spawn failure category
func (e *SpawnError) Is(target error) bool {
	return target == ErrSpawnFailure
}

// LinkError defines an error when a death-notification link could not be
// established or torn down
type LinkError struct {
	actorID string
	err     error
}

var _ error = (*LinkError)(nil)

// NewLinkError returns an instance of LinkError
func NewLinkError(actorID string, err error) *LinkError {
	return &LinkError{actorID: actorID, err: err}
}

// Error implements the standard error interface
func (e *LinkError) Error() string {
	return fmt.Sprintf("link error: actor=(%s): %v", e.actorID, e.err)
}

// Unwrap returns the cause
func (e *LinkError) Unwrap() error {
	return e.err
}

// Is reports whether target is the link failure category
func (e *LinkError) Is(target error) bool {
	return target == ErrLinkFailure
}

// SendError defines an error when a message could not be delivered to a peer
type SendError struct {
	receiver string
	err      error
}

var _ error = (*SendError)(nil)

// NewSendError returns an instance of SendError
func NewSendError(receiver string, err error) *SendError {
	return &SendError{receiver: receiver, err: err}
}

// Error implements the standard error interface
func (e *SendError) Error() string {
	return fmt.Sprintf("send error: receiver=(%s): %v", e.receiver, e.err)
}

// Unwrap returns the cause
func (e *SendError) Unwrap() error {
	return e.err
}

// Is reports whether target is the send failure category
func (e *SendError) Is(target error) bool {
	return target == ErrSendFailure
}

// PanicError defines the panic error
// wrapping the underlying error
type PanicError struct {
	err error
}

// enforce compilation error
var _ error = (*PanicError)(nil)

// NewPanicError creates an instance of PanicError
func NewPanicError(err error) *PanicError {
	return &PanicError{err}
}

// Error implements the standard error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.err)
}

func (e *PanicError) Unwrap() error {
	return e.err
}

// AnyError defines the any error type
// this is used to represent any error when resolving a supervisor directive
type AnyError struct{}

// interface guard
var _ error = (*AnyError)(nil)

// Error implements error.
func (*AnyError) Error() string {
	return "*"
}
