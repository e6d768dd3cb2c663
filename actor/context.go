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

package actor

import (
	"context"
	"time"

	"github.com/tochemey/sentinel/log"
)

// reply carries the answer of an Ask
type reply struct {
	message any
	err     error
}

// envelope is a mailbox entry
type envelope struct {
	ctx     context.Context
	message any
	sender  *PID
	// replyTo is set for Ask requests only
	replyTo chan reply
}

func newEnvelope(ctx context.Context, sender *PID, message any, ask bool) *envelope {
	env := &envelope{
		ctx:     context.WithoutCancel(ctx),
		message: message,
		sender:  sender,
	}
	if ask {
		env.replyTo = make(chan reply, 1)
	}
	return env
}

// respond delivers the answer at most once
func (env *envelope) respond(message any, err error) {
	if env.replyTo == nil {
		return
	}
	select {
	case env.replyTo <- reply{message: message, err: err}:
	default:
	}
}

// ReceiveContext is the context handed to Actor.Receive for a single message.
// It must not be retained after Receive returns.
type ReceiveContext struct {
	envelope *envelope
	self     *PID
	err      error
	stop     bool
}

func newReceiveContext(self *PID, env *envelope) *ReceiveContext {
	return &ReceiveContext{envelope: env, self: self}
}

// Context returns the context attached to the message
func (rctx *ReceiveContext) Context() context.Context {
	return rctx.envelope.ctx
}

// Message returns the message being handled
func (rctx *ReceiveContext) Message() any {
	return rctx.envelope.message
}

// Sender returns the sender of the message. It is nil when the message
// has been sent from outside any actor.
func (rctx *ReceiveContext) Sender() *PID {
	return rctx.envelope.sender
}

// Self returns the PID of the actor handling the message
func (rctx *ReceiveContext) Self() *PID {
	return rctx.self
}

// Logger returns the actor's logger
func (rctx *ReceiveContext) Logger() log.Logger {
	return rctx.self.Logger()
}

// Response answers an Ask. It is a no-op for messages sent with Tell.
func (rctx *ReceiveContext) Response(message any) {
	rctx.envelope.respond(message, nil)
}

// Err reports a failure. The actor terminates with a Failure reason once
// Receive returns and a pending Ask is answered with the error.
func (rctx *ReceiveContext) Err(err error) {
	rctx.err = err
}

// Stop terminates the actor normally once Receive returns
func (rctx *ReceiveContext) Stop() {
	rctx.stop = true
}

// Tell sends an asynchronous message to another actor with the current actor as sender
func (rctx *ReceiveContext) Tell(to *PID, message any) error {
	return rctx.self.Tell(rctx.Context(), to, message)
}

// Ask sends a synchronous message to another actor with the current actor as sender
func (rctx *ReceiveContext) Ask(to *PID, message any, timeout time.Duration) (any, error) {
	return rctx.self.Ask(rctx.Context(), to, message, timeout)
}
