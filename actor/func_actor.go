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
)

// ReceiveFunc is a message handling placeholder
type ReceiveFunc = func(ctx *ReceiveContext)

// PreStartFunc defines the PreStartFunc hook for an actor creation
type PreStartFunc = func(ctx context.Context) error

// PostStopFunc defines the PostStopFunc hook for an actor creation
type PostStopFunc = func(ctx context.Context) error

// FuncOption is the interface that applies a FuncActor option.
type FuncOption interface {
	// Apply sets the Option value of a config.
	Apply(actor *FuncActor)
}

var _ FuncOption = funcOption(nil)

// funcOption implements the FuncOption interface.
type funcOption func(actor *FuncActor)

// Apply implementation
func (f funcOption) Apply(c *FuncActor) {
	f(c)
}

// WithPreStart defines the PreStartFunc hook
func WithPreStart(fn PreStartFunc) FuncOption {
	return funcOption(func(actor *FuncActor) {
		actor.preStart = fn
	})
}

// WithPostStop defines the PostStopFunc hook
func WithPostStop(fn PostStopFunc) FuncOption {
	return funcOption(func(actor *FuncActor) {
		actor.postStop = fn
	})
}

// FuncActor is an actor built from functions
type FuncActor struct {
	receive  ReceiveFunc
	preStart PreStartFunc
	postStop PostStopFunc
}

var _ Actor = (*FuncActor)(nil)

// NewFuncActor creates an actor that handles its messages with the given function
func NewFuncActor(receive ReceiveFunc, opts ...FuncOption) *FuncActor {
	actor := &FuncActor{receive: receive}
	for _, opt := range opts {
		opt.Apply(actor)
	}
	return actor
}

func (x *FuncActor) PreStart(ctx context.Context) error {
	if x.preStart != nil {
		return x.preStart(ctx)
	}
	return nil
}

func (x *FuncActor) Receive(ctx *ReceiveContext) {
	x.receive(ctx)
}

func (x *FuncActor) PostStop(ctx context.Context) error {
	if x.postStop != nil {
		return x.postStop(ctx)
	}
	return nil
}
