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

package eventstream

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/tochemey/sentinel/internal/queue"
)

// Subscriber receives the events published on a Stream.
//
// The unexported method prevents external implementations.
// Subscribers are created by a Stream via AddSubscriber().
type Subscriber[T any] interface {
	// ID returns the subscriber unique identifier
	ID() string
	// Active reports whether the subscriber still accepts events
	Active() bool
	// Events returns the channel on which events are delivered in publication order.
	// The channel is closed once the subscriber is shut down.
	Events() <-chan T
	// Shutdown closes the subscriber. Pending events are dropped.
	Shutdown()

	signal(event T) bool
}

type subscriber[T any] struct {
	id       string
	messages *queue.Queue[T]
	events   chan T
	done     chan struct{}
	active   *atomic.Bool
	once     sync.Once
}

var _ Subscriber[any] = (*subscriber[any])(nil)

func newSubscriber[T any]() *subscriber[T] {
	s := &subscriber[T]{
		id:       uuid.NewString(),
		messages: queue.New[T](),
		events:   make(chan T),
		done:     make(chan struct{}),
		active:   atomic.NewBool(true),
	}
	go s.pump()
	return s
}

func (s *subscriber[T]) ID() string {
	return s.id
}

func (s *subscriber[T]) Active() bool {
	return s.active.Load()
}

func (s *subscriber[T]) Events() <-chan T {
	return s.events
}

func (s *subscriber[T]) Shutdown() {
	s.once.Do(func() {
		s.active.Store(false)
		s.messages.Close()
		close(s.done)
	})
}

func (s *subscriber[T]) signal(event T) bool {
	// only receive message when active
	if !s.active.Load() {
		return false
	}
	return s.messages.Push(event)
}

// pump moves queued events to the events channel until shutdown
func (s *subscriber[T]) pump() {
	defer close(s.events)
	for {
		event, ok := s.messages.Wait()
		if !ok {
			return
		}
		select {
		case s.events <- event:
		case <-s.done:
			return
		}
	}
}
