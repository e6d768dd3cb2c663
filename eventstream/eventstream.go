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

import "sync"

// Stream fans out published events to independent subscribers.
// Every subscriber owns its own unbounded queue so a slow consumer never
// blocks the publisher nor the other subscribers.
type Stream[T any] struct {
	mu          sync.Mutex
	subscribers map[string]*subscriber[T]
	// order keeps subscribers in registration order
	order []string
}

// New creates an instance of Stream.
func New[T any]() *Stream[T] {
	return &Stream[T]{
		subscribers: make(map[string]*subscriber[T]),
	}
}

// AddSubscriber registers a new subscriber. The subscriber receives every
// event published after this call returns.
func (b *Stream[T]) AddSubscriber() Subscriber[T] {
	sub := newSubscriber[T]()
	b.mu.Lock()
	b.subscribers[sub.ID()] = sub
	b.order = append(b.order, sub.ID())
	b.mu.Unlock()
	return sub
}

// Publish delivers the event to every active subscriber in registration order.
// Subscribers that have been shut down are pruned before delivery.
func (b *Stream[T]) Publish(event T) {
	for _, sub := range b.active() {
		sub.signal(event)
	}
}

// active prunes the subscribers shut down since the last publication and
// returns the remaining ones in registration order
func (b *Stream[T]) active() []*subscriber[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := make([]string, 0, len(b.order))
	subscribers := make([]*subscriber[T], 0, len(b.order))
	for _, id := range b.order {
		sub, ok := b.subscribers[id]
		if !ok {
			continue
		}
		if !sub.Active() {
			delete(b.subscribers, id)
			continue
		}
		kept = append(kept, id)
		subscribers = append(subscribers, sub)
	}
	b.order = kept
	return subscribers
}

// Close shuts down every subscriber and empties the stream.
func (b *Stream[T]) Close() {
	b.mu.Lock()
	for _, sub := range b.subscribers {
		sub.Shutdown()
	}
	b.subscribers = make(map[string]*subscriber[T])
	b.order = nil
	b.mu.Unlock()
}
