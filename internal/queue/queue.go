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

package queue

import "sync"

const minQueueLen = 16

// Queue is an unbounded FIFO ring buffer safe for concurrent use.
// It backs actor mailboxes and event stream subscribers.
type Queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	nodes  []*T
	head   int
	tail   int
	count  int
	closed bool
}

// New creates an empty Queue
func New[T any]() *Queue[T] {
	q := &Queue[T]{
		nodes: make([]*T, minQueueLen),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends an item at the back of the queue.
// It returns false when the queue is closed.
func (q *Queue[T]) Push(item T) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	if q.count == len(q.nodes) {
		q.resize()
	}
	q.nodes[q.tail] = &item
	// bitwise modulus
	q.tail = (q.tail + 1) & (len(q.nodes) - 1)
	q.count++
	q.cond.Signal()
	q.mu.Unlock()
	return true
}

// Close closes the queue and drops the pending items.
// Blocked Wait callers are released.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.count = 0
	q.head, q.tail = 0, 0
	q.nodes = nil
	q.cond.Broadcast()
	q.mu.Unlock()
}

// CloseRemaining closes the queue and returns the items that were still pending
func (q *Queue[T]) CloseRemaining() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return []T{}
	}
	remaining := make([]T, 0, q.count)
	for q.count > 0 {
		remaining = append(remaining, q.pop())
	}
	q.closed = true
	q.head, q.tail = 0, 0
	q.nodes = nil
	q.cond.Broadcast()
	return remaining
}

// Wait blocks until an item is available and removes it.
// It returns false once the queue is closed.
func (q *Queue[T]) Wait() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.count == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		var zero T
		return zero, false
	}
	return q.pop(), true
}

// pop must be called with the lock held and a non-empty queue
func (q *Queue[T]) pop() T {
	item := q.nodes[q.head]
	q.nodes[q.head] = nil
	// bitwise modulus
	q.head = (q.head + 1) & (len(q.nodes) - 1)
	q.count--
	// Resize down if buffer 1/4 full.
	if len(q.nodes) > minQueueLen && (q.count<<2) == len(q.nodes) {
		q.resize()
	}
	return *item
}

func (q *Queue[T]) resize() {
	nodes := make([]*T, q.count<<1)
	if q.tail > q.head {
		copy(nodes, q.nodes[q.head:q.tail])
	} else {
		n := copy(nodes, q.nodes[q.head:])
		copy(nodes[n:], q.nodes[:q.tail])
	}

	q.tail = q.count
	q.head = 0
	q.nodes = nodes
}
