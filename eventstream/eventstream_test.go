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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestStream(t *testing.T) {
	t.Run("With Subscription", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		broker := New[string]()

		cons := broker.AddSubscriber()
		require.NotNil(t, cons)
		require.True(t, cons.Active())
		require.NotEmpty(t, cons.ID())
		assert.Equal(t, 1, registered(broker))

		cons.Shutdown()
		assert.False(t, cons.Active())
		broker.Close()
		assert.Zero(t, registered(broker))
	})
	t.Run("With Publication in order", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		broker := New[int]()
		cons := broker.AddSubscriber()

		for i := range 10 {
			broker.Publish(i)
		}

		for i := range 10 {
			select {
			case event := <-cons.Events():
				require.Equal(t, i, event)
			case <-time.After(time.Second):
				t.Fatalf("event %d not received", i)
			}
		}
		broker.Close()
	})
	t.Run("With independent subscribers", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		broker := New[string]()
		slow := broker.AddSubscriber()
		fast := broker.AddSubscriber()

		broker.Publish("a")
		broker.Publish("b")

		// the fast consumer drains while the slow one never reads
		assert.Equal(t, "a", <-fast.Events())
		assert.Equal(t, "b", <-fast.Events())
		assert.True(t, slow.Active())
		broker.Close()
	})
	t.Run("With events published before subscription not delivered", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		broker := New[string]()
		broker.Publish("missed")
		cons := broker.AddSubscriber()
		broker.Publish("seen")
		assert.Equal(t, "seen", <-cons.Events())
		broker.Close()
	})
	t.Run("With closed subscriber pruned on next publish", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		broker := New[string]()
		closed := broker.AddSubscriber()
		open := broker.AddSubscriber()
		require.Equal(t, 2, registered(broker))

		closed.Shutdown()
		require.Equal(t, 2, registered(broker))

		broker.Publish("event")
		assert.Equal(t, 1, registered(broker))
		assert.Equal(t, "event", <-open.Events())

		_, ok := <-closed.Events()
		assert.False(t, ok)
		broker.Close()
	})
	t.Run("With Close shutting down every subscriber", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		broker := New[string]()
		first := broker.AddSubscriber()
		second := broker.AddSubscriber()
		broker.Close()

		assert.False(t, first.Active())
		assert.False(t, second.Active())
		assert.Zero(t, registered(broker))
		require.Eventually(t, func() bool {
			_, ok := <-first.Events()
			return !ok
		}, time.Second, 10*time.Millisecond)
	})
	t.Run("With several closed subscribers pruned on next publish", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		broker := New[int]()
		subscribers := make([]Subscriber[int], 6)
		for i := range subscribers {
			subscribers[i] = broker.AddSubscriber()
		}

		// first, middle and last positions, including adjacent ones
		for _, i := range []int{0, 2, 3, 5} {
			subscribers[i].Shutdown()
		}

		require.NotPanics(t, func() { broker.Publish(1) })
		broker.Publish(2)
		assert.Equal(t, 2, registered(broker))

		for _, i := range []int{1, 4} {
			assert.Equal(t, 1, <-subscribers[i].Events())
			assert.Equal(t, 2, <-subscribers[i].Events())
			select {
			case event := <-subscribers[i].Events():
				t.Fatalf("subscriber %d received %d more than once", i, event)
			case <-time.After(50 * time.Millisecond):
			}
		}
		broker.Close()
	})
	t.Run("With every subscriber closed", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		broker := New[int]()
		for range 3 {
			broker.AddSubscriber().Shutdown()
		}

		require.NotPanics(t, func() { broker.Publish(1) })
		assert.Zero(t, registered(broker))

		// the stream is still usable
		cons := broker.AddSubscriber()
		broker.Publish(2)
		assert.Equal(t, 2, <-cons.Events())
		broker.Close()
	})
}

func registered[T any](broker *Stream[T]) int {
	broker.mu.Lock()
	defer broker.mu.Unlock()
	return len(broker.subscribers)
}
