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

package xsync

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	t.Run("With SetIfAbsent/Get/Delete", func(t *testing.T) {
		m := NewMap[string, int]()
		assert.True(t, m.SetIfAbsent("a", 1))
		assert.False(t, m.SetIfAbsent("a", 2))

		value, ok := m.Get("a")
		require.True(t, ok)
		assert.Equal(t, 1, value)

		m.Delete("a")
		_, ok = m.Get("a")
		assert.False(t, ok)
		m.Delete("a")
		assert.True(t, m.SetIfAbsent("a", 3))
	})
	t.Run("With Values/Reset", func(t *testing.T) {
		m := NewMap[string, int]()
		m.SetIfAbsent("a", 1)
		m.SetIfAbsent("b", 2)
		assert.ElementsMatch(t, []int{1, 2}, m.Values())

		m.Reset()
		assert.Empty(t, m.Values())
		_, ok := m.Get("a")
		assert.False(t, ok)
	})
	t.Run("With concurrent writers", func(t *testing.T) {
		m := NewMap[int, int]()
		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				m.SetIfAbsent(i%10, i)
			}()
		}
		wg.Wait()
		assert.Len(t, m.Values(), 10)
	})
}
