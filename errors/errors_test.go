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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	t.Run("With spawn error", func(t *testing.T) {
		cause := errors.New("preStart failed")
		err := NewSpawnError("root/workers/x", cause)
		require.EqualError(t, err, "spawn error: name=(root/workers/x): preStart failed")
		assert.ErrorIs(t, err, ErrSpawnFailure)
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, ErrLinkFailure)
	})
	t.Run("With link error", func(t *testing.T) {
		err := NewLinkError("abc", ErrDead)
		require.EqualError(t, err, "link error: actor=(abc): actor is not alive")
		assert.ErrorIs(t, err, ErrLinkFailure)
		assert.ErrorIs(t, err, ErrDead)
		assert.NotErrorIs(t, err, ErrSendFailure)
	})
	t.Run("With send error", func(t *testing.T) {
		err := NewSendError("root", ErrRequestTimeout)
		require.EqualError(t, err, "send error: receiver=(root): request timed out")
		assert.ErrorIs(t, err, ErrSendFailure)
		assert.ErrorIs(t, err, ErrRequestTimeout)
		assert.NotErrorIs(t, err, ErrSpawnFailure)
	})
	t.Run("With typed errors behind a wrap", func(t *testing.T) {
		err := errors.Join(errors.New("context"), NewSendError("root", ErrDead))
		var sendErr *SendError
		require.ErrorAs(t, err, &sendErr)
		assert.ErrorIs(t, err, ErrSendFailure)
	})
	t.Run("With not found errors", func(t *testing.T) {
		assert.ErrorIs(t, NewErrActorNotFound("abc"), ErrActorNotFound)
		assert.EqualError(t, NewErrActorNotFound("abc"), "(actor=abc) actor not found")
		assert.ErrorIs(t, NewErrChildNotFound("b"), ErrChildNotFound)
		assert.ErrorIs(t, NewErrActorAlreadyExists("x"), ErrActorAlreadyExists)
		assert.ErrorIs(t, NewErrChildAlreadyExists("x"), ErrChildAlreadyExists)
	})
	t.Run("With panic error", func(t *testing.T) {
		cause := errors.New("nil map")
		err := NewPanicError(cause)
		require.EqualError(t, err, "panic: nil map")
		assert.ErrorIs(t, err, cause)
	})

	anyError := &AnyError{}
	require.Equal(t, "*", anyError.Error())
}
