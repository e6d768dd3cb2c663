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

import "fmt"

// ReasonKind classifies why an actor stopped
type ReasonKind int

const (
	// ReasonNormal is a voluntary or graceful stop
	ReasonNormal ReasonKind = iota
	// ReasonKilled is a forced termination
	ReasonKilled
	// ReasonFailure is a failure reported by the actor through ReceiveContext.Err
	ReasonFailure
	// ReasonPanic is a panic recovered while the actor was handling a message
	ReasonPanic
)

// String returns the string representation of the kind
func (k ReasonKind) String() string {
	switch k {
	case ReasonNormal:
		return "normal"
	case ReasonKilled:
		return "killed"
	case ReasonFailure:
		return "failure"
	case ReasonPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// StopReason describes why an actor incarnation stopped.
type StopReason struct {
	Kind ReasonKind
	Err  error
}

// NormalReason returns the reason of a normal stop
func NormalReason() StopReason {
	return StopReason{Kind: ReasonNormal}
}

// KilledReason returns the reason of a forced termination
func KilledReason() StopReason {
	return StopReason{Kind: ReasonKilled}
}

// FailureReason returns the reason of a failed actor
func FailureReason(err error) StopReason {
	return StopReason{Kind: ReasonFailure, Err: err}
}

// PanicReason returns the reason of an actor that panicked
func PanicReason(err error) StopReason {
	return StopReason{Kind: ReasonPanic, Err: err}
}

// IsNormal reports whether the stop was a normal one
func (r StopReason) IsNormal() bool {
	return r.Kind == ReasonNormal
}

// String returns the string representation of the reason
func (r StopReason) String() string {
	if r.Err == nil {
		return r.Kind.String()
	}
	return fmt.Sprintf("%s: %v", r.Kind, r.Err)
}
