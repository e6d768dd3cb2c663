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

package tree

// NodeType governs how the failure of a child ripples to its siblings
type NodeType int

const (
	// OneForOne recreates only the failed child
	OneForOne NodeType = iota
	// OneForAll recreates every child of the node, in insertion order
	OneForAll
	// RestForOne recreates the failed child and every child added after it.
	// Children added before it are left untouched.
	RestForOne
)

// String returns the string representation of the node type
func (t NodeType) String() string {
	switch t {
	case OneForOne:
		return "OneForOne"
	case OneForAll:
		return "OneForAll"
	case RestForOne:
		return "RestForOne"
	default:
		return ""
	}
}

// targets returns the positions of the children to recreate when the child at
// the given position failed, out of count children
func (t NodeType) targets(position, count int) []int {
	var start, end int
	switch t {
	case OneForAll:
		start, end = 0, count
	case RestForOne:
		start, end = position, count
	default:
		start, end = position, position+1
	}

	positions := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		positions = append(positions, i)
	}
	return positions
}
