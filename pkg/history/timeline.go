package history

import (
	"errors"
	"fmt"
)

// ErrInvalidTimeline is returned when a Timeline cannot be turned back into a chain.
var ErrInvalidTimeline = errors.New("invalid timeline")

// Timeline is the index-addressed form of a chain: every state reachable from
// the active node, oldest first, and the position of the active one.
type Timeline[S any] struct {
	States []S `json:"states"`
	Cursor int `json:"cursor"`
}

// Flatten walks the chain around active and returns it as a Timeline.
func Flatten[S any](active *Node[S]) Timeline[S] {
	root := active
	cursor := 0
	for root.previous != nil {
		root = root.previous
		cursor++
	}

	var states []S
	for n := root; n != nil; n = n.next {
		states = append(states, n.current)
	}

	return Timeline[S]{States: states, Cursor: cursor}
}

// Restore rebuilds the chain and returns its active node.
func (t Timeline[S]) Restore() (*Node[S], error) {
	if len(t.States) == 0 {
		return nil, fmt.Errorf("%w: no states", ErrInvalidTimeline)
	}
	if t.Cursor < 0 || t.Cursor >= len(t.States) {
		return nil, fmt.Errorf("%w: cursor %d out of range [0,%d)", ErrInvalidTimeline, t.Cursor, len(t.States))
	}

	nodes := make([]*Node[S], len(t.States))
	for i, s := range t.States {
		nodes[i] = &Node[S]{current: s}
		if i > 0 {
			nodes[i].previous = nodes[i-1]
			nodes[i-1].next = nodes[i]
		}
	}

	return nodes[t.Cursor], nil
}

// Len returns the number of states in the timeline.
func (t Timeline[S]) Len() int {
	return len(t.States)
}

// CanUndo reports whether the active state has a predecessor.
func (t Timeline[S]) CanUndo() bool {
	return t.Cursor > 0
}

// CanRedo reports whether the active state has a successor.
func (t Timeline[S]) CanRedo() bool {
	return t.Cursor < len(t.States)-1
}

// Bound keeps at most max states, dropping the oldest ones first.
// If the active state itself would be dropped, the cursor moves to the oldest
// retained state. A max of zero or less leaves the timeline untouched.
func (t Timeline[S]) Bound(max int) Timeline[S] {
	if max <= 0 || len(t.States) <= max {
		return t
	}

	excess := len(t.States) - max
	states := make([]S, max)
	copy(states, t.States[excess:])

	cursor := t.Cursor - excess
	if cursor < 0 {
		cursor = 0
	}

	return Timeline[S]{States: states, Cursor: cursor}
}
