package history

// Reducer computes the next state from the current one and an action.
// It must not mutate its input.
type Reducer[S, A any] func(S, A) S

// Transition moves from the active node to the next active node.
type Transition[S, A any] func(*Node[S], Action[A]) *Node[S]

// Undoable wraps f with undo/redo support.
//
// Undo and Redo only change which node is returned; they never touch the chain
// and never call f. Ordinary actions link a fresh node after active, replacing
// any forward history.
func Undoable[S, A any](f Reducer[S, A]) Transition[S, A] {
	return func(active *Node[S], action Action[A]) *Node[S] {
		switch action.kind {
		case KindUndo:
			if active.previous == nil {
				return active
			}
			return active.previous
		case KindRedo:
			if active.next == nil {
				return active
			}
			return active.next
		}

		n := &Node[S]{
			previous: active,
			current:  f(active.current, action.payload),
		}
		active.next = n
		return n
	}
}
