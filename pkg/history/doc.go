/*
Package history adds linear undo/redo to any reducer.

A reducer is a pure transition function `func(S, A) S`. Undoable wraps it into a
Transition that operates on a chain of Nodes instead of bare states:

	add := func(n int, a string) int {
		if a == "add" {
			return n + 1
		}
		return n - 1
	}

	step := history.Undoable(add)
	root := history.NewRoot(0)

	one := step(root, history.Apply("add"))  // 1
	back := step(one, history.Undo[string]()) // root again
	_ = step(back, history.Redo[string]())    // one again

# Semantics

  - Undo moves to the previous node, Redo to the next one. Both are no-ops at the
    edges of the chain and return the very same node.
  - Applying an ordinary action appends a new node after the active one and drops
    whatever forward history existed (standard editor semantics).
  - The wrapped reducer never sees Undo or Redo.

Combine fans a single action out to several named sub-reducers, each owning one
slice of a composite State. Timeline flattens a chain into an index-addressed
slice for persistence and rebuilds it with Restore.
*/
package history
