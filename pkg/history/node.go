package history

// Node is one point in a history chain.
// Nodes are only created by NewRoot and by applying an ordinary action.
type Node[S any] struct {
	previous *Node[S]
	current  S
	next     *Node[S]
}

// NewRoot creates the first node of a chain.
func NewRoot[S any](initial S) *Node[S] {
	return &Node[S]{current: initial}
}

// Previous returns the node before this one, or nil at the oldest point.
func (n *Node[S]) Previous() *Node[S] {
	return n.previous
}

// Current returns the state held by this node.
func (n *Node[S]) Current() S {
	return n.current
}

// Next returns the node after this one, or nil at the tip.
func (n *Node[S]) Next() *Node[S] {
	return n.next
}

// IsRoot reports whether there is nothing to undo.
func (n *Node[S]) IsRoot() bool {
	return n.previous == nil
}

// IsTip reports whether there is nothing to redo.
func (n *Node[S]) IsTip() bool {
	return n.next == nil
}
