// Package binding holds the active node of an undoable history on behalf of a
// caller, the way a UI state hook would.
package binding

import (
	"log/slog"
	"sync"

	"github.com/aretw0/rewind/internal/logging"
	"github.com/aretw0/rewind/pkg/history"
)

// Peek exposes the neighbours of the active state without moving to them.
type Peek[S any] struct {
	previous    S
	next        S
	hasPrevious bool
	hasNext     bool
}

// PreviousState returns the state an Undo would move to.
func (p Peek[S]) PreviousState() (S, bool) {
	return p.previous, p.hasPrevious
}

// NextState returns the state a Redo would move to.
func (p Peek[S]) NextState() (S, bool) {
	return p.next, p.hasNext
}

// HasPrevious reports whether Undo would change the active state.
func (p Peek[S]) HasPrevious() bool { return p.hasPrevious }

// HasNext reports whether Redo would change the active state.
func (p Peek[S]) HasNext() bool { return p.hasNext }

func peekAt[S any](n *history.Node[S]) Peek[S] {
	var p Peek[S]
	if prev := n.Previous(); prev != nil {
		p.previous, p.hasPrevious = prev.Current(), true
	}
	if next := n.Next(); next != nil {
		p.next, p.hasNext = next.Current(), true
	}
	return p
}

type listener[S any] struct {
	fn func(S)
}

// Binding owns the active node and serialises dispatches to it.
// Safe for concurrent use.
type Binding[S, A any] struct {
	mu        sync.Mutex
	active    *history.Node[S]
	step      history.Transition[S, A]
	listeners []*listener[S]
	logger    *slog.Logger
}

// Option configures a Binding.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger traces dispatches at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New starts a history at initial and binds it to reducer.
func New[S, A any](reducer history.Reducer[S, A], initial S, opts ...Option) *Binding[S, A] {
	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	return &Binding[S, A]{
		active: history.NewRoot(initial),
		step:   history.Undoable(reducer),
		logger: o.logger,
	}
}

// State returns the active state.
func (b *Binding[S, A]) State() S {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active.Current()
}

// Node returns the active node.
func (b *Binding[S, A]) Node() *history.Node[S] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// Peek returns the states around the active one.
func (b *Binding[S, A]) Peek() Peek[S] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return peekAt(b.active)
}

// Dispatch applies an action. Subscribers are notified when the active node
// changed, after the lock is released.
func (b *Binding[S, A]) Dispatch(action history.Action[A]) {
	b.mu.Lock()
	prev := b.active
	b.active = b.step(prev, action)
	changed := b.active != prev
	state := b.active.Current()
	listeners := append([]*listener[S](nil), b.listeners...)
	b.mu.Unlock()

	b.logger.Debug("dispatch", "kind", action.Kind().String(), "changed", changed)

	if !changed {
		return
	}
	for _, l := range listeners {
		l.fn(state)
	}
}

// Use returns the active state, a dispatch function and the peek, mirroring
// the shape UI code expects from a state hook.
func (b *Binding[S, A]) Use() (S, func(history.Action[A]), Peek[S]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active.Current(), b.Dispatch, peekAt(b.active)
}

// Subscribe registers fn to run with the new state after every effective
// dispatch. The returned function removes it.
func (b *Binding[S, A]) Subscribe(fn func(S)) func() {
	l := &listener[S]{fn: fn}

	b.mu.Lock()
	b.listeners = append(b.listeners, l)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, cur := range b.listeners {
			if cur == l {
				b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
				return
			}
		}
	}
}
