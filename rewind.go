package rewind

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/rewind/internal/logging"
	"github.com/aretw0/rewind/pkg/domain"
	"github.com/aretw0/rewind/pkg/history"
	"github.com/aretw0/rewind/pkg/reducers"
	"github.com/aretw0/rewind/pkg/registry"
	"github.com/aretw0/rewind/pkg/schema"
)

// Engine is the high-level entry point for the Rewind library.
// It is stateless: every call takes a session and returns a new one, so the
// same Engine can serve any number of sessions concurrently.
type Engine struct {
	registry   *registry.Registry
	sliceNames []string
	maxEntries int
	fields     schema.Schema
	hooks      domain.LifecycleHooks
	logger     *slog.Logger

	slices  map[string]registry.SliceReducer
	reducer history.Reducer[history.State, domain.Action]
	step    history.Transition[history.State, domain.Action]
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRegistry replaces the built-in slice registry.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithSlices restricts the document to the named slices (default: every registered slice).
func WithSlices(names ...string) Option {
	return func(e *Engine) {
		e.sliceNames = names
	}
}

// WithMaxEntries bounds the number of documents kept per session.
// Zero or less keeps the whole history.
func WithMaxEntries(n int) Option {
	return func(e *Engine) {
		e.maxEntries = n
	}
}

// WithFieldSchema types the values of the fields slice. Actions that would
// store a mistyped value are rejected with domain.ErrInvalidAction.
func WithFieldSchema(s schema.Schema) Option {
	return func(e *Engine) {
		e.fields = s
	}
}

// New initializes a new Engine.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.registry == nil {
		eng.registry = reducers.Default()
	}

	slices, err := eng.registry.Select(eng.sliceNames...)
	if err != nil {
		return nil, fmt.Errorf("failed to select slices: %w", err)
	}
	if len(slices) == 0 {
		return nil, fmt.Errorf("no slices registered")
	}

	eng.slices = slices
	eng.reducer = history.Combine(slices)
	eng.step = history.Undoable(eng.reducer)
	return eng, nil
}

// Slices returns the names of the slices making up every document.
func (e *Engine) Slices() []string {
	if len(e.sliceNames) > 0 {
		return append([]string(nil), e.sliceNames...)
	}
	return e.registry.Names()
}

// Seed builds the first document of a session. Keys that are not slices are
// dropped and missing slices take their zero state.
func (e *Engine) Seed(initial domain.Document) domain.Document {
	return e.reducer(history.Seed(e.slices, initial), domain.NewAction(domain.ActionInit, nil))
}

// Validate checks a document against the field schema.
func (e *Engine) Validate(doc domain.Document) error {
	fields, _ := doc[reducers.SliceFields].(map[string]any)
	if err := e.fields.Check(fields); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidAction, err)
	}
	return nil
}

// Start creates a new session whose history holds only the seeded initial document.
func (e *Engine) Start(ctx context.Context, sessionID string, initial domain.Document) *domain.Session {
	sess := domain.NewSession(sessionID, e.Seed(initial))
	e.logger.DebugContext(ctx, "session started", "session_id", sessionID)
	return sess
}

// Dispatch applies an action to the session and returns the updated session.
// The input session is not modified. Undo at the oldest document and redo at
// the newest return an unchanged copy.
func (e *Engine) Dispatch(ctx context.Context, sess *domain.Session, action domain.Action) (*domain.Session, error) {
	out, _, err := e.dispatch(ctx, sess, action)
	return out, err
}

// dispatch is Dispatch that also reports whether the history moved.
func (e *Engine) dispatch(ctx context.Context, sess *domain.Session, action domain.Action) (*domain.Session, bool, error) {
	switch action.Type {
	case "":
		return nil, false, fmt.Errorf("%w: type cannot be empty", domain.ErrInvalidAction)
	case domain.ActionInit:
		return nil, false, fmt.Errorf("%w: %s is reserved", domain.ErrInvalidAction, domain.ActionInit)
	}

	active, err := sess.Timeline.Restore()
	if err != nil {
		return nil, false, fmt.Errorf("session %s: %w", sess.ID, err)
	}

	control := action.Control()
	next := e.step(active, control)

	noop := next == active
	if !noop && control.Kind() == history.KindApply {
		if err := e.Validate(next.Current()); err != nil {
			return nil, false, err
		}
	}

	out := sess.Snapshot()
	if !noop {
		out.Timeline = history.Flatten(next).Bound(e.maxEntries)
		out.UpdatedAt = time.Now().UTC()
	}

	e.fire(ctx, out, control.Kind(), action.Type, noop)
	return out, !noop, nil
}

// View derives what clients see of a session.
func (e *Engine) View(sess *domain.Session) domain.View {
	return domain.NewView(sess)
}

func (e *Engine) fire(ctx context.Context, sess *domain.Session, kind history.Kind, actionType string, noop bool) {
	evt := &domain.HistoryEvent{
		Timestamp:  time.Now().UTC(),
		SessionID:  sess.ID,
		Kind:       kind,
		ActionType: actionType,
		Cursor:     sess.Timeline.Cursor,
		Length:     sess.Timeline.Len(),
	}

	switch {
	case noop:
		evt.Type = domain.EventNoop
	case kind == history.KindUndo:
		evt.Type = domain.EventUndo
	case kind == history.KindRedo:
		evt.Type = domain.EventRedo
	default:
		evt.Type = domain.EventDispatch
	}

	e.logger.DebugContext(ctx, "history step",
		"session_id", sess.ID,
		"event", evt.Type,
		"action", actionType,
		"cursor", evt.Cursor,
		"length", evt.Length,
	)
	e.hooks.Fire(ctx, evt)
}
