package rewind_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/rewind"
	"github.com/aretw0/rewind/pkg/domain"
	"github.com/aretw0/rewind/pkg/history"
	"github.com/aretw0/rewind/pkg/registry"
	"github.com/aretw0/rewind/pkg/schema"
)

func add(n int) domain.Action {
	return domain.NewAction(domain.ActionAdd, map[string]any{"amount": n})
}

var (
	undo = domain.NewAction(domain.ActionUndo, nil)
	redo = domain.NewAction(domain.ActionRedo, nil)
)

func dispatchAll(t *testing.T, eng *rewind.Engine, sess *domain.Session, actions ...domain.Action) *domain.Session {
	t.Helper()
	for _, a := range actions {
		var err error
		sess, err = eng.Dispatch(context.Background(), sess, a)
		require.NoError(t, err)
	}
	return sess
}

func TestEngine_Start(t *testing.T) {
	eng, err := rewind.New()
	require.NoError(t, err)

	sess := eng.Start(context.Background(), "s1", domain.Document{"counter": 7, "unknown": true})

	assert.Equal(t, "s1", sess.ID)
	assert.Equal(t, 1, sess.Timeline.Len())
	doc := sess.Active()
	assert.Equal(t, 7, doc["counter"])
	assert.Equal(t, map[string]any{}, doc["fields"])
	assert.Equal(t, []string{}, doc["notes"])
	assert.NotContains(t, doc, "unknown", "keys outside the slices are dropped")
	assert.ElementsMatch(t, []string{"counter", "fields", "notes"}, eng.Slices())
}

func TestEngine_UndoRedo(t *testing.T) {
	eng, err := rewind.New(rewind.WithSlices("counter"))
	require.NoError(t, err)
	start := eng.Start(context.Background(), "s", nil)

	t.Run("apply appends and moves the cursor", func(t *testing.T) {
		sess := dispatchAll(t, eng, start, add(1), add(2))
		assert.Equal(t, 3, sess.Active()["counter"])
		assert.Equal(t, 2, sess.Timeline.Cursor)
		assert.Equal(t, 1, start.Timeline.Len(), "input session must not change")
	})

	t.Run("undo then redo returns to the same document", func(t *testing.T) {
		sess := dispatchAll(t, eng, start, add(1), add(2), undo)
		assert.Equal(t, 1, sess.Active()["counter"])
		assert.True(t, eng.View(sess).CanRedo)

		sess = dispatchAll(t, eng, sess, redo)
		assert.Equal(t, 3, sess.Active()["counter"])
		assert.False(t, eng.View(sess).CanRedo)
	})

	t.Run("apply after undo prunes the redo branch", func(t *testing.T) {
		sess := dispatchAll(t, eng, start, add(1), add(2), undo, add(10))
		assert.Equal(t, 11, sess.Active()["counter"])
		assert.Equal(t, 3, sess.Timeline.Len())
		assert.False(t, sess.Timeline.CanRedo())
	})

	t.Run("undo at root and redo at tip are no-ops", func(t *testing.T) {
		sess := dispatchAll(t, eng, start, undo)
		assert.Equal(t, start.Timeline, sess.Timeline)
		assert.Equal(t, start.UpdatedAt, sess.UpdatedAt)

		tip := dispatchAll(t, eng, start, add(1))
		again := dispatchAll(t, eng, tip, redo)
		assert.Equal(t, tip.Timeline, again.Timeline)
	})
}

func TestEngine_Dispatch_Errors(t *testing.T) {
	eng, err := rewind.New()
	require.NoError(t, err)
	ctx := context.Background()

	_, err = eng.Dispatch(ctx, eng.Start(ctx, "s", nil), domain.Action{})
	assert.ErrorIs(t, err, domain.ErrInvalidAction)
	assert.EqualError(t, err, "invalid action: type cannot be empty")

	t.Run("init is reserved", func(t *testing.T) {
		sess := eng.Start(ctx, "s", nil)
		out, err := eng.Dispatch(ctx, sess, domain.NewAction(domain.ActionInit, nil))
		assert.ErrorIs(t, err, domain.ErrInvalidAction)
		assert.Nil(t, out)
		assert.Equal(t, 1, sess.Timeline.Len())
	})

	broken := eng.Start(ctx, "s", nil)
	broken.Timeline.Cursor = 5
	_, err = eng.Dispatch(ctx, broken, add(1))
	assert.ErrorIs(t, err, history.ErrInvalidTimeline)
}

func TestEngine_MaxEntries(t *testing.T) {
	eng, err := rewind.New(rewind.WithSlices("counter"), rewind.WithMaxEntries(3))
	require.NoError(t, err)

	sess := dispatchAll(t, eng, eng.Start(context.Background(), "s", nil), add(1), add(1), add(1), add(1))
	assert.Equal(t, 3, sess.Timeline.Len())
	assert.Equal(t, 4, sess.Active()["counter"])
	assert.Equal(t, 2, sess.Timeline.Cursor)

	sess = dispatchAll(t, eng, sess, undo, undo, undo)
	assert.Equal(t, 2, sess.Active()["counter"], "oldest documents are dropped")
	assert.False(t, sess.Timeline.CanUndo())
}

func TestEngine_Hooks(t *testing.T) {
	var events []domain.EventType
	record := func(_ context.Context, e *domain.HistoryEvent) { events = append(events, e.Type) }

	eng, err := rewind.New(
		rewind.WithSlices("counter"),
		rewind.WithLifecycleHooks(domain.LifecycleHooks{
			OnDispatch: record,
			OnUndo:     record,
			OnRedo:     record,
			OnNoop:     record,
		}),
	)
	require.NoError(t, err)

	dispatchAll(t, eng, eng.Start(context.Background(), "s", nil), undo, add(1), undo, redo, redo)
	assert.Equal(t, []domain.EventType{
		domain.EventNoop,
		domain.EventDispatch,
		domain.EventUndo,
		domain.EventRedo,
		domain.EventNoop,
	}, events)
}

func TestEngine_Options(t *testing.T) {
	t.Run("unknown slice", func(t *testing.T) {
		_, err := rewind.New(rewind.WithSlices("missing"))
		assert.ErrorContains(t, err, "slice not found: missing")
	})

	t.Run("empty registry", func(t *testing.T) {
		_, err := rewind.New(rewind.WithRegistry(registry.NewRegistry()))
		assert.Error(t, err)
	})

	t.Run("custom registry", func(t *testing.T) {
		r := registry.NewRegistry()
		r.Register("last", history.Slice(func(s string, a domain.Action) string { return a.Type }))
		eng, err := rewind.New(rewind.WithRegistry(r))
		require.NoError(t, err)

		sess := dispatchAll(t, eng, eng.Start(context.Background(), "s", nil), domain.NewAction("ping", nil))
		assert.Equal(t, "ping", sess.Active()["last"])
	})
}

func TestEngine_FieldSchema(t *testing.T) {
	types, err := schema.Parse(map[string]string{"title": "string", "pages": "int"})
	require.NoError(t, err)

	eng, err := rewind.New(rewind.WithSlices("fields"), rewind.WithFieldSchema(types))
	require.NoError(t, err)

	set := func(key string, value any) domain.Action {
		return domain.NewAction(domain.ActionSet, map[string]any{"key": key, "value": value})
	}

	ctx := context.Background()
	sess := dispatchAll(t, eng, eng.Start(ctx, "s", nil), set("title", "Draft"), set("pages", 3), set("extra", true))
	assert.Equal(t, 4, sess.Timeline.Len())

	_, err = eng.Dispatch(ctx, sess, set("pages", "three"))
	require.ErrorIs(t, err, domain.ErrInvalidAction)
	assert.ErrorContains(t, err, `field "pages": expected int`)

	// Moving through history is not checked again.
	sess = dispatchAll(t, eng, sess, undo, redo)
	assert.Equal(t, 4, sess.Timeline.Len())

	assert.ErrorIs(t, eng.Validate(domain.Document{"fields": map[string]any{"title": 1}}), domain.ErrInvalidAction)
	assert.NoError(t, eng.Validate(domain.Document{}))
}
