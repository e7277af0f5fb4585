package binding

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/aretw0/rewind/internal/logging"
	"github.com/aretw0/rewind/pkg/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type action struct{ Type string }

func addOrSubtract(s int, a action) int {
	if a.Type == "add" {
		return s + 1
	}
	return s - 1
}

var (
	add  = history.Apply(action{Type: "add"})
	undo = history.Undo[action]()
	redo = history.Redo[action]()
)

func TestBinding_Scenario(t *testing.T) {
	b := New(addOrSubtract, 0)

	b.Dispatch(add)
	assert.Equal(t, 1, b.State())
	b.Dispatch(add)
	assert.Equal(t, 2, b.State())

	b.Dispatch(undo)
	assert.Equal(t, 1, b.State())
	next, ok := b.Peek().NextState()
	require.True(t, ok)
	assert.Equal(t, 2, next)

	b.Dispatch(undo)
	assert.Equal(t, 0, b.State())
	_, ok = b.Peek().PreviousState()
	assert.False(t, ok)

	b.Dispatch(redo)
	b.Dispatch(redo)
	assert.Equal(t, 2, b.State())

	b.Dispatch(redo)
	assert.Equal(t, 2, b.State())
	assert.False(t, b.Peek().HasNext())
	assert.True(t, b.Peek().HasPrevious())
}

func TestBinding_Use(t *testing.T) {
	b := New(addOrSubtract, 10)

	state, dispatch, peek := b.Use()
	assert.Equal(t, 10, state)
	assert.False(t, peek.HasPrevious())

	dispatch(history.Apply(action{Type: "subtract"}))
	state, _, peek = b.Use()
	assert.Equal(t, 9, state)
	prev, ok := peek.PreviousState()
	assert.True(t, ok)
	assert.Equal(t, 10, prev)
}

func TestBinding_Subscribe(t *testing.T) {
	b := New(addOrSubtract, 0)

	var got []int
	unsubscribe := b.Subscribe(func(s int) { got = append(got, s) })

	b.Dispatch(undo) // no-op at root
	b.Dispatch(add)
	b.Dispatch(undo)
	b.Dispatch(undo) // no-op again
	assert.Equal(t, []int{1, 0}, got)

	unsubscribe()
	b.Dispatch(add)
	assert.Equal(t, []int{1, 0}, got)
}

func TestBinding_SubscriberCanDispatch(t *testing.T) {
	b := New(addOrSubtract, 0)

	b.Subscribe(func(s int) {
		if s == 1 {
			b.Dispatch(add)
		}
	})

	b.Dispatch(add)
	assert.Equal(t, 2, b.State())
}

func TestBinding_ConcurrentDispatch(t *testing.T) {
	b := New(addOrSubtract, 0)

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			b.Dispatch(add)
		})
	}
	wg.Wait()

	assert.Equal(t, 50, b.State())
	assert.Equal(t, 51, history.Flatten(b.Node()).Len())
}

func TestBinding_Logger(t *testing.T) {
	t.Run("silent by default", func(t *testing.T) {
		b := New(addOrSubtract, 0)
		require.NotNil(t, b.logger)
		assert.False(t, b.logger.Enabled(context.Background(), slog.LevelError))
	})

	t.Run("traces dispatch kinds", func(t *testing.T) {
		var buf bytes.Buffer
		b := New(addOrSubtract, 0, WithLogger(logging.NewWithWriter(&buf, slog.LevelDebug)))
		b.Dispatch(add)
		b.Dispatch(redo)

		out := buf.String()
		assert.Contains(t, out, "kind=apply changed=true")
		assert.Contains(t, out, "kind=redo changed=false")
	})
}
