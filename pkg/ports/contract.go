package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/rewind/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		session := domain.NewSession(sessionID, domain.Document{"counter": 0})
		session.Timeline.States = append(session.Timeline.States,
			domain.Document{"counter": 1, "notes": []any{"hello"}},
		)
		session.Timeline.Cursor = 1

		err := store.Save(ctx, sessionID, session)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sessionID, loaded.ID)
		assert.Equal(t, 1, loaded.Timeline.Cursor)
		require.Len(t, loaded.Timeline.States, 2)
		// JSON persistence turns numbers into float64; only check presence and shape.
		assert.NotNil(t, loaded.Timeline.States[1]["counter"])
		assert.Equal(t, []any{"hello"}, loaded.Timeline.States[1]["notes"])
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Timeline.States = nil

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Len(t, again.Timeline.States, 2)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewSession(sessionID, domain.Document{}))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "Deleting twice should not fail")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewSession(id1, domain.Document{}))
		_ = store.Save(ctx, id2, domain.NewSession(id2, domain.Document{}))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})

	t.Run("List keeps IDs that look like temp files", func(t *testing.T) {
		id := "tmp-report"
		require.NoError(t, store.Save(ctx, id, domain.NewSession(id, domain.Document{})))
		defer func() { _ = store.Delete(ctx, id) }()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id)
	})
}
