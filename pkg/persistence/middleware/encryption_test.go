package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/rewind/pkg/domain"
	"github.com/aretw0/rewind/pkg/persistence/middleware"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func secretSession(id string) *domain.Session {
	sess := domain.NewSession(id, domain.Document{"fields": map[string]any{}})
	sess.Timeline.States = append(sess.Timeline.States, domain.Document{
		"fields": map[string]any{"secret": "my-secret-sauce"},
	})
	sess.Timeline.Cursor = 1
	return sess
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := NewMockStore()
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)

	ctx := context.Background()
	original := secretSession("test-session")
	require.NoError(t, secure.Save(ctx, original.ID, original))

	stored, err := underlying.Load(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, original.ID, stored.ID)
	assert.Equal(t, 1, stored.Timeline.Len(), "envelope must hide the history length")
	assert.Contains(t, stored.Active(), middleware.EnvelopeKey)
	assert.NotContains(t, stored.Active(), "fields")

	loaded, err := secure.Load(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Timeline.Cursor)
	require.Equal(t, 2, loaded.Timeline.Len())
	fields := loaded.Active()["fields"].(map[string]any)
	assert.Equal(t, "my-secret-sauce", fields["secret"])
	assert.True(t, original.CreatedAt.Equal(loaded.CreatedAt))
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := NewMockStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	oldStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	original := secretSession("rotation-session")
	require.NoError(t, oldStore.Save(ctx, original.ID, original))

	t.Run("fallback key decrypts", func(t *testing.T) {
		rotated := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    newKey,
			FallbackKeys: [][]byte{oldKey},
		})(underlying)
		loaded, err := rotated.Load(ctx, original.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.Timeline.Len())
	})

	t.Run("unknown key fails", func(t *testing.T) {
		stranger := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: newKey})(underlying)
		_, err := stranger.Load(ctx, original.ID)
		assert.Error(t, err)
	})
}

func TestEncryptionMiddleware_RejectsPlainSession(t *testing.T) {
	underlying := NewMockStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "plain", secretSession("plain")))

	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secure.Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrMissingEnvelope)
}

func TestEncryptionMiddleware_PassesNotFound(t *testing.T) {
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(NewMockStore())
	_, err := secure.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	})
}
