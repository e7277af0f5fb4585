package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/rewind/pkg/adapters/file"
	"github.com/aretw0/rewind/pkg/domain"
	"github.com/aretw0/rewind/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.SessionStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "abc", domain.NewSession("abc", domain.Document{"counter": 1})))
	require.NoError(t, store.Save(ctx, "abc", domain.NewSession("abc", domain.Document{"counter": 2})))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "abc.json", entries[0].Name())

	loaded, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.EqualValues(t, 2, loaded.Active()["counter"])
}

func TestFileStore_InvalidIDs(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	err := store.Save(ctx, "", domain.NewSession("", domain.Document{}))
	assert.ErrorIs(t, err, domain.ErrEmptySessionID)

	_, err = store.Load(ctx, "../escape")
	assert.Error(t, err)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "does-not-exist"))
	sessions, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644))

	_, err := file.New(dir).Load(context.Background(), "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
}
