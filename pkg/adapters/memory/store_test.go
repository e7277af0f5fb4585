package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/rewind/pkg/adapters/memory"
	"github.com/aretw0/rewind/pkg/domain"
	"github.com/aretw0/rewind/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSessionStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	doc := domain.Document{"fields": map[string]any{"a": "b"}}
	require.NoError(t, store.Save(ctx, "s", domain.NewSession("s", doc)))

	// Mutating the caller's copy after Save must not leak into the store.
	doc["fields"].(map[string]any)["a"] = "changed"

	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "b"}, loaded.Timeline.States[0]["fields"])
}
