package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	store := NewConfigStore()
	require.NotNil(t, store)
	assert.Empty(t, store.Keys())
	assert.Equal(t, ":memory:", store.Path())
}

func TestNewConfigStore_Seeded(t *testing.T) {
	store := NewConfigStore(map[string]any{"retriever.top_k": 5})

	assert.Equal(t, 5, store.GetInt("retriever.top_k"))
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("storage.path", "vector_store"))
	require.NoError(t, store.Set("indexer.chunk_size", int64(800)))
	require.NoError(t, store.Set("embedding.requests_per_second", 2.5))
	require.NoError(t, store.Set("verbose", true))

	assert.Equal(t, "vector_store", store.GetString("storage.path"))
	assert.Equal(t, 800, store.GetInt("indexer.chunk_size"))
	assert.InDelta(t, 2.5, store.GetFloat("embedding.requests_per_second"), 1e-9)
	assert.InDelta(t, 800.0, store.GetFloat("indexer.chunk_size"), 1e-9)
	assert.True(t, store.GetBool("verbose"))
}

func TestConfigStore_WrongTypesReturnZero(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("key", []string{"a"}))

	assert.Equal(t, "", store.GetString("key"))
	assert.Equal(t, 0, store.GetInt("key"))
	assert.Equal(t, 0.0, store.GetFloat("key"))
	assert.False(t, store.GetBool("key"))
	assert.Equal(t, "", store.GetString("missing"))
}

func TestConfigStore_Keys_Sorted(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("storage.path", "a"))
	require.NoError(t, store.Set("embedding.model", "b"))

	assert.Equal(t, []string{"embedding.model", "storage.path"}, store.Keys())
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("retriever.top_k", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("retriever.top_k")
		}()
	}
	wg.Wait()

	_, ok := store.Get("retriever.top_k")
	assert.True(t, ok)
}
