package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/docqa-be/embedding"
	"github.com/tieubaoca/docqa-be/types"
)

func newTestMemoryStore() *MemoryStore {
	return NewMemoryStore(embedding.NewHashingEmbedder(512))
}

func TestMemoryStore_QueryEmptyCollection(t *testing.T) {
	store := newTestMemoryStore()

	_, err := store.Query(context.Background(), "anything", 3)
	assert.ErrorIs(t, err, types.ErrEmptyCollection)
}

func TestMemoryStore_LengthMismatch(t *testing.T) {
	store := newTestMemoryStore()

	err := store.Store(context.Background(), []string{"id0", "id1"}, []string{"only one"})
	assert.ErrorIs(t, err, types.ErrLengthMismatch)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := newTestMemoryStore()
	ctx := context.Background()

	texts := []string{
		"Mount Everest is the highest mountain on Earth.",
		"The Bagmati river flows through the Kathmandu valley.",
		"Momo is a popular dumpling dish in Nepal.",
		"Photosynthesis converts light energy into chemical energy.",
	}
	ids := []string{"d-id0", "d-id1", "d-id2", "d-id3"}
	require.NoError(t, store.Store(ctx, ids, texts))

	for _, text := range texts {
		results, err := store.Query(ctx, text, 2)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, text, results[0])
	}
}

func TestMemoryStore_QueryReturnsAtMostCount(t *testing.T) {
	store := newTestMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, []string{"a", "b"}, []string{"alpha text", "beta text"}))

	results, err := store.Query(ctx, "alpha", 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "alpha text", results[0])
}

func TestMemoryStore_InvalidK(t *testing.T) {
	store := newTestMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Store(ctx, []string{"a"}, []string{"alpha"}))

	_, err := store.Query(ctx, "alpha", 0)
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestMemoryStore_SameIDReplaces(t *testing.T) {
	store := newTestMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, []string{"id0"}, []string{"old text"}))
	require.NoError(t, store.Store(ctx, []string{"id0"}, []string{"new text"}))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	results, err := store.Query(ctx, "text", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"new text"}, results)
}

func TestMemoryStore_ConcurrentStores(t *testing.T) {
	store := newTestMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for doc := 0; doc < 8; doc++ {
		wg.Add(1)
		go func(doc int) {
			defer wg.Done()
			ids := make([]string, 5)
			texts := make([]string, 5)
			for i := range ids {
				ids[i] = fmt.Sprintf("doc%d-id%d", doc, i)
				texts[i] = fmt.Sprintf("document %d chunk %d", doc, i)
			}
			assert.NoError(t, store.Store(ctx, ids, texts))
		}(doc)
	}
	wg.Wait()

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 40, n)
}

type failingEmbedder struct{}

func (failingEmbedder) Name() string { return "failing" }

func (failingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("embedding backend down")
}

func TestMemoryStore_EmbedderError(t *testing.T) {
	store := NewMemoryStore(failingEmbedder{})

	err := store.Store(context.Background(), []string{"a"}, []string{"alpha"})
	assert.Error(t, err)
	assert.NoError(t, store.Close(context.Background()))
}
