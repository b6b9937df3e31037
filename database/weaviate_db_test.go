package database

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/weaviate/weaviate/entities/models"
)

func TestChunkUUID(t *testing.T) {
	a := ChunkUUID("doc-id0")
	b := ChunkUUID("doc-id0")
	c := ChunkUUID("doc-id1")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestParseContents(t *testing.T) {
	data := map[string]models.JSONObject{
		"Get": map[string]interface{}{
			"Chunk": []interface{}{
				map[string]interface{}{"content": "first", "_additional": map[string]interface{}{"distance": 0.1}},
				map[string]interface{}{"content": "second"},
				map[string]interface{}{"content": nil},
			},
		},
	}

	assert.Equal(t, []string{"first", "second"}, parseContents(data, "Chunk"))
	assert.Empty(t, parseContents(data, "Other"))
	assert.Empty(t, parseContents(map[string]models.JSONObject{}, "Chunk"))
}

func TestParseCount(t *testing.T) {
	data := map[string]models.JSONObject{
		"Aggregate": map[string]interface{}{
			"Chunk": []interface{}{
				map[string]interface{}{"meta": map[string]interface{}{"count": float64(42)}},
			},
		},
	}

	assert.Equal(t, 42, parseCount(data, "Chunk"))
	assert.Equal(t, 0, parseCount(data, "Missing"))
	assert.Equal(t, 0, parseCount(nil, "Chunk"))
}

func TestNewChunkClass(t *testing.T) {
	class := newChunkClass("Chunk", "text2vec-transformers", nil)

	assert.Equal(t, "Chunk", class.Class)
	assert.Equal(t, "text2vec-transformers", class.Vectorizer)
	assert.Len(t, class.Properties, 3)
}
