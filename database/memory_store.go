package database

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tieubaoca/docqa-be/embedding"
	"github.com/tieubaoca/docqa-be/types"
)

type memoryRecord struct {
	id     string
	text   string
	vector []float32
}

// MemoryStore is an in-process collection ranked by brute-force cosine
// similarity. It lives for the lifetime of the process.
type MemoryStore struct {
	mu       sync.RWMutex
	embedder embedding.Embedder
	records  []memoryRecord
	index    map[string]int
}

func NewMemoryStore(embedder embedding.Embedder) *MemoryStore {
	return &MemoryStore{
		embedder: embedder,
		index:    make(map[string]int),
	}
}

// Store embeds texts outside the lock, then adds them. An id that is already
// present is overwritten in place.
func (s *MemoryStore) Store(ctx context.Context, ids []string, texts []string) error {
	if len(ids) != len(texts) {
		return fmt.Errorf("%w: %d ids, %d texts", types.ErrLengthMismatch, len(ids), len(texts))
	}
	if len(ids) == 0 {
		return nil
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("%w: embedder returned %d vectors for %d texts", types.ErrLengthMismatch, len(vectors), len(texts))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range ids {
		rec := memoryRecord{id: ids[i], text: texts[i], vector: vectors[i]}
		if pos, ok := s.index[ids[i]]; ok {
			s.records[pos] = rec
			continue
		}
		s.index[ids[i]] = len(s.records)
		s.records = append(s.records, rec)
	}
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, text string, k int) ([]string, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", types.ErrInvalidInput, k)
	}
	if n, _ := s.Count(ctx); n == 0 {
		return nil, types.ErrEmptyCollection
	}

	vectors, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for the query", len(vectors))
	}

	s.mu.RLock()
	scored := make([]scoredText, len(s.records))
	for i, rec := range s.records {
		scored[i] = scoredText{text: rec.text, score: embedding.Cosine(vectors[0], rec.vector)}
	}
	s.mu.RUnlock()

	return topK(scored, k), nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

type scoredText struct {
	text  string
	score float32
}

// topK orders by descending score, insertion order breaking ties.
func topK(scored []scoredText, k int) []string {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if k > len(scored) {
		k = len(scored)
	}
	out := make([]string, k)
	for i := 0; i < k; i++ {
		out[i] = scored[i].text
	}
	return out
}
