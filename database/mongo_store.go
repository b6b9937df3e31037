package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tieubaoca/docqa-be/embedding"
	"github.com/tieubaoca/docqa-be/repository"
	"github.com/tieubaoca/docqa-be/types"
)

// MongoStore persists chunks and their vectors in MongoDB and ranks them in
// process, so the collection survives restarts without a vector index.
type MongoStore struct {
	repo     repository.ChunkRepo
	embedder embedding.Embedder
	closeFn  func(ctx context.Context) error
}

func NewMongoStore(repo repository.ChunkRepo, embedder embedding.Embedder, closeFn func(ctx context.Context) error) *MongoStore {
	return &MongoStore{
		repo:     repo,
		embedder: embedder,
		closeFn:  closeFn,
	}
}

func (s *MongoStore) Store(ctx context.Context, ids []string, texts []string) error {
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

	now := time.Now().UnixNano()
	records := make([]repository.ChunkRecord, len(ids))
	for i := range ids {
		records[i] = repository.ChunkRecord{
			ID:        ids[i],
			Text:      texts[i],
			Vector:    vectors[i],
			CreatedAt: now + int64(i),
		}
	}
	return s.repo.UpsertChunks(ctx, records)
}

func (s *MongoStore) Query(ctx context.Context, text string, k int) ([]string, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", types.ErrInvalidInput, k)
	}

	records, err := s.repo.ListChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks: %w", err)
	}
	if len(records) == 0 {
		return nil, types.ErrEmptyCollection
	}

	vectors, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for the query", len(vectors))
	}

	scored := make([]scoredText, len(records))
	for i, rec := range records {
		scored[i] = scoredText{text: rec.Text, score: embedding.Cosine(vectors[0], rec.Vector)}
	}
	return topK(scored, k), nil
}

func (s *MongoStore) Count(ctx context.Context) (int, error) {
	n, err := s.repo.CountChunks(ctx)
	return int(n), err
}

func (s *MongoStore) Close(ctx context.Context) error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn(ctx)
}
