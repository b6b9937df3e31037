package database

import (
	"context"
)

// VectorDatabase is the chunk collection used for retrieval.
//
// Store adds positional (ids[i], texts[i]) pairs and fails with
// types.ErrLengthMismatch when the slices differ in length. Query returns up
// to k stored texts ordered by descending similarity to text and fails with
// types.ErrEmptyCollection when nothing has been stored yet.
type VectorDatabase interface {
	Store(ctx context.Context, ids []string, texts []string) error
	Query(ctx context.Context, text string, k int) ([]string, error)
	Count(ctx context.Context) (int, error)
	Close(ctx context.Context) error
}
