package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ChunkRecord is a stored chunk with its embedding.
type ChunkRecord struct {
	ID        string    `bson:"_id"`
	Text      string    `bson:"text"`
	Vector    []float32 `bson:"vector"`
	CreatedAt int64     `bson:"created_at"`
}

type ChunkRepo interface {
	UpsertChunks(ctx context.Context, records []ChunkRecord) error
	ListChunks(ctx context.Context) ([]ChunkRecord, error)
	CountChunks(ctx context.Context) (int64, error)
}

type chunkRepo struct {
	collection *mongo.Collection
}

func NewChunkRepo(collection *mongo.Collection) ChunkRepo {
	return &chunkRepo{
		collection: collection,
	}
}

func (r *chunkRepo) UpsertChunks(ctx context.Context, records []ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(records))
	for _, rec := range records {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "_id", Value: rec.ID}}).
			SetReplacement(rec).
			SetUpsert(true))
	}
	_, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("failed to upsert %d chunks: %w", len(records), err)
	}
	return nil
}

func (r *chunkRepo) ListChunks(ctx context.Context) ([]ChunkRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var records []ChunkRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *chunkRepo) CountChunks(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.D{})
}
