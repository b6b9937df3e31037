package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/tieubaoca/docqa-be/config"
	"github.com/tieubaoca/docqa-be/types"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const BATCH_SIZE = 200

const DEFAULT_CLASS = "Chunk"

func newChunkClass(name, vectorizer string, moduleConfig map[string]interface{}) *models.Class {
	return &models.Class{
		Class: name,
		Properties: []*models.Property{
			{Name: "chunkId", DataType: []string{"text"}},
			{Name: "content", DataType: []string{"text"}},
			{Name: "createdAt", DataType: []string{"int"}},
		},
		Vectorizer:      vectorizer,
		ModuleConfig:    moduleConfig,
		VectorIndexType: "hnsw",
	}
}

// WeaviateStore keeps chunks in a Weaviate class whose vectors are produced
// server side by the configured text2vec module.
type WeaviateStore struct {
	client    *weaviate.Client
	className string
	class     *models.Class
}

func NewWeaviateStore(ctx context.Context, config config.WeaviateStoreConfig) (*WeaviateStore, error) {
	var scheme string
	if strings.HasPrefix(config.Host, "https://") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(config.Host, scheme+"://")
	cfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if config.APIKey != "" {
		cfg.AuthConfig = auth.ApiKey{
			Value: config.APIKey,
		}
		cfg.Headers = map[string]string{
			"X-Weaviate-Api-Key":     config.APIKey,
			"X-Weaviate-Cluster-Url": fmt.Sprintf("%s://%s", scheme, host),
		}
	}
	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	className := config.ClassName
	if className == "" {
		className = DEFAULT_CLASS
	}
	s := &WeaviateStore{
		client:    client,
		className: className,
		class:     newChunkClass(className, config.Text2Vec, config.ModuleConfig),
	}

	schema, err := client.Schema().Getter().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %w", err)
	}
	for _, class := range schema.Classes {
		if class.Class == className {
			return s, nil
		}
	}
	if err := client.Schema().ClassCreator().WithClass(s.class).Do(ctx); err != nil {
		return nil, fmt.Errorf("failed to create %s class: %w", className, err)
	}
	return s, nil
}

// ReInit drops and recreates the chunk class.
func (s *WeaviateStore) ReInit(ctx context.Context) error {
	err := s.client.Schema().ClassDeleter().WithClassName(s.className).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete %s class: %w", s.className, err)
	}

	err = s.client.Schema().ClassCreator().WithClass(s.class).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create %s class: %w", s.className, err)
	}
	return nil
}

func (s *WeaviateStore) Store(ctx context.Context, ids []string, texts []string) error {
	if len(ids) != len(texts) {
		return fmt.Errorf("%w: %d ids, %d texts", types.ErrLengthMismatch, len(ids), len(texts))
	}
	createdAt := time.Now().Unix()
	total := len(ids)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			batcher = batcher.WithObjects(&models.Object{
				Class: s.className,
				ID:    strfmt.UUID(ChunkUUID(ids[j])),
				Properties: map[string]interface{}{
					"chunkId":   ids[j],
					"content":   texts[j],
					"createdAt": createdAt,
				},
			})
		}

		responses, err := batcher.Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %w", i, end, err)
		}
		for _, res := range responses {
			if res.Result != nil && res.Result.Errors != nil && len(res.Result.Errors.Error) > 0 {
				return fmt.Errorf("failed to insert batch %d-%d: %s", i, end, res.Result.Errors.Error[0].Message)
			}
		}
	}
	return nil
}

func (s *WeaviateStore) Query(ctx context.Context, text string, k int) ([]string, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", types.ErrInvalidInput, k)
	}
	nearText := s.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{text})

	result, err := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithFields(
			graphql.Field{Name: "content"},
			graphql.Field{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
		).
		WithNearText(nearText).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("search failed: %s", result.Errors[0].Message)
	}

	contents := parseContents(result.Data, s.className)
	if len(contents) == 0 {
		return nil, types.ErrEmptyCollection
	}
	return contents, nil
}

func (s *WeaviateStore) Count(ctx context.Context) (int, error) {
	result, err := s.client.GraphQL().Aggregate().
		WithClassName(s.className).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("aggregate failed: %w", err)
	}
	if len(result.Errors) > 0 {
		return 0, fmt.Errorf("aggregate failed: %s", result.Errors[0].Message)
	}
	return parseCount(result.Data, s.className), nil
}

func (s *WeaviateStore) Close(ctx context.Context) error { return nil }

// ChunkUUID maps a chunk id onto a stable object UUID, so re-storing the same
// id replaces the object instead of duplicating it.
func ChunkUUID(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("docqa/chunk/"+id)).String()
}

func parseContents(data map[string]models.JSONObject, className string) []string {
	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return nil
	}
	items, ok := get[className].([]interface{})
	if !ok {
		return nil
	}
	contents := make([]string, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if content, ok := obj["content"].(string); ok {
			contents = append(contents, content)
		}
	}
	return contents
}

func parseCount(data map[string]models.JSONObject, className string) int {
	agg, ok := data["Aggregate"].(map[string]interface{})
	if !ok {
		return 0
	}
	items, ok := agg[className].([]interface{})
	if !ok || len(items) == 0 {
		return 0
	}
	first, ok := items[0].(map[string]interface{})
	if !ok {
		return 0
	}
	meta, ok := first["meta"].(map[string]interface{})
	if !ok {
		return 0
	}
	count, _ := meta["count"].(float64)
	return int(count)
}
