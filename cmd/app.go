package cmd

import (
	"context"
	"fmt"

	"github.com/tieubaoca/docqa-be/config"
	"github.com/tieubaoca/docqa-be/database"
	"github.com/tieubaoca/docqa-be/embedding"
	"github.com/tieubaoca/docqa-be/repository"
	"github.com/tieubaoca/docqa-be/service"
	"github.com/tieubaoca/docqa-be/utils"
	"go.uber.org/zap"
)

// app holds everything a command needs to run the document pipeline.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   database.VectorDatabase
	rag     *service.RAGService
	closers []func(ctx context.Context) error
}

type appOptions struct {
	// reinit drops and recreates the Weaviate class before use.
	reinit bool
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}
	if err := a.init(ctx, opts); err != nil {
		a.Close(ctx)
		return nil, err
	}
	return a, nil
}

func (a *app) init(ctx context.Context, opts appOptions) error {
	ai, err := a.newAIService(ctx)
	if err != nil {
		return err
	}

	store, err := a.newVectorStore(ctx, opts)
	if err != nil {
		return err
	}
	a.store = store
	a.closers = append(a.closers, store.Close)

	chunker, err := service.NewRecursiveChunker(a.cfg.ChunkerParams())
	if err != nil {
		return err
	}

	a.rag = service.NewRAGService(
		service.NewFileExtractor(),
		chunker,
		store,
		ai,
		service.RAGOptions{
			TargetLanguage: a.cfg.AI.TargetLanguage,
			AITimeout:      a.cfg.AI.Timeout,
		},
		a.logger,
	)
	return nil
}

func (a *app) newAIService(ctx context.Context) (service.AIService, error) {
	switch a.cfg.AI.Provider {
	case config.ProviderOpenAI:
		a.logger.Info("using openai provider", zap.String("model", a.cfg.AI.ModelName()), zap.String("endpoint", a.cfg.AI.Endpoint))
		return service.NewOpenAIService(a.cfg.AI.Endpoint, a.cfg.AI.OpenAIAPIKey, a.cfg.AI.ModelName()), nil
	default:
		gemini, err := service.NewGeminiService(ctx, a.cfg.AI.GeminiAPIKeys, a.cfg.AI.ModelName(), a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return gemini.Close() })
		a.logger.Info("using gemini provider", zap.String("model", a.cfg.AI.ModelName()), zap.Int("api_keys", len(a.cfg.AI.GeminiAPIKeys)))
		return gemini, nil
	}
}

func (a *app) newEmbedder(ctx context.Context) (embedding.Embedder, error) {
	switch a.cfg.Embedder.Type {
	case config.EmbedderGemini:
		e, err := embedding.NewGeminiEmbedder(ctx, a.cfg.AI.GeminiAPIKeys[0], a.cfg.Embedder.Model)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return e.Close() })
		return e, nil
	case config.EmbedderOpenAI:
		return embedding.NewOpenAIEmbedder(a.cfg.AI.Endpoint, a.cfg.AI.OpenAIAPIKey, a.cfg.Embedder.Model)
	default:
		return embedding.NewHashingEmbedder(a.cfg.Embedder.Dimension), nil
	}
}

func (a *app) newVectorStore(ctx context.Context, opts appOptions) (database.VectorDatabase, error) {
	switch a.cfg.VectorStore.Type {
	case config.StoreWeaviate:
		store, err := database.NewWeaviateStore(ctx, a.cfg.VectorStore.Weaviate)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Weaviate database: %w", err)
		}
		if opts.reinit {
			if err := store.ReInit(ctx); err != nil {
				return nil, fmt.Errorf("failed to reinitialize Weaviate database: %w", err)
			}
			a.logger.Info("weaviate class recreated", zap.String("class", a.cfg.VectorStore.Weaviate.ClassName))
		}
		a.logger.Info("using weaviate vector store", zap.String("host", a.cfg.VectorStore.Weaviate.Host))
		return store, nil

	case config.StoreMongo:
		embedder, err := a.newEmbedder(ctx)
		if err != nil {
			return nil, err
		}
		client, err := database.NewMongoClient(ctx, a.cfg.VectorStore.Mongo.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		collection := client.Database(a.cfg.VectorStore.Mongo.Database).Collection(a.cfg.VectorStore.Mongo.Collection)
		a.logger.Info("using mongo vector store",
			zap.String("database", a.cfg.VectorStore.Mongo.Database),
			zap.String("collection", a.cfg.VectorStore.Mongo.Collection),
			zap.String("embedder", embedder.Name()),
		)
		return database.NewMongoStore(repository.NewChunkRepo(collection), embedder, client.Disconnect), nil

	default:
		embedder, err := a.newEmbedder(ctx)
		if err != nil {
			return nil, err
		}
		a.logger.Info("using in-memory vector store", zap.String("embedder", embedder.Name()))
		return database.NewMemoryStore(embedder), nil
	}
}

// Close releases clients in reverse creation order and flushes the logger.
func (a *app) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warn("failed to close resource", zap.Error(err))
		}
	}
	a.closers = nil
	_ = a.logger.Sync()
}
