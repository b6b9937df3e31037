package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tieubaoca/docqa-be/database"
	"github.com/tieubaoca/docqa-be/types"
	"go.uber.org/zap"
)

const DefaultTopK = 3

type RAGOptions struct {
	// TargetLanguage is the language Translate renders into.
	TargetLanguage string
	// AITimeout bounds each model call. Zero disables the bound.
	AITimeout time.Duration
}

// RAGService ties extraction, chunking, the vector store and the model
// together for the four document operations.
type RAGService struct {
	extractor TextExtractor
	chunker   Chunker
	store     database.VectorDatabase
	ai        AIService
	opts      RAGOptions
	logger    *zap.Logger
}

func NewRAGService(
	extractor TextExtractor,
	chunker Chunker,
	store database.VectorDatabase,
	ai AIService,
	opts RAGOptions,
	logger *zap.Logger,
) *RAGService {
	if opts.TargetLanguage == "" {
		opts.TargetLanguage = DefaultTargetLanguage
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RAGService{
		extractor: extractor,
		chunker:   chunker,
		store:     store,
		ai:        ai,
		opts:      opts,
		logger:    logger,
	}
}

// Ingest extracts, chunks and stores a file. Chunks from earlier ingests are
// kept; ids are prefixed with a fresh document id so they never collide.
func (s *RAGService) Ingest(ctx context.Context, path string) (*types.IngestResult, error) {
	text, err := s.extractor.Extract(path)
	if err != nil {
		return nil, err
	}

	chunks, err := s.chunker.Chunk(text)
	if err != nil {
		return nil, err
	}

	documentID := uuid.NewString()
	ids := make([]string, len(chunks))
	for i := range chunks {
		ids[i] = ChunkID(documentID, i)
	}

	if err := s.store.Store(ctx, ids, chunks); err != nil {
		return nil, fmt.Errorf("failed to store chunks: %w", err)
	}

	result := &types.IngestResult{
		DocumentID:    documentID,
		ChunksCreated: len(chunks),
		TextLength:    len(strings.Fields(text)),
	}
	s.logger.Info("document ingested",
		zap.String("document_id", documentID),
		zap.Int("chunks", result.ChunksCreated),
		zap.Int("words", result.TextLength),
	)
	return result, nil
}

// Summarize summarizes the full extracted text of a file. Nothing is stored.
func (s *RAGService) Summarize(ctx context.Context, path string) (string, error) {
	text, err := s.extractor.Extract(path)
	if err != nil {
		return "", err
	}

	prompt, err := SummarizePrompt(SummarizeInput{Text: text})
	if err != nil {
		return "", fmt.Errorf("failed to build prompt: %w", err)
	}
	return s.generate(ctx, prompt)
}

// Ask answers a question from the k chunks most similar to it.
func (s *RAGService) Ask(ctx context.Context, question string, k int) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: question is required", types.ErrInvalidInput)
	}
	if k <= 0 {
		return "", fmt.Errorf("%w: k must be positive, got %d", types.ErrInvalidInput, k)
	}

	contexts, err := s.store.Query(ctx, question, k)
	if err != nil {
		return "", err
	}
	s.logger.Debug("retrieved context", zap.Int("chunks", len(contexts)), zap.Int("k", k))

	prompt, err := GroundedAnswerPrompt(GroundedAnswerInput{
		Context:  strings.Join(contexts, "\n"),
		Question: question,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build prompt: %w", err)
	}
	return s.generate(ctx, prompt)
}

func (s *RAGService) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: text is required", types.ErrInvalidInput)
	}

	prompt, err := TranslatePrompt(TranslateInput{Text: text, Language: s.opts.TargetLanguage})
	if err != nil {
		return "", fmt.Errorf("failed to build prompt: %w", err)
	}
	return s.generate(ctx, prompt)
}

// Stats reports the number of stored chunks.
func (s *RAGService) Stats(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

func (s *RAGService) generate(ctx context.Context, prompt string) (string, error) {
	if s.opts.AITimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.AITimeout)
		defer cancel()
	}

	start := time.Now()
	out, err := s.ai.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("generation failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return "", err
	}
	s.logger.Debug("generation done", zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

// ChunkID is the store id of the i-th chunk of a document.
func ChunkID(documentID string, i int) string {
	return fmt.Sprintf("%s-id%d", documentID, i)
}
