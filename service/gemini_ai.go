package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/tieubaoca/docqa-be/types"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiService calls the Gemini API. When a call fails the next API key is
// used for the following call; the failed call itself is not retried.
type GeminiService struct {
	apiKeys    []string
	currentKey int
	modelName  string
	client     *genai.Client
	model      *genai.GenerativeModel
	logger     *zap.Logger
	mu         sync.Mutex
}

func NewGeminiService(ctx context.Context, apiKeys []string, modelName string, logger *zap.Logger) (*GeminiService, error) {
	if len(apiKeys) == 0 {
		return nil, fmt.Errorf("%w: no gemini API keys provided", types.ErrInvalidConfig)
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &GeminiService{
		apiKeys:   apiKeys,
		modelName: modelName,
		logger:    logger,
	}
	client, err := newGeminiClient(ctx, apiKeys[0])
	if err != nil {
		return nil, err
	}
	s.client = client
	s.model = client.GenerativeModel(modelName)
	return s, nil
}

func newGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return client, nil
}

// rotateAPIKey switches to the next key. The current client stays in place
// when the new one cannot be created.
func (s *GeminiService) rotateAPIKey(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.apiKeys) < 2 {
		return nil
	}
	next := (s.currentKey + 1) % len(s.apiKeys)
	client, err := newGeminiClient(ctx, s.apiKeys[next])
	if err != nil {
		return err
	}

	old := s.client
	s.currentKey = next
	s.client = client
	s.model = client.GenerativeModel(s.modelName)
	if err := old.Close(); err != nil {
		s.logger.Warn("failed to close gemini client", zap.Error(err))
	}
	return nil
}

func (s *GeminiService) keyIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentKey
}

func (s *GeminiService) currentModel() *genai.GenerativeModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

func (s *GeminiService) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := s.currentModel().GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		// a cancelled or timed out call says nothing about the key
		if ctx.Err() == nil {
			if rotateErr := s.rotateAPIKey(context.Background()); rotateErr != nil {
				s.logger.Error("failed to rotate gemini API key", zap.Error(rotateErr))
			}
		}
		return "", fmt.Errorf("%w: gemini: %w", types.ErrGeneration, err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %w", types.ErrGeneration, err)
	}
	return text, nil
}

func (s *GeminiService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client.Close()
}

// responseText returns the trimmed text parts of the first candidate that
// carries content.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no response generated")
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		return strings.TrimSpace(b.String()), nil
	}
	return "", errors.New("response has no content")
}
