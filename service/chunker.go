package service

import (
	"fmt"
	"strings"

	"github.com/tieubaoca/docqa-be/types"
	"github.com/tmc/langchaingo/textsplitter"
)

// DefaultChunkerConfig matches the ingest pipeline defaults.
var DefaultChunkerConfig = types.ChunkerConfig{
	ChunkSize:    600,
	ChunkOverlap: 100,
}

// Chunker splits text into ordered, overlapping chunks.
type Chunker interface {
	Chunk(text string) ([]string, error)
}

// RecursiveChunker splits on paragraph, line, word and finally character
// boundaries so chunks stay within ChunkSize characters.
type RecursiveChunker struct {
	splitter textsplitter.RecursiveCharacter
}

func NewRecursiveChunker(config types.ChunkerConfig) (*RecursiveChunker, error) {
	if config.ChunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", types.ErrInvalidConfig, config.ChunkSize)
	}
	if config.ChunkOverlap < 0 || config.ChunkOverlap >= config.ChunkSize {
		return nil, fmt.Errorf("%w: chunk overlap %d must be in [0, %d)", types.ErrInvalidConfig, config.ChunkOverlap, config.ChunkSize)
	}

	return &RecursiveChunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(config.ChunkSize),
			textsplitter.WithChunkOverlap(config.ChunkOverlap),
			textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
		),
	}, nil
}

func (c *RecursiveChunker) Chunk(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}
	chunks, err := c.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("failed to split text: %w", err)
	}

	out := chunks[:0]
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) != "" {
			out = append(out, chunk)
		}
	}
	return out, nil
}
