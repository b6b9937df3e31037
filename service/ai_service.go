package service

import (
	"context"
)

// AIService produces a single completion for a prompt.
type AIService interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
