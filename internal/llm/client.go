package llm

import (
	"context"
	"errors"
)

// ErrEmbeddingsUnsupported is returned by providers without an embeddings endpoint.
var ErrEmbeddingsUnsupported = errors.New("embeddings not supported by provider")

// LLMClient produces free text for narration prompts.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EmbedderClient turns stated goals into vectors for goal alignment.
type EmbedderClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
