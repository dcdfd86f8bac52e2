package service

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/workmate-ai/assistant-be/config"
)

// OpenAIEmbedder embeds text batches through an OpenAI-compatible embeddings
// endpoint. Inputs longer than the model window are truncated
// deterministically instead of rejected; retrieval only needs enough signal,
// not full fidelity.
type OpenAIEmbedder struct {
	client   *openai.Client
	model    string
	maxChars int
	logger   *zap.Logger
}

func newOpenAIEmbedder(cfg *config.Config, logger *zap.Logger) (*OpenAIEmbedder, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	clientConfig.BaseURL = cfg.AI.BaseURL
	return &OpenAIEmbedder{
		client:   openai.NewClientWithConfig(clientConfig),
		model:    cfg.AI.EmbeddingModel,
		maxChars: cfg.Retrieval.MaxQueryChars,
		logger:   logger,
	}, nil
}

// Embed embeds the whole batch in a single call to amortize model overhead.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	inputs := make([]string, len(texts))
	for i, text := range texts {
		inputs[i] = truncateRunes(text, e.maxChars)
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: inputs,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(resp.Data), len(inputs))
	}

	// Place each vector by its reported index so output order always
	// matches input order regardless of response order.
	vectors := make([][]float32, len(inputs))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding response has out-of-range index %d", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("embedding response is missing index %d", i)
		}
	}

	e.logger.Debug("embedded batch",
		zap.Int("texts", len(texts)),
		zap.Int("dimension", len(vectors[0])),
	)
	return vectors, nil
}
