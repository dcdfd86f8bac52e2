package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/workmate-ai/assistant-be/config"
)

// Embedder converts texts into fixed-length vectors. Output order matches
// input order exactly; callers zip inputs to outputs positionally.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces abstractive text bounded by a length band. Decoding is
// deterministic: identical input and band yield identical output.
type Generator interface {
	Generate(ctx context.Context, input string, band config.LengthBand) (string, error)
}

// ModelRegistry owns the process-wide model singletons. Models are loaded
// lazily on first use behind a mutual-exclusion gate, so concurrent first
// callers trigger exactly one load and then share the instance. Loaded
// models are read-only; inference calls happen outside the lock.
type ModelRegistry struct {
	mu            sync.Mutex
	embedder      Embedder
	generator     Generator
	loadEmbedder  func() (Embedder, error)
	loadGenerator func() (Generator, error)
	logger        *zap.Logger
}

func NewModelRegistry(cfg *config.Config, logger *zap.Logger) *ModelRegistry {
	return &ModelRegistry{
		loadEmbedder: func() (Embedder, error) {
			return newOpenAIEmbedder(cfg, logger)
		},
		loadGenerator: func() (Generator, error) {
			switch cfg.Generation.Backend {
			case "gemini":
				return newGeminiGenerator(cfg, logger)
			default:
				return newOpenAIGenerator(cfg, logger)
			}
		},
		logger: logger,
	}
}

// Embedder returns the shared embedding model, loading it on first call.
func (r *ModelRegistry) Embedder() (Embedder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.embedder != nil {
		return r.embedder, nil
	}
	embedder, err := r.loadEmbedder()
	if err != nil {
		return nil, err
	}
	r.embedder = embedder
	r.logger.Info("embedding model loaded")
	return embedder, nil
}

// Generator returns the shared generation model, loading it on first call.
func (r *ModelRegistry) Generator() (Generator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generator != nil {
		return r.generator, nil
	}
	generator, err := r.loadGenerator()
	if err != nil {
		return nil, err
	}
	r.generator = generator
	r.logger.Info("generation model loaded")
	return generator, nil
}

// Reset drops the loaded singletons so the next call reloads them.
func (r *ModelRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.embedder = nil
	r.generator = nil
}
