package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/workmate-ai/assistant-be/config"
	"github.com/workmate-ai/assistant-be/store"
)

// RetrievalService grounds a query in the knowledge corpus: it embeds the
// sanitized query and returns the nearest corpus entry verbatim.
type RetrievalService struct {
	registry    *ModelRegistry
	index       *store.MemoryIndex
	maxDistance float64
	logger      *zap.Logger
}

func NewRetrievalService(registry *ModelRegistry, index *store.MemoryIndex, cfg config.RetrievalConfig, logger *zap.Logger) *RetrievalService {
	return &RetrievalService{
		registry:    registry,
		index:       index,
		maxDistance: cfg.MaxContextDistance,
		logger:      logger,
	}
}

// RetrieveContext returns the corpus entry closest to the query. With the
// distance cutoff disabled (the default) the nearest entry is returned even
// when it is far away; irrelevant queries still get a grounded-looking
// context. An empty string means the cutoff rejected the nearest entry.
func (s *RetrievalService) RetrieveContext(ctx context.Context, query string) (string, error) {
	embedder, err := s.registry.Embedder()
	if err != nil {
		return "", fmt.Errorf("failed to load embedding model: %w", err)
	}

	vectors, err := embedder.Embed(ctx, []string{query})
	if err != nil {
		return "", fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.index.Search(vectors[0], 1)
	if err != nil {
		return "", fmt.Errorf("index search failed: %w", err)
	}

	nearest := results[0]
	s.logger.Debug("retrieved context",
		zap.Float64("distance", nearest.Distance),
		zap.Int("context_length", len(nearest.Entry.Text)),
	)

	if s.maxDistance > 0 && nearest.Distance > s.maxDistance {
		s.logger.Info("nearest corpus entry beyond distance cutoff",
			zap.Float64("distance", nearest.Distance),
			zap.Float64("cutoff", s.maxDistance),
		)
		return "", nil
	}
	return nearest.Entry.Text, nil
}
