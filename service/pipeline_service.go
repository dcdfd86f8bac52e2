package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/workmate-ai/assistant-be/config"
	"github.com/workmate-ai/assistant-be/types"
)

// contextQueryDelimiter separates retrieved context from the query in the
// generation input.
const contextQueryDelimiter = "\n\n"

// PipelineService composes extraction, sanitization, retrieval and
// generation into the two public operations. Requests share the read-only
// model singletons and carry no per-request mutable state, so they run fully
// in parallel.
type PipelineService struct {
	registry  *ModelRegistry
	extractor Extractor
	sanitizer *SanitizeService
	retrieval *RetrievalService
	cfg       *config.Config
	logger    *zap.Logger
}

func NewPipelineService(
	registry *ModelRegistry,
	extractor Extractor,
	sanitizer *SanitizeService,
	retrieval *RetrievalService,
	cfg *config.Config,
	logger *zap.Logger,
) *PipelineService {
	return &PipelineService{
		registry:  registry,
		extractor: extractor,
		sanitizer: sanitizer,
		retrieval: retrieval,
		cfg:       cfg,
		logger:    logger,
	}
}

// SummarizeDocument extracts the document text and generates a summary in
// the document length band.
func (s *PipelineService) SummarizeDocument(ctx context.Context, doc types.Document) (string, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	extracted, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		return "", timeoutOr(err)
	}

	text := extracted.Join()
	if strings.TrimSpace(text) == "" {
		return "", types.ErrEmptyDocument
	}
	text = truncateRunes(text, s.cfg.Extraction.MaxDocumentChars)

	generator, err := s.registry.Generator()
	if err != nil {
		return "", fmt.Errorf("failed to load generation model: %w", err)
	}
	summary, err := generator.Generate(ctx, text, s.cfg.Generation.SummaryBand)
	if err != nil {
		return "", timeoutOr(err)
	}

	s.logger.Info("document summarized",
		zap.String("document", doc.Name),
		zap.Int("summary_length", len(summary)),
	)
	return summary, nil
}

// AnswerQuery sanitizes the query, grounds it in the nearest corpus entry
// and generates an answer in the chat length band.
func (s *PipelineService) AnswerQuery(ctx context.Context, query string) (string, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	sanitized := s.sanitizer.Sanitize(query)
	if strings.TrimSpace(sanitized) == "" {
		return "", types.ErrEmptyQuery
	}

	grounding, err := s.retrieval.RetrieveContext(ctx, sanitized)
	if err != nil {
		return "", timeoutOr(err)
	}

	input := sanitized
	if grounding != "" {
		input = grounding + contextQueryDelimiter + sanitized
	}

	generator, err := s.registry.Generator()
	if err != nil {
		return "", fmt.Errorf("failed to load generation model: %w", err)
	}
	answer, err := generator.Generate(ctx, input, s.cfg.Generation.ChatBand)
	if err != nil {
		return "", timeoutOr(err)
	}

	s.logger.Info("query answered", zap.Int("answer_length", len(answer)))
	return answer, nil
}

func (s *PipelineService) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.cfg.RequestTimeout()
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// timeoutOr maps a deadline overrun on a model call to the retryable
// GenerationTimeout error; anything else passes through.
func timeoutOr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return types.ErrGenerationTimeout
	}
	return err
}
