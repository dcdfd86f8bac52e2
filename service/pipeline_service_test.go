package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/workmate-ai/assistant-be/config"
	"github.com/workmate-ai/assistant-be/store"
	"github.com/workmate-ai/assistant-be/types"
)

const (
	hrEntry    = "Company HR policy allows 2 days of leave per month."
	itEntry    = "IT support can be contacted at ithelp@company.com."
	eventEntry = "The next company event will be held on Friday."
	leaveQuery = "How many leave days do I get?"
)

type stubExtractor struct {
	fragments types.ExtractedText
	err       error
}

func (e *stubExtractor) Extract(ctx context.Context, doc types.Document) (types.ExtractedText, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.fragments, nil
}

func testConfig() *config.Config {
	return &config.Config{
		RequestTimeoutSeconds: 5,
		Generation: config.GenerationConfig{
			SummaryBand: config.LengthBand{MinWords: 60, MaxWords: 220, MaxTokens: 512},
			ChatBand:    config.LengthBand{MinWords: 10, MaxWords: 80, MaxTokens: 192},
		},
		Extraction: config.ExtractionConfig{MaxDocumentChars: 1000},
		Retrieval:  config.RetrievalConfig{MaxQueryChars: 2000},
	}
}

// corpusIndex builds an index over the three policy snippets with orthogonal
// vectors, and an embedder that places the leave query nearest the HR entry.
func corpusIndex(t *testing.T) (*store.MemoryIndex, *stubEmbedder) {
	t.Helper()
	index, err := store.BuildMemoryIndex([]store.Entry{
		{Text: hrEntry, Vector: []float32{1, 0, 0}},
		{Text: itEntry, Vector: []float32{0, 1, 0}},
		{Text: eventEntry, Vector: []float32{0, 0, 1}},
	})
	require.NoError(t, err)

	embedder := &stubEmbedder{vectors: map[string][]float32{
		leaveQuery: {0.9, 0.05, 0.05},
	}}
	return index, embedder
}

func newTestPipeline(t *testing.T, extractor Extractor, embedder Embedder, generator Generator, index *store.MemoryIndex) *PipelineService {
	t.Helper()
	cfg := testConfig()
	log := zap.NewNop()
	registry := &ModelRegistry{
		loadEmbedder:  func() (Embedder, error) { return embedder, nil },
		loadGenerator: func() (Generator, error) { return generator, nil },
		logger:        log,
	}
	sanitizer := NewSanitizeService(config.SanitizerConfig{
		RedactionMarker: "[CENSORED]",
		Denylist:        []string{"badword1"},
	}, log)
	var retrieval *RetrievalService
	if index != nil {
		retrieval = NewRetrievalService(registry, index, cfg.Retrieval, log)
	}
	return NewPipelineService(registry, extractor, sanitizer, retrieval, cfg, log)
}

func TestAnswerQueryGroundsInNearestEntry(t *testing.T) {
	index, embedder := corpusIndex(t)
	generator := &stubGenerator{output: "You get 2 days of leave per month."}
	pipeline := newTestPipeline(t, nil, embedder, generator, index)

	answer, err := pipeline.AnswerQuery(context.Background(), leaveQuery)
	require.NoError(t, err)
	assert.Equal(t, "You get 2 days of leave per month.", answer)

	// Context and query are joined with a single delimiter, context first.
	assert.Equal(t, hrEntry+"\n\n"+leaveQuery, generator.lastInput())
}

func TestAnswerQuerySanitizesBeforeRetrieval(t *testing.T) {
	query := "tell me about badword1 leave"
	sanitized := "tell me about [CENSORED] leave"
	index, err := store.BuildMemoryIndex([]store.Entry{{Text: hrEntry, Vector: []float32{1}}})
	require.NoError(t, err)
	embedder := &stubEmbedder{vectors: map[string][]float32{sanitized: {1}}}
	generator := &stubGenerator{output: "ok"}
	pipeline := newTestPipeline(t, nil, embedder, generator, index)

	_, err = pipeline.AnswerQuery(context.Background(), query)
	require.NoError(t, err)
	// The embedder only knows the sanitized form, so retrieval succeeding
	// proves the raw query never reached the model.
	assert.Equal(t, hrEntry+"\n\n"+sanitized, generator.lastInput())
}

func TestAnswerQueryEmpty(t *testing.T) {
	index, embedder := corpusIndex(t)
	pipeline := newTestPipeline(t, nil, embedder, &stubGenerator{output: "x"}, index)

	for _, query := range []string{"", "   ", "\n\t"} {
		_, err := pipeline.AnswerQuery(context.Background(), query)
		assert.ErrorIs(t, err, types.ErrEmptyQuery)
	}
}

func TestAnswerQueryDistanceCutoff(t *testing.T) {
	index, embedder := corpusIndex(t)
	generator := &stubGenerator{output: "ok"}
	pipeline := newTestPipeline(t, nil, embedder, generator, index)
	// Nearest entry is ~0.12 away; a tiny cutoff rejects it.
	pipeline.retrieval.maxDistance = 0.01

	_, err := pipeline.AnswerQuery(context.Background(), leaveQuery)
	require.NoError(t, err)
	assert.Equal(t, leaveQuery, generator.lastInput())
}

func TestSummarizeDocument(t *testing.T) {
	extractor := &stubExtractor{fragments: types.ExtractedText{"page one text", "", "page three text"}}
	generator := &stubGenerator{output: "a concise summary"}
	pipeline := newTestPipeline(t, extractor, nil, generator, nil)

	summary, err := pipeline.SummarizeDocument(context.Background(), types.Document{Name: "doc.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "a concise summary", summary)
	assert.Equal(t, "page one text\npage three text", generator.lastInput())
}

func TestSummarizeDocumentEmpty(t *testing.T) {
	extractor := &stubExtractor{fragments: types.ExtractedText{"", "  ", ""}}
	generator := &stubGenerator{output: "should not be called"}
	pipeline := newTestPipeline(t, extractor, nil, generator, nil)

	_, err := pipeline.SummarizeDocument(context.Background(), types.Document{Name: "blank.pdf"})
	assert.ErrorIs(t, err, types.ErrEmptyDocument)
	assert.Empty(t, generator.inputs)
}

func TestSummarizeDocumentMalformed(t *testing.T) {
	extractor := &stubExtractor{err: types.ErrMalformedDocument}
	generator := &stubGenerator{output: "should not be called"}
	pipeline := newTestPipeline(t, extractor, nil, generator, nil)

	_, err := pipeline.SummarizeDocument(context.Background(), types.Document{Name: "junk.bin"})
	assert.ErrorIs(t, err, types.ErrMalformedDocument)
	assert.Empty(t, generator.inputs)
}

func TestSummarizeDocumentTruncatesInput(t *testing.T) {
	long := make([]byte, 5000)
	for i := range long {
		long[i] = 'a'
	}
	extractor := &stubExtractor{fragments: types.ExtractedText{string(long)}}
	generator := &stubGenerator{output: "summary"}
	pipeline := newTestPipeline(t, extractor, nil, generator, nil)

	_, err := pipeline.SummarizeDocument(context.Background(), types.Document{Name: "long.pdf"})
	require.NoError(t, err)
	assert.Len(t, generator.lastInput(), 1000)
}

type slowGenerator struct{}

func (g *slowGenerator) Generate(ctx context.Context, input string, band config.LengthBand) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(time.Minute):
		return "too late", nil
	}
}

func TestGenerationTimeout(t *testing.T) {
	extractor := &stubExtractor{fragments: types.ExtractedText{"some text"}}
	pipeline := newTestPipeline(t, extractor, nil, &slowGenerator{}, nil)
	pipeline.cfg.RequestTimeoutSeconds = 1

	start := time.Now()
	_, err := pipeline.SummarizeDocument(context.Background(), types.Document{Name: "slow.pdf"})
	assert.ErrorIs(t, err, types.ErrGenerationTimeout)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestConcurrentFirstQueriesLoadModelOnce(t *testing.T) {
	index, embedder := corpusIndex(t)
	cfg := testConfig()
	log := zap.NewNop()

	var loads atomic.Int32
	registry := &ModelRegistry{
		loadEmbedder: func() (Embedder, error) { return embedder, nil },
		loadGenerator: func() (Generator, error) {
			loads.Add(1)
			time.Sleep(10 * time.Millisecond)
			return &stubGenerator{output: "answer"}, nil
		},
		logger: log,
	}
	sanitizer := NewSanitizeService(config.SanitizerConfig{RedactionMarker: "[CENSORED]"}, log)
	retrieval := NewRetrievalService(registry, index, cfg.Retrieval, log)
	pipeline := NewPipelineService(registry, nil, sanitizer, retrieval, cfg, log)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			answer, err := pipeline.AnswerQuery(context.Background(), leaveQuery)
			assert.NoError(t, err)
			assert.Equal(t, "answer", answer)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
}
