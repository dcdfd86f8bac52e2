package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/workmate-ai/assistant-be/config"
	"github.com/workmate-ai/assistant-be/types"
)

func newTestExtractor() *ExtractService {
	return NewExtractService(config.ExtractionConfig{OCRLanguages: []string{"eng"}}, zap.NewNop())
}

func TestExtractUnsupportedMediaType(t *testing.T) {
	s := newTestExtractor()
	_, err := s.Extract(context.Background(), types.Document{
		Data:      []byte("plain text"),
		MediaType: "text/plain",
		Name:      "notes.txt",
	})
	assert.ErrorIs(t, err, types.ErrMalformedDocument)
}

func TestExtractMalformedPDF(t *testing.T) {
	s := newTestExtractor()
	_, err := s.Extract(context.Background(), types.Document{
		Data:      []byte("definitely not a pdf"),
		MediaType: "application/pdf",
		Name:      "junk.pdf",
	})
	assert.ErrorIs(t, err, types.ErrMalformedDocument)
}

func TestExtractMalformedImage(t *testing.T) {
	s := newTestExtractor()
	_, err := s.Extract(context.Background(), types.Document{
		Data:      []byte{0x00, 0x01, 0x02},
		MediaType: "image/png",
		Name:      "junk.png",
	})
	assert.ErrorIs(t, err, types.ErrMalformedDocument)
}

func TestExtractCancelledContext(t *testing.T) {
	s := newTestExtractor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Extract(ctx, types.Document{
		Data:      []byte{0x89, 'P', 'N', 'G'},
		MediaType: "image/png",
		Name:      "cancelled.png",
	})
	assert.ErrorIs(t, err, context.Canceled)
}
