package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder for uploaded JPEG validation
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"

	"github.com/workmate-ai/assistant-be/config"
	"github.com/workmate-ai/assistant-be/types"
)

// Extractor converts an uploaded document into per-page text fragments.
type Extractor interface {
	Extract(ctx context.Context, doc types.Document) (types.ExtractedText, error)
}

// ExtractService reads the native text layer of each page and falls back to
// OCR over the rasterized page for scanned content. A page that fails to
// parse, render or OCR contributes an empty fragment; only a payload that is
// not a parseable document at all fails the extraction.
type ExtractService struct {
	ocrLanguages []string
	logger       *zap.Logger
}

func NewExtractService(cfg config.ExtractionConfig, logger *zap.Logger) *ExtractService {
	languages := cfg.OCRLanguages
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &ExtractService{
		ocrLanguages: languages,
		logger:       logger,
	}
}

func (s *ExtractService) Extract(ctx context.Context, doc types.Document) (types.ExtractedText, error) {
	switch doc.MediaType {
	case "application/pdf":
		return s.extractPDF(ctx, doc)
	case "image/png", "image/jpeg":
		return s.extractImage(ctx, doc)
	default:
		return nil, fmt.Errorf("%w: unsupported media type %q", types.ErrMalformedDocument, doc.MediaType)
	}
}

func (s *ExtractService) extractPDF(ctx context.Context, doc types.Document) (types.ExtractedText, error) {
	fdoc, err := fitz.NewFromMemory(doc.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedDocument, err)
	}
	defer fdoc.Close()

	ocr := gosseract.NewClient()
	defer ocr.Close()
	if err := ocr.SetLanguage(s.ocrLanguages...); err != nil {
		s.logger.Warn("failed to set OCR languages", zap.Strings("languages", s.ocrLanguages), zap.Error(err))
	}

	fragments := make(types.ExtractedText, 0, fdoc.NumPage())
	for page := 0; page < fdoc.NumPage(); page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Native text layer first: it is higher-value than OCR output
		// and must not be starved by OCR noise downstream.
		native, err := fdoc.Text(page)
		if err != nil {
			s.logger.Warn("failed to read page text layer",
				zap.String("document", doc.Name),
				zap.Int("page", page+1),
				zap.Error(err),
			)
			native = ""
		}
		native = strings.TrimSpace(native)

		fragment := native
		if native == "" {
			// Image-only page: rasterize it and run OCR.
			fragment = s.ocrPage(fdoc, ocr, doc.Name, page)
		}
		fragments = append(fragments, fragment)
	}

	s.logger.Info("document extracted",
		zap.String("document", doc.Name),
		zap.Int("pages", fdoc.NumPage()),
		zap.Int("text_length", len(fragments.Join())),
	)
	return fragments, nil
}

// ocrPage renders a page to an image and OCRs it. Any failure yields an
// empty contribution, never an aborted extraction.
func (s *ExtractService) ocrPage(fdoc *fitz.Document, ocr *gosseract.Client, name string, page int) string {
	img, err := fdoc.Image(page)
	if err != nil {
		s.logger.Warn("failed to rasterize page",
			zap.String("document", name),
			zap.Int("page", page+1),
			zap.Error(err),
		)
		return ""
	}
	text, err := s.recognize(ocr, img)
	if err != nil {
		s.logger.Warn("OCR failed for page",
			zap.String("document", name),
			zap.Int("page", page+1),
			zap.Error(err),
		)
		return ""
	}
	return text
}

func (s *ExtractService) extractImage(ctx context.Context, doc types.Document) (types.ExtractedText, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(doc.Data)); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedDocument, err)
	}

	ocr := gosseract.NewClient()
	defer ocr.Close()
	if err := ocr.SetLanguage(s.ocrLanguages...); err != nil {
		s.logger.Warn("failed to set OCR languages", zap.Strings("languages", s.ocrLanguages), zap.Error(err))
	}
	if err := ocr.SetImageFromBytes(doc.Data); err != nil {
		s.logger.Warn("OCR rejected image", zap.String("document", doc.Name), zap.Error(err))
		return types.ExtractedText{""}, nil
	}
	text, err := ocr.Text()
	if err != nil {
		s.logger.Warn("OCR failed for image", zap.String("document", doc.Name), zap.Error(err))
		return types.ExtractedText{""}, nil
	}
	return types.ExtractedText{strings.TrimSpace(text)}, nil
}

func (s *ExtractService) recognize(ocr *gosseract.Client, img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode page image: %w", err)
	}
	if err := ocr.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to load page image: %w", err)
	}
	text, err := ocr.Text()
	if err != nil {
		return "", fmt.Errorf("failed to run OCR: %w", err)
	}
	return strings.TrimSpace(text), nil
}
