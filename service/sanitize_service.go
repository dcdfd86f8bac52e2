package service

import (
	"regexp"

	"go.uber.org/zap"

	"github.com/workmate-ai/assistant-be/config"
)

// SanitizeService masks disallowed terms before text reaches any model or
// log line. Matching is case-insensitive substring matching against a finite
// denylist; obfuscated variants slipping through is an accepted limitation.
type SanitizeService struct {
	patterns []*regexp.Regexp
	marker   string
	logger   *zap.Logger
}

func NewSanitizeService(cfg config.SanitizerConfig, logger *zap.Logger) *SanitizeService {
	marker := cfg.RedactionMarker
	if marker == "" {
		marker = "[CENSORED]"
	}
	patterns := make([]*regexp.Regexp, 0, len(cfg.Denylist))
	for _, term := range cfg.Denylist {
		if term == "" {
			continue
		}
		patterns = append(patterns, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(term)))
	}
	return &SanitizeService{
		patterns: patterns,
		marker:   marker,
		logger:   logger,
	}
}

// Sanitize replaces every denylist match with the redaction marker. The
// marker itself never matches a pattern, so sanitization is idempotent.
func (s *SanitizeService) Sanitize(text string) string {
	redacted := 0
	for _, pattern := range s.patterns {
		matches := pattern.FindAllStringIndex(text, -1)
		if len(matches) == 0 {
			continue
		}
		redacted += len(matches)
		text = pattern.ReplaceAllLiteralString(text, s.marker)
	}
	if redacted > 0 {
		s.logger.Info("sanitized input", zap.Int("redactions", redacted))
	}
	return text
}
