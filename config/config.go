package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the full configuration surface of the service. Everything except
// secrets lives in the YAML file; secrets are bound to environment variables.
type Config struct {
	Port                  string           `mapstructure:"port"`
	LogLevel              string           `mapstructure:"log_level"`
	RequestTimeoutSeconds int              `mapstructure:"request_timeout_seconds"`
	AI                    AIConfig         `mapstructure:"ai"`
	Generation            GenerationConfig `mapstructure:"generation"`
	Extraction            ExtractionConfig `mapstructure:"extraction"`
	Retrieval             RetrievalConfig  `mapstructure:"retrieval"`
	Sanitizer             SanitizerConfig  `mapstructure:"sanitizer"`
	Corpus                []string         `mapstructure:"corpus"`
	OpenAIAPIKey          string           `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKey          string           `mapstructure:"GEMINI_API_KEY"`
}

type AIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	EmbeddingModel string `mapstructure:"embedding_model"`
}

type GenerationConfig struct {
	Backend     string     `mapstructure:"backend"` // "openai" or "gemini"
	Model       string     `mapstructure:"model"`
	SummaryBand LengthBand `mapstructure:"summary_band"`
	ChatBand    LengthBand `mapstructure:"chat_band"`
}

// LengthBand bounds generated output. The word bounds are handed to the model
// as a decoding instruction; MaxTokens is the hard decoder stop.
type LengthBand struct {
	MinWords  int `mapstructure:"min_words"`
	MaxWords  int `mapstructure:"max_words"`
	MaxTokens int `mapstructure:"max_tokens"`
}

type ExtractionConfig struct {
	MaxDocumentChars int      `mapstructure:"max_document_chars"`
	OCRLanguages     []string `mapstructure:"ocr_languages"`
}

type RetrievalConfig struct {
	MaxQueryChars int `mapstructure:"max_query_chars"`
	// MaxContextDistance drops retrieved context whose L2 distance exceeds
	// it. Zero disables the cutoff and the nearest entry is always used.
	MaxContextDistance float64 `mapstructure:"max_context_distance"`
}

type SanitizerConfig struct {
	RedactionMarker string   `mapstructure:"redaction_marker"`
	Denylist        []string `mapstructure:"denylist"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("GEMINI_API_KEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("request_timeout_seconds", 60)
	v.SetDefault("ai.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.embedding_model", "text-embedding-3-small")
	v.SetDefault("generation.backend", "openai")
	v.SetDefault("generation.model", "gpt-4o-mini")
	v.SetDefault("generation.summary_band.min_words", 60)
	v.SetDefault("generation.summary_band.max_words", 220)
	v.SetDefault("generation.summary_band.max_tokens", 512)
	v.SetDefault("generation.chat_band.min_words", 10)
	v.SetDefault("generation.chat_band.max_words", 80)
	v.SetDefault("generation.chat_band.max_tokens", 192)
	v.SetDefault("extraction.max_document_chars", 16000)
	v.SetDefault("extraction.ocr_languages", []string{"eng"})
	v.SetDefault("retrieval.max_query_chars", 2000)
	v.SetDefault("retrieval.max_context_distance", 0.0)
	v.SetDefault("sanitizer.redaction_marker", "[CENSORED]")
}

func (c *Config) Validate() error {
	if len(c.Corpus) == 0 {
		return fmt.Errorf("config: corpus must contain at least one entry")
	}
	for _, band := range []LengthBand{c.Generation.SummaryBand, c.Generation.ChatBand} {
		if band.MinWords <= 0 || band.MaxWords < band.MinWords || band.MaxTokens <= 0 {
			return fmt.Errorf("config: invalid length band %+v", band)
		}
	}
	if c.Extraction.MaxDocumentChars <= 0 || c.Retrieval.MaxQueryChars <= 0 {
		return fmt.Errorf("config: character limits must be positive")
	}
	return nil
}

// RequestTimeout is the per-request deadline covering extraction, embedding
// and generation for a single operation.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
