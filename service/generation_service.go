package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/workmate-ai/assistant-be/config"
)

const generationSystemPrompt = "You are an assistant for company employees. " +
	"Answer using only the provided text. Respond in plain prose of %d to %d words."

// OpenAIGenerator produces summaries and answers through an OpenAI-compatible
// chat-completion endpoint. Temperature is pinned to zero so identical input
// and bounds produce identical output.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func newOpenAIGenerator(cfg *config.Config, logger *zap.Logger) (*OpenAIGenerator, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	clientConfig.BaseURL = cfg.AI.BaseURL
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Generation.Model,
		logger: logger,
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, input string, band config.LengthBand) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0,
		MaxTokens:   band.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(generationSystemPrompt, band.MinWords, band.MaxWords),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: input,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response generated")
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	g.logger.Debug("generation completed",
		zap.Int("input_length", len(input)),
		zap.Int("output_length", len(out)),
	)
	return out, nil
}

// GeminiGenerator is the alternative generation backend, selected with
// generation.backend: gemini.
type GeminiGenerator struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

func newGeminiGenerator(cfg *config.Config, logger *zap.Logger) (*GeminiGenerator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiGenerator{
		client: client,
		model:  cfg.Generation.Model,
		logger: logger,
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, input string, band config.LengthBand) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(0)
	model.SetMaxOutputTokens(int32(band.MaxTokens))
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(fmt.Sprintf(generationSystemPrompt, band.MinWords, band.MaxWords))},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(input))
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no response generated")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String()), nil
}
