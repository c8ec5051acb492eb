// Package narrative attaches generated natural-language text to structured
// results. Generation is best-effort: the structured data is authoritative.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dcode-github/capetown_discovery/backend/models"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const systemPrompt = "You are a concise local guide for Cape Town. Base every statement on the data " +
	"provided in the prompt. Do not invent listings, prices or facilities."

// Generator produces narrative text from a prompt and optional conversation
// history.
type Generator interface {
	Generate(ctx context.Context, prompt string, history []models.ChatMessage) (string, error)
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// New selects the generator once at startup: the OpenAI-compatible client
// when an API key is configured, the placeholder otherwise.
func New(cfg Config, log *zap.Logger) Generator {
	if strings.TrimSpace(cfg.APIKey) == "" {
		log.Info("narrative generation disabled, no API key configured")
		return Placeholder{}
	}
	log.Info("narrative generation enabled", zap.String("model", cfg.Model))
	return NewOpenAI(cfg)
}

// OpenAIGenerator calls a chat completion endpoint of any OpenAI-compatible
// API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

func NewOpenAI(cfg Config) *OpenAIGenerator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string, history []models.ChatMessage) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == openai.ChatMessageRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: messages,
	})
	if err != nil {
		return "", parseAPIError(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("empty completion: %w", models.ErrUnavailable)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// parseAPIError keeps the provider status and message. Every error wraps
// models.ErrUnavailable.
func parseAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("completion API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, models.ErrUnavailable)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("completion API error %d: %w", reqErr.HTTPStatusCode, models.ErrUnavailable)
	}
	return fmt.Errorf("completion request failed: %v: %w", err, models.ErrUnavailable)
}

// Placeholder is the generator used when no credential is configured. It
// always reports itself unavailable.
type Placeholder struct{}

func (Placeholder) Generate(context.Context, string, []models.ChatMessage) (string, error) {
	return "", fmt.Errorf("no API key configured: %w", models.ErrUnavailable)
}
