package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/quarry-labs/docquery/internal/domain"
)

// Generator produces answers via the chat completions endpoint of an
// OpenAI-compatible API.
type Generator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	provider    string
	logger      *zap.Logger
}

// GeneratorConfig holds the answer generator settings.
type GeneratorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Provider    string
	Logger      *zap.Logger
}

// NewGenerator creates an OpenAI-compatible chat completion generator.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		provider:    cfg.Provider,
		logger:      cfg.Logger,
	}
}

const systemPrompt = "You are a helpful assistant that answers questions based strictly on the provided context. " +
	"Always cite your sources using [Source X] notation when referencing information."

// Generate implements domain.AnswerGenerator.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", parseGenerationAPIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response: %w", domain.ErrGenerationProvider)
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", fmt.Errorf("blank completion content: %w", domain.ErrGenerationProvider)
	}

	return answer, nil
}

// parseGenerationAPIError maps provider failures onto generation sentinels.
// Auth and quota failures are permanent (502), transient 5xx failures map
// to ErrGenerationUnavailable so callers can degrade to extractive answers.
func parseGenerationAPIError(err error) error {
	status := 0
	message := ""

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		status = reqErr.HTTPStatusCode
		message = string(reqErr.Body)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatusCode
		message = apiErr.Message
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("completion API error %d: %s: %w", status, message, domain.ErrGenerationAuth)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("completion API error %d: %s: %w", status, message, domain.ErrGenerationRateLimited)
	case status >= 500:
		return fmt.Errorf("completion API error %d: %s: %w", status, message, domain.ErrGenerationUnavailable)
	case status > 0:
		return fmt.Errorf("completion API error %d: %s: %w", status, message, domain.ErrGenerationProvider)
	}

	// No HTTP status means the request never completed (network, timeout).
	return fmt.Errorf("completion request failed: %v: %w", err, domain.ErrGenerationUnavailable)
}
