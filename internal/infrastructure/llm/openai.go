package llm

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"HamptonCollector/internal/config"
)

const analysisSystemPrompt = "You are a document analyst for a regional government data portal. " +
	"Always respond with a single JSON object and nothing else."

// OpenAIClient wraps the hosted chat-completion API.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAIClient builds a client from configuration, falling back to the
// OPENAI_API_KEY environment variable. A missing key is a hard error here;
// the analyzer surfaces it as an error result rather than a panic.
func NewOpenAIClient(cfg config.OpenAIConfig) (*OpenAIClient, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is not configured")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4"
	}

	return &OpenAIClient{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: 0.3,
	}, nil
}

// Provider names the backend for result attribution.
func (c *OpenAIClient) Provider() string { return "openai" }

// Model reports the configured model name.
func (c *OpenAIClient) Model() string { return c.model }

// Complete sends a system+user message pair requesting JSON output and
// returns the first choice's content.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: analysisSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("call openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
