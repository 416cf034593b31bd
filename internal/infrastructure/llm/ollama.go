package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"HamptonCollector/internal/config"
)

// OllamaClient talks to a local inference endpoint over its generate API.
type OllamaClient struct {
	endpoint    string
	model       string
	temperature float64
	httpClient  *http.Client
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewOllamaClient builds a client from configuration, filling in the local
// endpoint and model defaults.
func NewOllamaClient(cfg config.OllamaConfig) *OllamaClient {
	endpoint := strings.TrimSuffix(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = "http://localhost:11434"
	}
	model := cfg.Model
	if model == "" {
		model = "llama3"
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}
	return &OllamaClient{
		endpoint:    endpoint,
		model:       model,
		temperature: temperature,
		httpClient:  &http.Client{Timeout: 5 * time.Minute},
	}
}

// Provider names the backend for result attribution.
func (c *OllamaClient) Provider() string { return "ollama" }

// Model reports the configured model name.
func (c *OllamaClient) Model() string { return c.model }

// Complete posts the prompt and returns the raw response text.
func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	payload := ollamaGenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]any{
			"temperature": c.temperature,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal generate payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("ollama error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var decoded ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	return decoded.Response, nil
}
