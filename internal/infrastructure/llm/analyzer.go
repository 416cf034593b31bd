package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"HamptonCollector/internal/config"
	"HamptonCollector/internal/domain"
	"HamptonCollector/internal/ports"
)

const defaultPrompt = `Analyze the following government document text. Return a JSON object with:
- "extractedData": key facts as an object (entities, dollar amounts, dates, locations)
- "relationships": an array of {"subject", "relation", "object"} triples
- "keyInsights": an array of short findings
- "confidence": a number between 0 and 1

Document text:
%s`

// Completer is one LLM backend. The concrete provider is chosen once at
// construction instead of branching on a provider-name string per call.
type Completer interface {
	Provider() string
	Model() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Analyzer turns record text into a structured analysis. It never returns an
// error: provider misconfiguration, transport failures, and unparseable model
// output all degrade to a result carrying an Error field.
type Analyzer struct {
	completer Completer
	prompt    string
	maxChars  int
	logger    *slog.Logger

	provider string
	initErr  error
}

var _ ports.Analyzer = (*Analyzer)(nil)

// NewAnalyzer selects a provider from configuration. Construction itself
// never fails; a bad provider setup is remembered and reported per call.
func NewAnalyzer(cfg config.AIConfig, logger *slog.Logger) *Analyzer {
	a := &Analyzer{
		prompt:   cfg.Prompt,
		maxChars: cfg.MaxDocumentChars,
		logger:   logger,
		provider: cfg.Provider,
	}
	if a.prompt == "" {
		a.prompt = defaultPrompt
	}
	if a.maxChars <= 0 {
		a.maxChars = 8000
	}

	switch cfg.Provider {
	case "", "ollama":
		a.provider = "ollama"
		a.completer = NewOllamaClient(cfg.Ollama)
	case "openai":
		client, err := NewOpenAIClient(cfg.OpenAI)
		if err != nil {
			a.initErr = err
		} else {
			a.completer = client
		}
	default:
		a.initErr = fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}

	return a
}

// Analyze runs one classification pass over the text.
func (a *Analyzer) Analyze(ctx context.Context, text string) domain.Analysis {
	now := time.Now().UTC()

	if a.initErr != nil {
		return domain.Analysis{
			Error:      a.initErr.Error(),
			Provider:   a.provider,
			AnalyzedAt: now,
		}
	}

	prompt := fmt.Sprintf(a.prompt, truncate(text, a.maxChars))

	raw, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		a.warn("analysis call failed", "provider", a.completer.Provider(), "error", err)
		return domain.Analysis{
			Error:      err.Error(),
			Provider:   a.completer.Provider(),
			Model:      a.completer.Model(),
			AnalyzedAt: now,
		}
	}

	result := parseAnalysis(raw, a.completer.Provider(), a.completer.Model(), now)
	if result.Failed() {
		a.warn("analysis response unparseable", "provider", result.Provider)
	}
	return result
}

// parseAnalysis decodes the model's JSON after stripping Markdown fences and
// applies permissive validation: confidence clamped to [0,1], nil collections
// replaced with empty ones. Undecodable output keeps the raw text.
func parseAnalysis(raw, provider, model string, at time.Time) domain.Analysis {
	cleaned := stripFences(raw)

	var payload struct {
		ExtractedData map[string]any        `json:"extractedData"`
		Relationships []domain.Relationship `json:"relationships"`
		KeyInsights   []string              `json:"keyInsights"`
		Confidence    float64               `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return domain.Analysis{
			Error:       fmt.Sprintf("failed to parse JSON from %s response", provider),
			RawResponse: raw,
			Provider:    provider,
			Model:       model,
			AnalyzedAt:  at,
		}
	}

	if payload.ExtractedData == nil {
		payload.ExtractedData = map[string]any{}
	}
	if payload.Relationships == nil {
		payload.Relationships = []domain.Relationship{}
	}
	if payload.KeyInsights == nil {
		payload.KeyInsights = []string{}
	}

	confidence := payload.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return domain.Analysis{
		ExtractedData: payload.ExtractedData,
		Relationships: payload.Relationships,
		KeyInsights:   payload.KeyInsights,
		Confidence:    confidence,
		Provider:      provider,
		Model:         model,
		AnalyzedAt:    at,
	}
}

// stripFences removes a surrounding Markdown code fence, with or without a
// language tag, so fenced JSON still decodes.
func stripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if newline := strings.Index(trimmed, "\n"); newline >= 0 {
		firstLine := strings.TrimSpace(trimmed[:newline])
		if firstLine == "" || isFenceTag(firstLine) {
			trimmed = trimmed[newline+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func isFenceTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func (a *Analyzer) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
