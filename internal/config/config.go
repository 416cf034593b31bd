package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "HAMPTON_COLLECTOR_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	aiProviderEnv     = "AI_PROVIDER"
	ollamaEndpointEnv = "OLLAMA_ENDPOINT"
	ollamaModelEnv    = "OLLAMA_MODEL"
	openAIKeyEnv      = "OPENAI_API_KEY"
	openAIModelEnv    = "OPENAI_MODEL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Collector     CollectorConfig    `yaml:"collector"`
	Browser       BrowserConfig      `yaml:"browser"`
	AI            AIConfig           `yaml:"ai"`
	Notifications NotificationConfig `yaml:"notifications"`
	Sources       []SourceConfig     `yaml:"sources"`
}

// LoggingConfig controls console log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN disables
// persistence entirely; a run then only reports its in-memory collection.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines recurring runs. A zero interval means one-shot.
type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// CollectorConfig bounds fan-out across sources within a category phase.
type CollectorConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// BrowserConfig tunes the headless browser used for rendered pages and
// document search.
type BrowserConfig struct {
	Timeout           time.Duration `yaml:"timeout"`
	SearchResultLimit int           `yaml:"searchResultLimit"`
}

// AIConfig selects and configures the analysis provider.
type AIConfig struct {
	Provider         string       `yaml:"provider"`
	Ollama           OllamaConfig `yaml:"ollama"`
	OpenAI           OpenAIConfig `yaml:"openai"`
	Prompt           string       `yaml:"prompt"`
	MaxDocumentChars int          `yaml:"maxDocumentChars"`
}

// OllamaConfig points at a local inference endpoint.
type OllamaConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// OpenAIConfig wires the hosted provider.
type OpenAIConfig struct {
	APIKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SourceConfig describes a single registry entry. Kind selects the fetch
// mechanism; the matching extractor or transform is resolved by name from the
// source catalog.
type SourceConfig struct {
	Name         string            `yaml:"name"`
	Kind         string            `yaml:"kind"` // api | page | rendered | search
	Category     string            `yaml:"category"`
	URL          string            `yaml:"url"`
	Params       map[string]string `yaml:"params"`
	Query        string            `yaml:"query"`
	Jurisdiction string            `yaml:"jurisdiction"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(aiProviderEnv); v != "" {
		c.AI.Provider = v
	}
	if v := os.Getenv(ollamaEndpointEnv); v != "" {
		c.AI.Ollama.Endpoint = v
	}
	if v := os.Getenv(ollamaModelEnv); v != "" {
		c.AI.Ollama.Model = v
	}
	if v := os.Getenv(openAIKeyEnv); v != "" && c.AI.OpenAI.APIKey == "" {
		c.AI.OpenAI.APIKey = v
	}
	if v := os.Getenv(openAIModelEnv); v != "" {
		c.AI.OpenAI.Model = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Scheduler.Interval != 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}

	if override.Collector.Concurrency != 0 {
		base.Collector.Concurrency = override.Collector.Concurrency
	}

	if override.Browser.Timeout != 0 {
		base.Browser.Timeout = override.Browser.Timeout
	}
	if override.Browser.SearchResultLimit != 0 {
		base.Browser.SearchResultLimit = override.Browser.SearchResultLimit
	}

	if override.AI.Provider != "" {
		base.AI.Provider = override.AI.Provider
	}
	if override.AI.Ollama.Endpoint != "" {
		base.AI.Ollama.Endpoint = override.AI.Ollama.Endpoint
	}
	if override.AI.Ollama.Model != "" {
		base.AI.Ollama.Model = override.AI.Ollama.Model
	}
	if override.AI.Ollama.Temperature != 0 {
		base.AI.Ollama.Temperature = override.AI.Ollama.Temperature
	}
	if override.AI.OpenAI.APIKey != "" {
		base.AI.OpenAI.APIKey = override.AI.OpenAI.APIKey
	}
	if override.AI.OpenAI.Model != "" {
		base.AI.OpenAI.Model = override.AI.OpenAI.Model
	}
	if override.AI.Prompt != "" {
		base.AI.Prompt = override.AI.Prompt
	}
	if override.AI.MaxDocumentChars != 0 {
		base.AI.MaxDocumentChars = override.AI.MaxDocumentChars
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Database:  DatabaseConfig{DSN: ""},
		Scheduler: SchedulerConfig{Interval: 0},
		Collector: CollectorConfig{Concurrency: 4},
		Browser:   BrowserConfig{Timeout: 45 * time.Second, SearchResultLimit: 10},
		AI: AIConfig{
			Provider:         "ollama",
			Ollama:           OllamaConfig{Endpoint: "http://localhost:11434", Model: "llama3", Temperature: 0.3},
			OpenAI:           OpenAIConfig{APIKey: "", Model: "gpt-4"},
			MaxDocumentChars: 8000,
		},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		},
		Sources: defaultSources(),
	}
}

// defaultSources is the built-in Hampton Roads registry: government open-data
// APIs, planning and economic-development pages, and primary-document search
// queries. Catalog entries in internal/sources must exist for every name.
func defaultSources() []SourceConfig {
	return []SourceConfig{
		{
			Name:     "virginia-beach-permits",
			Kind:     "api",
			Category: "permits",
			URL:      "https://data.virginiabeach.gov/resource/building-permits.json",
			Params: map[string]string{
				"$limit": "100",
				"$order": "issue_date DESC",
			},
			Jurisdiction: "Virginia Beach",
		},
		{
			Name:     "norfolk-permits",
			Kind:     "api",
			Category: "permits",
			URL:      "https://data.norfolk.gov/resource/building-permits.json",
			Params: map[string]string{
				"$limit": "100",
				"$order": "issued_date DESC",
			},
			Jurisdiction: "Norfolk",
		},
		{
			Name:         "hrpdc-planning",
			Kind:         "page",
			Category:     "planning",
			URL:          "https://www.hrpdcva.gov/departments/planning/reports/",
			Jurisdiction: "Hampton Roads",
		},
		{
			Name:         "virginia-beach-planning",
			Kind:         "rendered",
			Category:     "planning",
			URL:          "https://planning.virginiabeach.gov/planning/plans-studies",
			Jurisdiction: "Virginia Beach",
		},
		{
			Name:         "hreda-reports",
			Kind:         "page",
			Category:     "economic",
			URL:          "https://www.hamptonroadseda.org/research/",
			Jurisdiction: "Hampton Roads",
		},
		{
			Name:         "norfolk-econdev",
			Kind:         "rendered",
			Category:     "economic",
			URL:          "https://www.norfolkdevelopment.com/reports",
			Jurisdiction: "Norfolk",
		},
		{
			Name:         "search-comprehensive-plans",
			Kind:         "search",
			Category:     "government",
			Query:        "Hampton Roads comprehensive plan",
			Jurisdiction: "Hampton Roads",
		},
		{
			Name:         "search-capital-improvement",
			Kind:         "search",
			Category:     "government",
			Query:        "Virginia Beach capital improvement program",
			Jurisdiction: "Virginia Beach",
		},
		{
			Name:         "search-zoning-updates",
			Kind:         "search",
			Category:     "government",
			Query:        "Norfolk zoning ordinance update",
			Jurisdiction: "Norfolk",
		},
	}
}
