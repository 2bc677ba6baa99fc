package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	// Core
	BotToken    string `env:"BOT_TOKEN,required,notEmpty"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// Generative fallback
	LLMProvider         string        `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIKey           string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL       string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIModel         string        `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	GeminiKey           string        `env:"GEMINI_API_KEY"`
	GeminiModel         string        `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	FallbackMaxTokens   int           `env:"FALLBACK_MAX_TOKENS" envDefault:"150"`
	FallbackTemperature float32       `env:"FALLBACK_TEMPERATURE" envDefault:"0.5"`
	FallbackTimeout     time.Duration `env:"FALLBACK_TIMEOUT" envDefault:"20s"`
	SystemRulesFile     string        `env:"SYSTEM_RULES_FILE"`

	// Catalog
	CatalogTimeout  time.Duration `env:"CATALOG_TIMEOUT" envDefault:"5s"`
	FuzzyThreshold  int           `env:"FUZZY_THRESHOLD" envDefault:"70"`
	RedisURL        string        `env:"REDIS_URL"`
	ProductNamesTTL time.Duration `env:"PRODUCT_NAMES_TTL" envDefault:"5m"`

	// Rate limit (per chat, per minute)
	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`

	// Server
	Port int `env:"PORT" envDefault:"3000"`

	// Bot behavior
	BotName            string `env:"BOT_NAME" envDefault:"MesaBot"`
	BusinessName       string `env:"BUSINESS_NAME" envDefault:"El Costeñito"`
	DropPendingUpdates bool   `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`

	// Telegram logging
	LogTelegramChatID int64 `env:"LOG_TELEGRAM_CHAT_ID"`
	LogTopicError     int   `env:"LOG_TOPIC_ERROR"`
	LogTopicFeedback  int   `env:"LOG_TOPIC_FEEDBACK"`
}

// Load reads a .env file when present and then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIKey == "" {
			return errors.New("validate config: OPENAI_API_KEY is required for the openai provider")
		}
	case ProviderGemini:
		if c.GeminiKey == "" {
			return errors.New("validate config: GEMINI_API_KEY is required for the gemini provider")
		}
	default:
		return fmt.Errorf("validate config: unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 100 {
		return fmt.Errorf("validate config: FUZZY_THRESHOLD must be within 0..100, got %d", c.FuzzyThreshold)
	}
	return nil
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
