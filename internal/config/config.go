package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider names accepted in LLM_PROVIDER.
const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

// Config holds the configuration for the application.
// It is loaded once at startup and passed explicitly to the components that need it.
type Config struct {
	GroqAPIKey   string
	GeminiAPIKey string
	LLMProvider  string
	LLMModel     string

	DatabasePath string
	Port         string

	// Result store
	RedisAddr string
	ResultTTL time.Duration

	// Telegram Config (optional)
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64

	// Ghost Config (optional, used for publishing plans)
	GhostURL      string
	GhostAdminKey string
}

// NewFromEnv creates a new Config object from environment variables.
// A missing API key is not an error here: the planner reports it before any request is made.
func NewFromEnv() (*Config, error) {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
	if provider == "" {
		provider = ProviderGroq
	}
	if provider != ProviderGroq && provider != ProviderGemini {
		return nil, fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", ProviderGroq, ProviderGemini, provider)
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "data/study-planner.db"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	ttl := 30 * time.Minute
	if v := os.Getenv("RESULT_TTL_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("RESULT_TTL_MINUTES must be a positive integer, got %q", v)
		}
		ttl = time.Duration(minutes) * time.Minute
	}

	allowed, err := parseUserIDs(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, err
	}

	return &Config{
		GroqAPIKey:             os.Getenv("GROQ_API_KEY"),
		GeminiAPIKey:           os.Getenv("GEMINI_API_KEY"),
		LLMProvider:            provider,
		LLMModel:               os.Getenv("LLM_MODEL"),
		DatabasePath:           dbPath,
		Port:                   port,
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		ResultTTL:              ttl,
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowed,
		GhostURL:               strings.TrimRight(os.Getenv("GHOST_API_URL"), "/"),
		GhostAdminKey:          os.Getenv("GHOST_ADMIN_API_KEY"),
	}, nil
}

// APIKey returns the key of the selected completion provider, or "" when it is not set.
func (c *Config) APIKey() string {
	if c.LLMProvider == ProviderGemini {
		return c.GeminiAPIKey
	}
	return c.GroqAPIKey
}

// TelegramEnabled reports whether the bot should be started.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramWebhookURL != ""
}

// GhostEnabled reports whether plans can be published to Ghost.
func (c *Config) GhostEnabled() bool {
	return c.GhostURL != "" && c.GhostAdminKey != ""
}

func parseUserIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_ALLOWED_USER_IDS contains an invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
