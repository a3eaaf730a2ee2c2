package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv resets every variable NewFromEnv reads so tests don't leak host settings.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GROQ_API_KEY", "GEMINI_API_KEY", "LLM_PROVIDER", "LLM_MODEL",
		"DATABASE_PATH", "PORT", "REDIS_ADDR", "RESULT_TTL_MINUTES",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_WEBHOOK_URL", "TELEGRAM_ALLOWED_USER_IDS",
		"GHOST_API_URL", "GHOST_ADMIN_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		clearEnv(t)

		cfg, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, ProviderGroq, cfg.LLMProvider)
		assert.Equal(t, "data/study-planner.db", cfg.DatabasePath)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, 30*time.Minute, cfg.ResultTTL)
		assert.False(t, cfg.TelegramEnabled())
		assert.False(t, cfg.GhostEnabled())
	})

	t.Run("MissingAPIKeyIsNotAnError", func(t *testing.T) {
		clearEnv(t)

		cfg, err := NewFromEnv()
		require.NoError(t, err)
		assert.Empty(t, cfg.APIKey())
	})

	t.Run("SelectsProviderKey", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GROQ_API_KEY", "groq_key")
		t.Setenv("GEMINI_API_KEY", "gemini_key")

		cfg, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "groq_key", cfg.APIKey())

		t.Setenv("LLM_PROVIDER", "Gemini")
		cfg, err = NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, ProviderGemini, cfg.LLMProvider)
		assert.Equal(t, "gemini_key", cfg.APIKey())
	})

	t.Run("UnknownProvider", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LLM_PROVIDER", "openai")

		_, err := NewFromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LLM_PROVIDER")
	})

	t.Run("InvalidTTL", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RESULT_TTL_MINUTES", "soon")

		_, err := NewFromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "RESULT_TTL_MINUTES")
	})

	t.Run("TelegramAndGhost", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TELEGRAM_BOT_TOKEN", "token")
		t.Setenv("TELEGRAM_WEBHOOK_URL", "https://bot.test/webhook")
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "12, 34")
		t.Setenv("GHOST_API_URL", "http://ghost.test/")
		t.Setenv("GHOST_ADMIN_API_KEY", "id:abcd")

		cfg, err := NewFromEnv()
		require.NoError(t, err)
		assert.True(t, cfg.TelegramEnabled())
		assert.Equal(t, []int64{12, 34}, cfg.TelegramAllowedUserIDs)
		assert.True(t, cfg.GhostEnabled())
		assert.Equal(t, "http://ghost.test", cfg.GhostURL)
	})

	t.Run("InvalidUserID", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "12,abc")

		_, err := NewFromEnv()
		require.Error(t, err)
	})
}
