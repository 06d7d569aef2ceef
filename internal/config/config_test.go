package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv removes keys for the duration of the test so that .env loading
// can be observed; t.Setenv cannot express "absent".
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		key := key
		prev, ok := os.LookupEnv(key)
		require.NoError(t, os.Unsetenv(key))
		t.Cleanup(func() {
			if ok {
				_ = os.Setenv(key, prev)
			} else {
				_ = os.Unsetenv(key)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(dotEnvPathEnv, filepath.Join(t.TempDir(), "missing.env"))

	cfg := Load()

	assert.Equal(t, "https://newsapi.org", cfg.NewsAPI.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Pipeline.ItemDelay)
	assert.Equal(t, []string{"cybersecurity", "seo"}, cfg.Pipeline.Categories)
	assert.Equal(t, "draft", cfg.WordPress.PostStatus)
	assert.NotNil(t, cfg.Scheduler.Location())
}

func TestLoadFileDotEnvAndOverrides(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
newsapi:
  language: de
  maxRetries: 5
wordpress:
  baseUrl: https://cms.example.org
pipeline:
  itemDelay: 500ms
  categories: [seo]
kafka:
  brokers: [k1:9092]
`), 0o600))

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("OPENAI_API_KEY=from-dotenv\nWORDPRESS_USERNAME=editor\n"), 0o600))

	unsetEnv(t, openAIKeyEnv, wordPressUserEnv)
	t.Setenv(configPathEnv, yamlPath)
	t.Setenv(dotEnvPathEnv, envPath)
	t.Setenv(newsAPIKeyEnv, "news-key")
	t.Setenv(wordPressPasswordEnv, "secret")
	t.Setenv(kafkaBrokersEnv, "a:9092, b:9092 ,")
	t.Setenv(itemDelayEnv, "3")

	cfg := Load()

	assert.Equal(t, "de", cfg.NewsAPI.Language)
	assert.Equal(t, 5, cfg.NewsAPI.MaxRetries)
	assert.Equal(t, "https://newsapi.org", cfg.NewsAPI.BaseURL, "defaults survive partial files")
	assert.Equal(t, "https://cms.example.org", cfg.WordPress.BaseURL)
	assert.Equal(t, []string{"seo"}, cfg.Pipeline.Categories)
	assert.Equal(t, "news-key", cfg.NewsAPI.APIKey)
	assert.Equal(t, "from-dotenv", cfg.OpenAI.APIKey)
	assert.Equal(t, "editor", cfg.WordPress.Username)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 3*time.Second, cfg.Pipeline.ItemDelay)

	require.NoError(t, cfg.Validate())
}

func TestValidateReportsMissingCredentials(t *testing.T) {
	t.Parallel()

	err := defaultConfig().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), newsAPIKeyEnv)
	assert.Contains(t, err.Error(), openAIKeyEnv)
	assert.Contains(t, err.Error(), wordPressBaseURLEnv)
}

func TestTelegramEnabled(t *testing.T) {
	t.Parallel()

	assert.False(t, TelegramConfig{BotToken: "x"}.Enabled())
	assert.True(t, TelegramConfig{BotToken: "x", ChatID: "1"}.Enabled())
}
