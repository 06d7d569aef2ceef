package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "Europe/Sofia"

	configPathEnv = "LUNARO_CONFIG"
	dotEnvPathEnv = "ENV_PATH"

	logLevelEnv          = "LOG_LEVEL"
	newsAPIKeyEnv        = "NEWS_API_KEY"
	openAIKeyEnv         = "OPENAI_API_KEY"
	openAIModelEnv       = "OPENAI_MODEL"
	wordPressBaseURLEnv  = "WORDPRESS_BASE_URL"
	wordPressUserEnv     = "WORDPRESS_USERNAME"
	wordPressPasswordEnv = "WORDPRESS_PASSWORD"
	databaseDSNEnv       = "DATABASE_DSN"
	telegramTokenEnv     = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv    = "TELEGRAM_CHAT_ID"
	kafkaBrokersEnv      = "KAFKA_BROKERS"
	valkeyAddressEnv     = "VALKEY_ADDRESS"
	valkeyPasswordEnv    = "VALKEY_PASSWORD"
	adminAddrEnv         = "ADMIN_ADDR"
	adminTokenEnv        = "ADMIN_TOKEN"
	itemDelayEnv         = "PIPELINE_ITEM_DELAY"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	NewsAPI       NewsAPIConfig      `yaml:"newsapi"`
	OpenAI        OpenAIConfig       `yaml:"openai"`
	WordPress     WordPressConfig    `yaml:"wordpress"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
	Kafka         KafkaConfig        `yaml:"kafka"`
	Valkey        ValkeyConfig       `yaml:"valkey"`
	Admin         AdminConfig        `yaml:"admin"`
}

// LoggingConfig selects level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// NewsAPIConfig describes the news source.
type NewsAPIConfig struct {
	BaseURL        string        `yaml:"baseUrl"`
	APIKey         string        `yaml:"apiKey"`
	Language       string        `yaml:"language"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     int           `yaml:"maxRetries"`
	InitialBackoff time.Duration `yaml:"initialBackoff"`
	MaxBackoff     time.Duration `yaml:"maxBackoff"`
}

// OpenAIConfig defines how to contact the enrichment service.
type OpenAIConfig struct {
	BaseURL      string        `yaml:"baseUrl"`
	APIKey       string        `yaml:"apiKey"`
	Model        string        `yaml:"model"`
	SystemPrompt string        `yaml:"systemPrompt"`
	Temperature  float32       `yaml:"temperature"`
	MaxTokens    int           `yaml:"maxTokens"`
	Timeout      time.Duration `yaml:"timeout"`
}

// WordPressConfig holds content store credentials.
type WordPressConfig struct {
	BaseURL    string        `yaml:"baseUrl"`
	Username   string        `yaml:"username"`
	Password   string        `yaml:"password"`
	PostStatus string        `yaml:"postStatus"`
	Timeout    time.Duration `yaml:"timeout"`
}

// PipelineConfig tunes the orchestrator.
type PipelineConfig struct {
	ItemDelay     time.Duration `yaml:"itemDelay"`
	DefaultLimit  int           `yaml:"defaultLimit"`
	MaxLimit      int           `yaml:"maxLimit"`
	MaxImageBytes int64         `yaml:"maxImageBytes"`
	ImageTimeout  time.Duration `yaml:"imageTimeout"`
	Categories    []string      `yaml:"categories"`
}

// DatabaseConfig describes the optional publication ledger.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines when the pipeline runs unattended. A zero
// interval disables scheduling.
type SchedulerConfig struct {
	Interval time.Duration  `yaml:"interval"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	return time.UTC
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	BaseURL  string `yaml:"baseUrl"`
}

// Enabled reports whether both credentials are present.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// KafkaConfig describes the optional event sink.
type KafkaConfig struct {
	Brokers  []string `yaml:"brokers"`
	Topic    string   `yaml:"topic"`
	ClientID string   `yaml:"clientId"`
}

// ValkeyConfig describes the optional distributed category lock.
type ValkeyConfig struct {
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"`
	LockTTL  time.Duration `yaml:"lockTtl"`
}

// AdminConfig describes the operator trigger API.
type AdminConfig struct {
	Addr        string   `yaml:"addr"`
	Token       string   `yaml:"token"`
	CorsOrigins []string `yaml:"corsOrigins"`
}

// Load reads YAML configuration (if present), a .env file (if present)
// and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			slog.Warn("config: cannot read file, falling back to defaults", "path", path, "error", err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			slog.Warn("config: cannot parse file, falling back to defaults", "path", path, "error", err)
			cfg = defaultConfig()
		}
	}

	loadDotEnv()
	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Pipeline.Categories) == 0 {
		cfg.Pipeline.Categories = defaultConfig().Pipeline.Categories
	}

	return cfg
}

// Validate reports missing mandatory settings.
func (c Config) Validate() error {
	var errs []error
	if c.NewsAPI.APIKey == "" {
		errs = append(errs, fmt.Errorf("%s is required", newsAPIKeyEnv))
	}
	if c.OpenAI.APIKey == "" {
		errs = append(errs, fmt.Errorf("%s is required", openAIKeyEnv))
	}
	if c.WordPress.BaseURL == "" {
		errs = append(errs, fmt.Errorf("%s is required", wordPressBaseURLEnv))
	}
	if c.WordPress.Username == "" || c.WordPress.Password == "" {
		errs = append(errs, fmt.Errorf("%s and %s are required", wordPressUserEnv, wordPressPasswordEnv))
	}
	if c.Pipeline.DefaultLimit < 1 {
		errs = append(errs, errors.New("pipeline.defaultLimit must be positive"))
	}
	return errors.Join(errs...)
}

func loadDotEnv() {
	path := os.Getenv(dotEnvPathEnv)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		slog.Debug("config: skipping .env", "path", path, "error", err)
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.NewsAPI.APIKey = v
	}
	if v := os.Getenv(openAIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv(openAIModelEnv); v != "" {
		c.OpenAI.Model = v
	}
	if v := os.Getenv(wordPressBaseURLEnv); v != "" {
		c.WordPress.BaseURL = v
	}
	if v := os.Getenv(wordPressUserEnv); v != "" {
		c.WordPress.Username = v
	}
	if v := os.Getenv(wordPressPasswordEnv); v != "" {
		c.WordPress.Password = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
	if v := os.Getenv(kafkaBrokersEnv); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv(valkeyAddressEnv); v != "" {
		c.Valkey.Address = v
	}
	if v := os.Getenv(valkeyPasswordEnv); v != "" {
		c.Valkey.Password = v
	}
	if v := os.Getenv(adminAddrEnv); v != "" {
		c.Admin.Addr = v
	}
	if v := os.Getenv(adminTokenEnv); v != "" {
		c.Admin.Token = v
	}
	if v := os.Getenv(itemDelayEnv); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Pipeline.ItemDelay = d
		} else if secs, err := strconv.Atoi(v); err == nil {
			c.Pipeline.ItemDelay = time.Duration(secs) * time.Second
		} else {
			slog.Warn("config: invalid item delay, keeping default", "value", v)
		}
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		slog.Warn("config: unknown timezone, reverting to UTC", "timezone", tz)
		loc = time.UTC
	}
	c.Scheduler.location = loc
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "tint"},
		NewsAPI: NewsAPIConfig{
			BaseURL:        "https://newsapi.org",
			Language:       "en",
			Timeout:        20 * time.Second,
			MaxRetries:     3,
			InitialBackoff: time.Second,
			MaxBackoff:     16 * time.Second,
		},
		OpenAI: OpenAIConfig{
			Model:        "gpt-4o-mini",
			SystemPrompt: "Ти си редактор в българския технологичен сайт Lunaro News. Отговаряй точно по инструкциите.",
			Temperature:  0.7,
			MaxTokens:    3000,
			Timeout:      90 * time.Second,
		},
		WordPress: WordPressConfig{
			PostStatus: "draft",
			Timeout:    30 * time.Second,
		},
		Pipeline: PipelineConfig{
			ItemDelay:     2 * time.Second,
			DefaultLimit:  5,
			MaxLimit:      20,
			MaxImageBytes: 10 << 20,
			ImageTimeout:  20 * time.Second,
			Categories:    []string{"cybersecurity", "seo"},
		},
		Scheduler: SchedulerConfig{Timezone: defaultTimezone},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BaseURL: "https://api.telegram.org"},
		},
		Kafka:  KafkaConfig{Topic: "lunaro.articles.published", ClientID: "lunaronews"},
		Valkey: ValkeyConfig{LockTTL: 30 * time.Second},
		Admin:  AdminConfig{Addr: ":8080", CorsOrigins: []string{"*"}},
	}
}
