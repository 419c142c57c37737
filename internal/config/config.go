/*
Package config loads stockchat settings from a YAML file, fills in defaults and applies
environment variable overrides.
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Weaviate WeaviateConfig `yaml:"weaviate"`
	Redis    RedisConfig    `yaml:"redis"`
	Market   MarketConfig   `yaml:"market"`
	IQX      IQXConfig      `yaml:"iqx"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Email    EmailConfig    `yaml:"email"`
	Log      LogConfig      `yaml:"log"`
	Timezone string         `yaml:"timezone"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type GeminiConfig struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	EmbeddingModel string `yaml:"embedding_model"`
	Dimensions     int    `yaml:"dimensions"`
}

// WeaviateConfig selects the vector store. An empty URL keeps points in memory, which
// serve and ask accept and ingest refuses.
type WeaviateConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	Class  string `yaml:"class"`
}

// RedisConfig enables the shared symbol cache when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type MarketConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type IQXConfig struct {
	NewsURL    string        `yaml:"news_url"`
	InsightURL string        `yaml:"insight_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

type PipelineConfig struct {
	Workers         int           `yaml:"workers"`
	CallTimeout     time.Duration `yaml:"call_timeout"`
	ClassifyTimeout time.Duration `yaml:"classify_timeout"`
	MaxHistory      int           `yaml:"max_history"`
	HistoryDir      string        `yaml:"history_dir"`
	ValidateSymbols bool          `yaml:"validate_symbols"`
}

type IngestConfig struct {
	Workers       int     `yaml:"workers"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	BatchSize     int     `yaml:"batch_size"`
	EmbedRetries  int     `yaml:"embed_retries"`
}

type EmailConfig struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	SMTPUser   string `yaml:"smtp_user"`
	SMTPPass   string `yaml:"smtp_pass"`
	FromEmail  string `yaml:"from_email"`
	ToEmail    string `yaml:"to_email"`
}

// Enabled reports whether enough SMTP settings are present to send mail.
func (e EmailConfig) Enabled() bool {
	return e.SMTPServer != "" && e.SMTPUser != "" && e.SMTPPass != "" && e.ToEmail != ""
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns a configuration usable without a file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 5000},
		Gemini: GeminiConfig{
			Model:          "gemini-flash-latest",
			EmbeddingModel: "text-embedding-004",
			Dimensions:     768,
		},
		Weaviate: WeaviateConfig{Class: "FinancialStatement"},
		Redis:    RedisConfig{Prefix: "stockchat:symbols"},
		Market:   MarketConfig{BaseURL: "http://localhost:8000/api/v1", Timeout: 30 * time.Second},
		IQX: IQXConfig{
			NewsURL:    "https://proxy.iqx.vn/proxy/ai/api/v2",
			InsightURL: "https://proxy.iqx.vn/proxy/trading/api/iq-insight-service/v1",
			Timeout:    30 * time.Second,
		},
		Pipeline: PipelineConfig{
			Workers:         4,
			CallTimeout:     15 * time.Second,
			ClassifyTimeout: 10 * time.Second,
			MaxHistory:      10,
		},
		Ingest: IngestConfig{
			Workers:       5,
			RatePerSecond: 5,
			BatchSize:     32,
			EmbedRetries:  3,
		},
		Email:    EmailConfig{SMTPServer: "smtp.gmail.com", SMTPPort: 587},
		Log:      LogConfig{Level: "info"},
		Timezone: "Asia/Ho_Chi_Minh",
	}
}

// Load reads the YAML file at path over the defaults. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	setString(&c.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&c.Gemini.Model, "GEMINI_MODEL")
	setString(&c.Gemini.EmbeddingModel, "EMBEDDING_MODEL")
	setString(&c.Weaviate.URL, "WEAVIATE_URL")
	setString(&c.Weaviate.APIKey, "WEAVIATE_API_KEY")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Market.BaseURL, "MARKET_BASE_URL")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Email.SMTPServer, "SMTP_SERVER")
	setString(&c.Email.SMTPUser, "SMTP_USER")
	setString(&c.Email.SMTPPass, "SMTP_PASS")
	setString(&c.Email.FromEmail, "FROM_EMAIL")
	setString(&c.Email.ToEmail, "TO_EMAIL")

	if v := os.Getenv("MAX_CONVERSATION_HISTORY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Pipeline.MaxHistory = n
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.Port = n
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks ranges and required combinations.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Pipeline.Workers <= 0 {
		return fmt.Errorf("pipeline workers must be positive, got %d", c.Pipeline.Workers)
	}
	if c.Pipeline.MaxHistory <= 0 {
		return fmt.Errorf("max_history must be positive, got %d", c.Pipeline.MaxHistory)
	}
	if c.Pipeline.CallTimeout <= 0 {
		return fmt.Errorf("call_timeout must be positive")
	}
	if c.Ingest.Workers <= 0 {
		return fmt.Errorf("ingest workers must be positive, got %d", c.Ingest.Workers)
	}
	if c.Gemini.Dimensions <= 0 {
		return fmt.Errorf("embedding dimensions must be positive, got %d", c.Gemini.Dimensions)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid time zone name '%s': %w", c.Timezone, err)
	}
	return nil
}
