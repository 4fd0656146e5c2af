package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port            int           `yaml:"port"`
		ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	} `yaml:"server"`

	Database struct {
		Driver       string `yaml:"driver"` // postgres | mysql | memory
		DSN          string `yaml:"dsn"`
		Host         string `yaml:"host"`
		Port         int    `yaml:"port"`
		User         string `yaml:"user"`
		Password     string `yaml:"password"`
		Name         string `yaml:"name"`
		MaxOpenConns int    `yaml:"maxOpenConns"`
		MaxIdleConns int    `yaml:"maxIdleConns"`
	} `yaml:"database"`

	OpenAI struct {
		APIKey         string        `yaml:"apiKey"`
		BaseURL        string        `yaml:"baseURL"`
		ChatModel      string        `yaml:"chatModel"`
		EmbeddingModel string        `yaml:"embeddingModel"`
		Timeout        time.Duration `yaml:"timeout"`
	} `yaml:"openai"`

	Analysis struct {
		Workers           int    `yaml:"workers"`
		QueueSize         int    `yaml:"queueSize"`
		MissingKeySummary string `yaml:"missingKeySummary"`
	} `yaml:"analysis"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // text | json
	} `yaml:"logging"`
}

// Load baca .env (kalau ada), file config (boleh tidak ada), lalu override dari env
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	cfg.applyEnv(os.Getenv)
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := getenv("OPENAI_BASE_URL"); v != "" {
		c.OpenAI.BaseURL = v
	}
	if v := getenv("OPENAI_CHAT_MODEL"); v != "" {
		c.OpenAI.ChatModel = v
	}
	if v := getenv("OPENAI_EMBEDDING_MODEL"); v != "" {
		c.OpenAI.EmbeddingModel = v
	}
	if v := firstNonEmpty(getenv("NEON_DATABASE_URL"), getenv("DATABASE_URL")); v != "" {
		c.Database.DSN = v
	}
	if v := getenv("DATABASE_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.OpenAI.ChatModel == "" {
		c.OpenAI.ChatModel = "gpt-4o-mini"
	}
	if c.OpenAI.EmbeddingModel == "" {
		c.OpenAI.EmbeddingModel = "text-embedding-3-small"
	}
	if c.OpenAI.Timeout <= 0 {
		c.OpenAI.Timeout = 45 * time.Second
	}
	if c.Analysis.Workers <= 0 {
		c.Analysis.Workers = 4
	}
	if c.Analysis.QueueSize <= 0 {
		c.Analysis.QueueSize = 64
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// CompletionConfigured reports whether an OpenAI key is present.
func (c *Config) CompletionConfigured() bool {
	return strings.TrimSpace(c.OpenAI.APIKey) != ""
}

// StoreDSN returns the configured DSN, or builds one from host parts.
// Empty means the store is not configured.
func (c *Config) StoreDSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	if c.Database.Host == "" {
		return ""
	}
	if c.Database.Driver == "mysql" {
		return c.MySQLDSN()
	}
	return c.PostgresDSN()
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		portOr(c.Database.Port, 3306),
		c.Database.Name,
	)
}

// Helper untuk build DSN Postgres
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=require",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		portOr(c.Database.Port, 5432),
		c.Database.Name,
	)
}

func portOr(p, def int) int {
	if p == 0 {
		return def
	}
	return p
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
