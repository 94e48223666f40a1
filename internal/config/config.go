package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// OpenAIAPIKey is deliberately not required at parse time: the server
	// starts without it and every /convert request answers with the
	// configuration error instead.
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	WhisperModel    string        `env:"WHISPER_MODEL" envDefault:"whisper-1"`
	ChatModel       string        `env:"CHAT_MODEL" envDefault:"gpt-4o-mini"`
	ChatTemperature float64       `env:"CHAT_TEMPERATURE" envDefault:"0.6"`
	OpenAITimeout   time.Duration `env:"OPENAI_TIMEOUT" envDefault:"30s"`
	SourceLanguage  string        `env:"SOURCE_LANGUAGE" envDefault:"es"`

	HTTPAddr     string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"60s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"90s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`

	RateStorePath  string `env:"RATE_STORE_PATH"`
	RedisURL       string `env:"REDIS_URL"`
	PerClientLimit int    `env:"PER_CLIENT_DAILY_LIMIT" envDefault:"3"`
	GlobalLimit    int    `env:"GLOBAL_DAILY_LIMIT" envDefault:"20"`

	ThrottleRPS   float64 `env:"THROTTLE_RPS" envDefault:"2"`
	ThrottleBurst int     `env:"THROTTLE_BURST" envDefault:"5"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Overrides holds CLI flag values that take priority over env vars.
type Overrides struct {
	EnvFile       string
	HTTPAddr      string
	LogLevel      string
	RateStorePath string
	RedisURL      string
}

// Load reads configuration from .env file, environment variables, and CLI overrides.
// Priority: CLI flags > environment variables > .env file > struct defaults.
func Load(overrides Overrides) (*Config, error) {
	// Load .env file (silent if missing)
	envFile := overrides.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if overrides.HTTPAddr != "" {
		cfg.HTTPAddr = overrides.HTTPAddr
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}
	if overrides.RateStorePath != "" {
		cfg.RateStorePath = overrides.RateStorePath
	}
	if overrides.RedisURL != "" {
		cfg.RedisURL = overrides.RedisURL
	}

	// Same shared location the demo has always used.
	if cfg.RateStorePath == "" {
		cfg.RateStorePath = filepath.Join(os.TempDir(), "speak2send-rate.json")
	}

	return cfg, nil
}
