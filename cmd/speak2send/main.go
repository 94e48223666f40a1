package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/snarg/speak2send/internal/api"
	"github.com/snarg/speak2send/internal/config"
	"github.com/snarg/speak2send/internal/convert"
	"github.com/snarg/speak2send/internal/generate"
	"github.com/snarg/speak2send/internal/ratelimit"
	"github.com/snarg/speak2send/internal/transcribe"
	"github.com/spf13/pflag"
)

var version = "dev"

func main() {
	startTime := time.Now()

	var overrides config.Overrides
	pflag.StringVar(&overrides.EnvFile, "env-file", "", "path to .env file")
	pflag.StringVar(&overrides.HTTPAddr, "http-addr", "", "listen address (overrides HTTP_ADDR)")
	pflag.StringVar(&overrides.LogLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	pflag.StringVar(&overrides.RateStorePath, "rate-store", "", "rate counter file path (overrides RATE_STORE_PATH)")
	pflag.StringVar(&overrides.RedisURL, "redis-url", "", "redis URL for the rate counter (overrides REDIS_URL)")
	pflag.Parse()

	// Config
	cfg, err := config.Load(overrides)
	if err != nil {
		early := zerolog.New(os.Stderr).With().Timestamp().Logger()
		early.Fatal().Err(err).Msg("failed to load config")
	}

	// Logger
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
	log.Info().Str("version", version).Msg("speak2send starting")

	if cfg.OpenAIAPIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY not set; /convert will answer with a configuration error")
	}

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Counter store: Redis when configured, otherwise the shared JSON file.
	var store ratelimit.Store
	var storePing api.StorePinger
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid redis URL")
		}
		rs := ratelimit.NewRedisStore(redis.NewClient(opts), "")
		store = rs
		storePing = rs
		log.Info().Msg("rate counters backed by redis")
	} else {
		store = ratelimit.NewFileStore(cfg.RateStorePath)
		log.Info().Str("path", cfg.RateStorePath).Msg("rate counters backed by file")
	}

	limiterLog := log.With().Str("component", "ratelimit").Logger()
	limiter := ratelimit.NewLimiter(store, cfg.PerClientLimit, cfg.GlobalLimit, limiterLog)

	// Upstream clients
	transcriber := transcribe.NewOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.WhisperModel, cfg.OpenAITimeout)
	generator := generate.NewOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.ChatModel, cfg.ChatTemperature, cfg.OpenAITimeout)

	pipelineLog := log.With().Str("component", "pipeline").Logger()
	pipeline := convert.NewPipeline(limiter, transcriber, generator, cfg.SourceLanguage, pipelineLog)

	// Burst throttle in front of the daily quota
	var burst *ratelimit.BurstStore
	if cfg.ThrottleRPS > 0 {
		burst = ratelimit.NewBurstStore(cfg.ThrottleRPS, cfg.ThrottleBurst)
		burst.StartJanitor(ctx)
	}

	// HTTP Server
	httpLog := log.With().Str("component", "http").Logger()
	srv := api.NewServer(cfg, pipeline, burst, storePing, version, startTime, httpLog)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server error")
		}
	}

	// Graceful shutdown with 10s timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}

	log.Info().Msg("speak2send stopped")
}
