package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/mansiraturi/travelbot/pkg/travelbot"
	"github.com/mansiraturi/travelbot/pkg/travelbot/checkpoint"
	"github.com/mansiraturi/travelbot/pkg/travelbot/config"
	"github.com/mansiraturi/travelbot/pkg/travelbot/interpret"
	"github.com/mansiraturi/travelbot/pkg/travelbot/observability"
	"github.com/mansiraturi/travelbot/pkg/travelbot/search"
)

// loadConfig reads the file named by --config. A missing file is fine
// unless the flag was set explicitly; every setting has a default.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.FromFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
			return config.New(nil), nil
		}
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg config.Config) *slog.Logger {
	level := cfg.String("log.level", "info")
	if flagLevel, _ := cmd.Flags().GetString("log-level"); flagLevel != "" {
		level = flagLevel
	}
	return observability.New(parseLevel(level))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

// buildOrchestrator wires an orchestrator from config: the checkpoint
// backend, the interpreter, and the three search clients. The returned
// cleanup closes whatever was opened.
func buildOrchestrator(ctx context.Context, cfg config.Config, logger *slog.Logger) (*travelbot.Orchestrator, func(), error) {
	store, err := newStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	interp, err := newInterpreter(ctx, cfg)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	flights, hotels, attractions := newSearchClients(cfg)

	opts := []travelbot.Option{
		travelbot.WithLogger(logger),
		travelbot.WithMetrics(observability.NewMetricsRecorder()),
	}
	if cfg.Has("orchestrator.step_timeout") {
		opts = append(opts, travelbot.WithStepTimeout(cfg.Duration("orchestrator.step_timeout", travelbot.DefaultStepTimeout)))
	}
	if n := cfg.Int("orchestrator.max_iterations", 0); n > 0 {
		opts = append(opts, travelbot.WithMaxIterations(n))
	}
	if cfg.Bool("orchestrator.tracing", false) {
		opts = append(opts, travelbot.WithTracing(observability.NewSpanManager()))
	}

	orch, err := travelbot.New(store, interp, flights, hotels, attractions, opts...)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing checkpoint store", "error", err)
		}
	}
	return orch, cleanup, nil
}

func newStore(cfg config.Config) (checkpoint.Store, error) {
	switch backend := cfg.String("checkpoint.backend", "memory"); backend {
	case "memory":
		return checkpoint.NewMemoryStore(), nil
	case "sqlite":
		return checkpoint.NewSQLiteStore(cfg.String("checkpoint.sqlite.path", "travelbot.db"))
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.String("checkpoint.redis.addr", "localhost:6379"),
			Password: cfg.String("checkpoint.redis.password", ""),
			DB:       cfg.Int("checkpoint.redis.db", 0),
		})
		var opts []checkpoint.RedisOption
		if ttl := cfg.Duration("checkpoint.redis.ttl", 0); ttl > 0 {
			opts = append(opts, checkpoint.WithTTL(ttl))
		}
		if prefix := cfg.String("checkpoint.redis.prefix", ""); prefix != "" {
			opts = append(opts, checkpoint.WithKeyPrefix(prefix))
		}
		return checkpoint.NewRedisStore(client, opts...), nil
	default:
		return nil, fmt.Errorf("unknown checkpoint backend %q (want memory, sqlite, or redis)", backend)
	}
}

func newInterpreter(ctx context.Context, cfg config.Config) (interpret.Interpreter, error) {
	switch provider := cfg.String("llm.provider", "rules"); provider {
	case "rules":
		return interpret.NewRules(), nil

	case "openai":
		opts := []openai.Option{
			openai.WithToken(cfg.String("llm.api_key", "")),
		}
		if model := cfg.String("llm.model", ""); model != "" {
			opts = append(opts, openai.WithModel(model))
		}
		if baseURL := cfg.String("llm.base_url", ""); baseURL != "" {
			opts = append(opts, openai.WithBaseURL(baseURL))
		}
		model, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("init openai: %w", err)
		}
		return interpret.NewLLM(model, llmOpts(cfg)...), nil

	case "googleai":
		opts := []googleai.Option{
			googleai.WithAPIKey(cfg.String("llm.api_key", "")),
		}
		if model := cfg.String("llm.model", ""); model != "" {
			opts = append(opts, googleai.WithDefaultModel(model))
		}
		model, err := googleai.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("init googleai: %w", err)
		}
		return interpret.NewLLM(model, llmOpts(cfg)...), nil

	default:
		return nil, fmt.Errorf("unknown llm provider %q (want rules, openai, or googleai)", provider)
	}
}

func llmOpts(cfg config.Config) []interpret.LLMOption {
	var opts []interpret.LLMOption
	if cfg.Has("llm.temperature") {
		opts = append(opts, interpret.WithTemperature(cfg.Float("llm.temperature", 0)))
	}
	return opts
}

func newSearchClients(cfg config.Config) (search.FlightProvider, search.HotelProvider, search.AttractionProvider) {
	flights := search.NewFlightClient(
		cfg.String("providers.flights.api_key", ""),
		clientOpts(cfg.Sub("providers.flights"))...,
	)

	hotelOpts := clientOpts(cfg.Sub("providers.hotels"))
	if host := cfg.String("providers.hotels.api_host", ""); host != "" {
		hotelOpts = append(hotelOpts, search.WithAPIHost(host))
	}
	hotels := search.NewHotelClient(
		cfg.String("providers.hotels.api_key", ""),
		hotelOpts...,
	)

	attractions := search.NewAttractionClient(
		cfg.String("providers.attractions.api_key", ""),
		clientOpts(cfg.Sub("providers.attractions"))...,
	)
	return flights, hotels, attractions
}

func clientOpts(cfg config.Config) []search.Option {
	var opts []search.Option
	if u := cfg.String("base_url", ""); u != "" {
		opts = append(opts, search.WithBaseURL(u))
	}
	if n := cfg.Int("limit", 0); n > 0 {
		opts = append(opts, search.WithLimit(n))
	}
	return opts
}
