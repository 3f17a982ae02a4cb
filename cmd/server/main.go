package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/postforge/postscore/internal/api"
	"github.com/postforge/postscore/internal/database"
	"github.com/postforge/postscore/internal/hybrid"
	"github.com/postforge/postscore/internal/llm"
	"github.com/postforge/postscore/internal/metrics"
	"github.com/postforge/postscore/internal/queue"
	"github.com/postforge/postscore/internal/scoring"
	"github.com/postforge/postscore/internal/tracing"
	"github.com/postforge/postscore/pkg/logging"
)

func main() {
	// Optional .env for local development; silence is fine in production.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("postscore service initializing", "version", "1.0.0")

	var (
		port        = flag.String("port", getEnv("PORT", "8080"), "Server port (env: PORT)")
		dbPath      = flag.String("db", getEnv("DB_PATH", "postscore.db"), "Database file path (env: DB_PATH)")
		redisAddr   = flag.String("redis", getEnv("REDIS_ADDR", "localhost:6379"), "Redis address for the job queue (env: REDIS_ADDR)")
		concurrency = flag.Int("concurrency", getEnvInt("WORKER_CONCURRENCY", 5), "Worker concurrency (env: WORKER_CONCURRENCY)")

		profileName = flag.String("profile", getEnv("SCORING_PROFILE", ""), "Scoring profile: multiplicative-v1, weighted-v2, eight-factor-v3 (env: SCORING_PROFILE)")
		cacheSize   = flag.Int("cache-size", getEnvInt("SCORE_CACHE_SIZE", scoring.DefaultCacheSize), "Fingerprint cache size (env: SCORE_CACHE_SIZE)")

		aiProvider  = flag.String("ai-provider", getEnv("AI_PROVIDER", "ollama"), "AI provider: ollama, openai, none (env: AI_PROVIDER)")
		ollamaURL   = flag.String("ollama-url", getEnv("OLLAMA_URL", "http://localhost:11434"), "Ollama API URL (env: OLLAMA_URL)")
		ollamaModel = flag.String("ollama-model", getEnv("OLLAMA_MODEL", llm.DefaultOllamaModel), "Ollama model (env: OLLAMA_MODEL)")
		openAIKey   = flag.String("openai-key", getEnv("OPENAI_API_KEY", ""), "OpenAI API key (env: OPENAI_API_KEY)")
		openAIModel = flag.String("openai-model", getEnv("OPENAI_MODEL", "gpt-4o-mini"), "OpenAI model (env: OPENAI_MODEL)")
		openAIBase  = flag.String("openai-base-url", getEnv("OPENAI_BASE_URL", ""), "OpenAI-compatible base URL (env: OPENAI_BASE_URL)")

		aiThreshold = flag.Float64("ai-confidence-threshold", getEnvFloat("AI_CONFIDENCE_THRESHOLD", 0), "AI confidence below which scores are discarded (env: AI_CONFIDENCE_THRESHOLD)")

		otlpEndpoint = flag.String("otlp-endpoint", getEnv("OTLP_ENDPOINT", ""), "OTLP/gRPC trace collector endpoint (env: OTLP_ENDPOINT)")
	)
	flag.Parse()

	shutdownTracer, err := tracing.InitTracer(context.Background(), "postscore", *otlpEndpoint)
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracer(ctx); err != nil {
				logger.Error("error shutting down tracer", "error", err)
			}
		}()
	}

	db, err := database.New(*dbPath)
	if err != nil {
		logger.Error("failed to initialize database", "error", err, "database_path", *dbPath)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	m := metrics.New("postscore")

	engine := scoring.New(scoring.Config{
		Profile:   scoring.ParseProfile(*profileName),
		CacheSize: *cacheSize,
	})
	m.RegisterCacheStats(engine.CacheStats)
	logger.Info("scoring engine initialized", "profile", engine.Profile(), "cache_size", *cacheSize)

	aiClient := buildAIClient(logger, *aiProvider, *ollamaURL, *ollamaModel, *openAIKey, *openAIModel, *openAIBase)
	aiClient.SetRecorder(m)

	blendOpts := hybrid.DefaultOptions()
	if *aiThreshold > 0 {
		blendOpts.AIConfidenceThreshold = *aiThreshold
	}
	blender := hybrid.NewBlender(engine, aiClient, blendOpts)

	queueClient := queue.NewClient(queue.ClientConfig{RedisAddr: *redisAddr})
	defer queueClient.Close()

	worker := queue.NewWorker(queue.WorkerConfig{
		RedisAddr:   *redisAddr,
		Concurrency: *concurrency,
	}, db, blender, m)

	go func() {
		if err := worker.Start(); err != nil {
			logger.Error("worker failed", "error", err)
			os.Exit(1)
		}
	}()

	apiHandler := api.NewHandler(db, engine, queueClient, m)

	// Middleware chain: HTTP logging -> tracing -> handlers.
	handler := logging.HTTPLoggingMiddleware(logger)(
		tracing.HTTPMiddleware(apiHandler),
	)

	srv := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("postscore service starting",
			"port", *port,
			"database", *dbPath,
			"redis", *redisAddr,
			"ai_provider", aiClient.ProviderName(),
			"profile", engine.Profile(),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	worker.Shutdown()

	logger.Info("server stopped")
}

// buildAIClient selects the configured LLM provider. A nil client simply
// means every hybrid analysis is deterministic-only.
func buildAIClient(logger *slog.Logger, provider, ollamaURL, ollamaModel, openAIKey, openAIModel, openAIBase string) *llm.Client {
	switch provider {
	case "ollama":
		p, err := llm.NewOllamaProvider(ollamaURL, ollamaModel)
		if err != nil {
			logger.Warn("failed to initialize Ollama provider, continuing without AI",
				"error", err, "ollama_url", ollamaURL)
			return nil
		}
		logger.Info("Ollama provider initialized", "model", ollamaModel, "url", ollamaURL)
		return llm.NewClient(p, 0)
	case "openai":
		if openAIKey == "" {
			logger.Warn("openai provider selected without OPENAI_API_KEY, continuing without AI")
			return nil
		}
		logger.Info("OpenAI provider initialized", "model", openAIModel)
		return llm.NewClient(llm.NewOpenAIProvider(openAIKey, openAIModel, openAIBase), 0)
	case "none", "":
		logger.Info("AI augmentation disabled")
		return nil
	default:
		logger.Warn("unknown AI provider, continuing without AI", "provider", provider)
		return nil
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
