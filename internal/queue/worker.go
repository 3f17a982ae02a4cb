package queue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/postforge/postscore/internal/database"
	"github.com/postforge/postscore/internal/hybrid"
	"github.com/postforge/postscore/internal/metrics"
)

// Worker wraps the Asynq server for processing hybrid jobs.
type Worker struct {
	server      *asynq.Server
	mux         *asynq.ServeMux
	db          *database.DB
	blender     *hybrid.Blender
	concurrency int
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// WorkerConfig contains configuration for the queue worker.
type WorkerConfig struct {
	RedisAddr   string
	Concurrency int
}

// NewWorker creates a new queue worker.
func NewWorker(cfg WorkerConfig, db *database.DB, blender *hybrid.Blender, m *metrics.Metrics) *Worker {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr}

	serverCfg := asynq.Config{
		Concurrency: cfg.Concurrency,

		// Single analyses rank above comparisons: one waiting user beats
		// two LLM calls for one verdict.
		Queues: map[string]int{
			QueueHybridAnalysis: 6,
			QueueComparisons:    4,
		},
		StrictPriority: false,

		// Both task types call an LLM; back off hard so a struggling
		// provider is not hammered.
		RetryDelayFunc: llmRetryDelay,

		ShutdownTimeout: 30 * time.Second,

		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)

			slog.Error("task processing error",
				"task_type", task.Type(),
				"error", err,
				"retry_count", retried,
				"max_retries", maxRetry,
			)
		}),
	}

	w := &Worker{
		server:      asynq.NewServer(redisOpt, serverCfg),
		mux:         asynq.NewServeMux(),
		db:          db,
		blender:     blender,
		concurrency: cfg.Concurrency,
		logger:      slog.Default(),
		metrics:     m,
	}
	w.registerHandlers()
	return w
}

func (w *Worker) registerHandlers() {
	w.mux.HandleFunc(TypeHybridAnalyze, w.handleHybridAnalyze)
	w.mux.HandleFunc(TypeHybridCompare, w.handleHybridCompare)
}

// llmRetryDelay: 30s, 1m, 2m, 5m, then 10m for every further attempt.
func llmRetryDelay(n int, err error, task *asynq.Task) time.Duration {
	delays := []time.Duration{
		30 * time.Second,
		1 * time.Minute,
		2 * time.Minute,
		5 * time.Minute,
		10 * time.Minute,
	}
	if n < len(delays) {
		return delays[n]
	}
	return delays[len(delays)-1]
}

// Start begins processing tasks. Blocks until Shutdown.
func (w *Worker) Start() error {
	w.logger.Info("starting asynq worker",
		"concurrency", w.concurrency,
		"queues", map[string]int{QueueHybridAnalysis: 6, QueueComparisons: 4},
	)

	if err := w.server.Run(w.mux); err != nil {
		return fmt.Errorf("asynq server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the worker.
func (w *Worker) Shutdown() {
	w.logger.Info("shutting down asynq worker")
	w.server.Shutdown()
}

// isRetriableError reports whether an error looks like a transient
// connectivity or load problem rather than bad input.
func isRetriableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	retriablePatterns := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"temporary failure",
		"service unavailable",
		"bad gateway",
		"gateway timeout",
		"too many requests",
		"context deadline exceeded",
		"context canceled",
		"i/o timeout",
		"no such host",
		"network is unreachable",
		"database is locked",
	}

	for _, pattern := range retriablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
