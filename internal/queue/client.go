package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/postforge/postscore/internal/models"
)

// Task type constants
const (
	TypeHybridAnalyze = "postscore:hybrid_analyze"
	TypeHybridCompare = "postscore:hybrid_compare"
)

// Queue names, highest priority first.
const (
	QueueHybridAnalysis = "hybrid-analysis"
	QueueComparisons    = "comparisons"
)

// HybridAnalyzePayload carries one queued hybrid analysis.
type HybridAnalyzePayload struct {
	AnalysisID string                 `json:"analysis_id"`
	Text       string                 `json:"text"`
	Params     *models.AdvancedParams `json:"params,omitempty"`
	// Tracing and timing fields
	TraceID    string `json:"trace_id,omitempty"`
	SpanID     string `json:"span_id,omitempty"`
	EnqueuedAt int64  `json:"enqueued_at"` // Unix timestamp in nanoseconds
}

// HybridComparePayload carries one queued two-post hybrid comparison.
type HybridComparePayload struct {
	ComparisonID string                 `json:"comparison_id"`
	TextA        string                 `json:"text_a"`
	TextB        string                 `json:"text_b"`
	Params       *models.AdvancedParams `json:"params,omitempty"`
	// Tracing and timing fields
	TraceID    string `json:"trace_id,omitempty"`
	SpanID     string `json:"span_id,omitempty"`
	EnqueuedAt int64  `json:"enqueued_at"` // Unix timestamp in nanoseconds
}

// Client wraps the Asynq client for enqueueing tasks.
type Client struct {
	client *asynq.Client
}

// ClientConfig contains configuration for the queue client.
type ClientConfig struct {
	RedisAddr string
}

// NewClient creates a new queue client.
func NewClient(cfg ClientConfig) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr}),
	}
}

// EnqueueHybridAnalyze enqueues a hybrid analysis task.
func (c *Client) EnqueueHybridAnalyze(ctx context.Context, analysisID, text string, params *models.AdvancedParams) (string, error) {
	payload := HybridAnalyzePayload{
		AnalysisID: analysisID,
		Text:       text,
		Params:     params,
		EnqueuedAt: time.Now().UnixNano(),
	}
	attachTraceContext(ctx, &payload.TraceID, &payload.SpanID, TypeHybridAnalyze, analysisID, payload.EnqueuedAt)

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TypeHybridAnalyze, payloadBytes, asynq.TaskID(analysisID))

	opts := []asynq.Option{
		asynq.MaxRetry(5),
		asynq.Timeout(5 * time.Minute),
		asynq.Queue(QueueHybridAnalysis),
		asynq.Retention(7 * 24 * time.Hour),
	}

	info, err := c.client.Enqueue(task, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue hybrid analyze task: %w", err)
	}
	return info.ID, nil
}

// EnqueueHybridCompare enqueues a hybrid comparison task.
func (c *Client) EnqueueHybridCompare(ctx context.Context, comparisonID, textA, textB string, params *models.AdvancedParams) (string, error) {
	payload := HybridComparePayload{
		ComparisonID: comparisonID,
		TextA:        textA,
		TextB:        textB,
		Params:       params,
		EnqueuedAt:   time.Now().UnixNano(),
	}
	attachTraceContext(ctx, &payload.TraceID, &payload.SpanID, TypeHybridCompare, comparisonID, payload.EnqueuedAt)

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TypeHybridCompare, payloadBytes, asynq.TaskID(comparisonID))

	opts := []asynq.Option{
		asynq.MaxRetry(5),
		asynq.Timeout(10 * time.Minute), // two LLM calls per task
		asynq.Queue(QueueComparisons),
		asynq.Retention(7 * 24 * time.Hour),
	}

	info, err := c.client.Enqueue(task, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue hybrid compare task: %w", err)
	}
	return info.ID, nil
}

// attachTraceContext copies the active span's IDs into a payload and
// records the enqueue event on the span.
func attachTraceContext(ctx context.Context, traceID, spanID *string, taskType, taskID string, enqueuedAt int64) {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return
	}

	spanCtx := span.SpanContext()
	*traceID = spanCtx.TraceID().String()
	*spanID = spanCtx.SpanID().String()

	span.AddEvent("task_enqueued", trace.WithAttributes(
		attribute.String("task.type", taskType),
		attribute.String("task.id", taskID),
		attribute.Int64("enqueued_at", enqueuedAt),
	))
}

// Close closes the client connection.
func (c *Client) Close() error {
	return c.client.Close()
}
