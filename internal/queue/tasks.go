package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/postforge/postscore/internal/database"
	"github.com/postforge/postscore/internal/models"
	"github.com/postforge/postscore/internal/scoring"
	"github.com/postforge/postscore/internal/tracing"
)

// handleHybridAnalyze runs one AI-augmented analysis and persists the
// blended result.
func (w *Worker) handleHybridAnalyze(ctx context.Context, t *asynq.Task) error {
	var payload HybridAnalyzePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		w.logger.Error("failed to unmarshal task payload", "error", err)
		return fmt.Errorf("invalid task payload: %v: %w", err, asynq.SkipRetry)
	}

	queueWait := queueWaitTime(payload.EnqueuedAt)
	w.metrics.QueueWaitSeconds.Observe(queueWait.Seconds())

	retryCount, _ := asynq.GetRetryCount(ctx)
	w.logger.Info("processing hybrid analysis",
		"analysis_id", payload.AnalysisID,
		"text_length", len(payload.Text),
		"has_params", payload.Params != nil,
		"retry_count", retryCount,
		"queue_wait_seconds", queueWait.Seconds(),
	)

	ctx, span := w.taskSpan(ctx, TypeHybridAnalyze, payload.TraceID, payload.SpanID,
		attribute.String("analysis.id", payload.AnalysisID),
		attribute.Int("text.length", len(payload.Text)),
		attribute.Float64("queue.wait_time_seconds", queueWait.Seconds()),
	)
	defer span.End()

	if err := w.db.MarkHybridProcessing(payload.AnalysisID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// Record deleted while queued; nothing to do.
			w.logger.Warn("hybrid analysis record gone, dropping task", "analysis_id", payload.AnalysisID)
			return nil
		}
		return fmt.Errorf("failed to mark analysis processing: %w", err)
	}

	start := time.Now()
	result := w.blender.Analyze(ctx, payload.Text, payload.Params)

	if err := w.db.CompleteHybridAnalysis(payload.AnalysisID, &result); err != nil {
		w.metrics.ObserveDurationWithExemplar(ctx, w.metrics.AnalysisDuration, time.Since(start).Seconds(), "error")
		if isRetriableError(err) {
			w.logger.Warn("retriable error saving hybrid result, will retry",
				"analysis_id", payload.AnalysisID, "error", err, "retry_count", retryCount)
			return err
		}
		w.failJob(w.db.FailHybridAnalysis, payload.AnalysisID, err)
		return fmt.Errorf("failed to save hybrid result: %v: %w", err, asynq.SkipRetry)
	}

	w.metrics.ObserveDurationWithExemplar(ctx, w.metrics.AnalysisDuration, time.Since(start).Seconds(), "success")
	w.metrics.BlendMethodTotal.WithLabelValues(result.AnalysisMethod).Inc()

	w.logger.Info("hybrid analysis completed",
		"analysis_id", payload.AnalysisID,
		"method", result.AnalysisMethod,
		"confidence", result.Confidence,
	)
	return nil
}

// handleHybridCompare analyzes both drafts (AI calls run concurrently)
// and persists the verdict over the blended metrics.
func (w *Worker) handleHybridCompare(ctx context.Context, t *asynq.Task) error {
	var payload HybridComparePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		w.logger.Error("failed to unmarshal task payload", "error", err)
		return fmt.Errorf("invalid task payload: %v: %w", err, asynq.SkipRetry)
	}

	queueWait := queueWaitTime(payload.EnqueuedAt)
	w.metrics.QueueWaitSeconds.Observe(queueWait.Seconds())

	retryCount, _ := asynq.GetRetryCount(ctx)
	w.logger.Info("processing hybrid comparison",
		"comparison_id", payload.ComparisonID,
		"text_a_length", len(payload.TextA),
		"text_b_length", len(payload.TextB),
		"retry_count", retryCount,
		"queue_wait_seconds", queueWait.Seconds(),
	)

	ctx, span := w.taskSpan(ctx, TypeHybridCompare, payload.TraceID, payload.SpanID,
		attribute.String("comparison.id", payload.ComparisonID),
		attribute.Int("text_a.length", len(payload.TextA)),
		attribute.Int("text_b.length", len(payload.TextB)),
		attribute.Float64("queue.wait_time_seconds", queueWait.Seconds()),
	)
	defer span.End()

	if err := w.db.MarkComparisonProcessing(payload.ComparisonID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			w.logger.Warn("comparison record gone, dropping task", "comparison_id", payload.ComparisonID)
			return nil
		}
		return fmt.Errorf("failed to mark comparison processing: %w", err)
	}

	// Each side's AI call can take tens of seconds; run them in
	// parallel. The blender absorbs per-side AI failures independently.
	var (
		wg               sync.WaitGroup
		resultA, resultB models.HybridResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		resultA = w.blender.Analyze(ctx, payload.TextA, payload.Params)
	}()
	go func() {
		defer wg.Done()
		resultB = w.blender.Analyze(ctx, payload.TextB, payload.Params)
	}()
	wg.Wait()

	var verdict models.ComparisonResult
	if scoring.Normalize(payload.TextA) == scoring.Normalize(payload.TextB) {
		verdict = models.ComparisonResult{Winner: models.WinnerTie, Margin: 0}
	} else {
		verdict = scoring.CompareMetrics(resultA.Legacy, resultB.Legacy)
	}

	if err := w.db.CompleteComparison(payload.ComparisonID, verdict, resultA.Legacy, resultB.Legacy); err != nil {
		if isRetriableError(err) {
			w.logger.Warn("retriable error saving comparison, will retry",
				"comparison_id", payload.ComparisonID, "error", err, "retry_count", retryCount)
			return err
		}
		w.failJob(w.db.FailComparison, payload.ComparisonID, err)
		return fmt.Errorf("failed to save comparison: %v: %w", err, asynq.SkipRetry)
	}

	w.metrics.ComparisonsTotal.Inc()

	w.logger.Info("hybrid comparison completed",
		"comparison_id", payload.ComparisonID,
		"winner", verdict.Winner,
		"margin", verdict.Margin,
	)
	return nil
}

// taskSpan starts a consumer span, linking to the enqueuing span when the
// payload carried trace IDs.
func (w *Worker) taskSpan(ctx context.Context, taskType, traceID, spanID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if traceID != "" && spanID != "" {
		ctx = tracing.ContextWithRemoteSpan(ctx, traceID, spanID)
	}
	return tracing.Tracer().Start(ctx, "asynq.task.process",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(append([]attribute.KeyValue{
			attribute.String("task.type", taskType),
		}, attrs...)...),
	)
}

func (w *Worker) failJob(fail func(id, msg string) error, id string, cause error) {
	if err := fail(id, cause.Error()); err != nil {
		w.logger.Error("failed to record job failure", "id", id, "error", err)
	}
}

func queueWaitTime(enqueuedAt int64) time.Duration {
	if enqueuedAt <= 0 {
		return 0
	}
	return time.Since(time.Unix(0, enqueuedAt))
}
