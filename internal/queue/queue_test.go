package queue

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"

	"github.com/postforge/postscore/internal/models"
)

func TestHybridAnalyzePayloadRoundTrip(t *testing.T) {
	payload := HybridAnalyzePayload{
		AnalysisID: "job-123",
		Text:       "Sample post text for hybrid analysis",
		Params: &models.AdvancedParams{
			FollowerRange:   models.Followers2KTo10K,
			Industry:        "technology",
			EngagementLevel: models.EngagementHigh,
		},
		EnqueuedAt: time.Now().UnixNano(),
	}

	data, err := json.Marshal(payload)
	assert.NoError(t, err)
	assert.NotEmpty(t, data)

	var decoded HybridAnalyzePayload
	err = json.Unmarshal(data, &decoded)
	assert.NoError(t, err)
	assert.Equal(t, payload.AnalysisID, decoded.AnalysisID)
	assert.Equal(t, payload.Text, decoded.Text)
	assert.Equal(t, payload.Params, decoded.Params)
	assert.Equal(t, payload.EnqueuedAt, decoded.EnqueuedAt)
}

func TestHybridComparePayloadRoundTrip(t *testing.T) {
	payload := HybridComparePayload{
		ComparisonID: "cmp-456",
		TextA:        "First draft",
		TextB:        "Second draft",
		EnqueuedAt:   time.Now().UnixNano(),
	}

	data, err := json.Marshal(payload)
	assert.NoError(t, err)

	var decoded HybridComparePayload
	err = json.Unmarshal(data, &decoded)
	assert.NoError(t, err)
	assert.Equal(t, payload.ComparisonID, decoded.ComparisonID)
	assert.Equal(t, payload.TextA, decoded.TextA)
	assert.Equal(t, payload.TextB, decoded.TextB)
	assert.Nil(t, decoded.Params)
}

func TestIsRetriableError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "Connection refused error",
			err:      errors.New("connection refused"),
			expected: true,
		},
		{
			name:     "Timeout error",
			err:      errors.New("request timeout"),
			expected: true,
		},
		{
			name:     "Context deadline exceeded",
			err:      errors.New("context deadline exceeded"),
			expected: true,
		},
		{
			name:     "Service unavailable",
			err:      errors.New("503 Service Unavailable"),
			expected: true,
		},
		{
			name:     "Locked database",
			err:      errors.New("database is locked"),
			expected: true,
		},
		{
			name:     "Invalid request error",
			err:      errors.New("invalid request format"),
			expected: false,
		},
		{
			name:     "Generic error",
			err:      errors.New("some other error"),
			expected: false,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isRetriableError(tt.err), "Error: %v", tt.err)
		})
	}
}

func TestLLMRetryDelay(t *testing.T) {
	task := asynq.NewTask(TypeHybridAnalyze, []byte(`{}`))
	testErr := errors.New("connection refused")

	delays := []time.Duration{
		30 * time.Second,
		1 * time.Minute,
		2 * time.Minute,
		5 * time.Minute,
		10 * time.Minute,
	}

	for i, expected := range delays {
		assert.Equal(t, expected, llmRetryDelay(i, testErr, task), "Retry %d", i)
	}

	// Past the schedule, the delay stays at the cap.
	assert.Equal(t, 10*time.Minute, llmRetryDelay(20, testErr, task))
}

func TestTaskTypeConstants(t *testing.T) {
	assert.Equal(t, "postscore:hybrid_analyze", TypeHybridAnalyze)
	assert.Equal(t, "postscore:hybrid_compare", TypeHybridCompare)
}
