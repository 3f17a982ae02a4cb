package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postforge/postscore/internal/database"
	"github.com/postforge/postscore/internal/hybrid"
	"github.com/postforge/postscore/internal/metrics"
	"github.com/postforge/postscore/internal/models"
	"github.com/postforge/postscore/internal/scoring"
)

// Prometheus collectors register once per process.
var (
	testMetricsOnce sync.Once
	testMetrics     *metrics.Metrics
)

func sharedTestMetrics() *metrics.Metrics {
	testMetricsOnce.Do(func() {
		testMetrics = metrics.New("postscore_queue_test")
	})
	return testMetrics
}

// newTestWorker builds a worker with a migrated temp database, the
// deterministic engine, and no AI provider. The asynq server is not
// started; handlers are invoked directly.
func newTestWorker(t *testing.T) (*Worker, *database.DB, *scoring.Engine) {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "queue_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	engine := scoring.New(scoring.Config{})
	blender := hybrid.NewBlender(engine, nil, hybrid.DefaultOptions())

	w := &Worker{
		db:      db,
		blender: blender,
		logger:  slog.Default(),
		metrics: sharedTestMetrics(),
	}
	return w, db, engine
}

func analyzeTask(t *testing.T, payload HybridAnalyzePayload) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(TypeHybridAnalyze, data)
}

func compareTask(t *testing.T, payload HybridComparePayload) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(TypeHybridCompare, data)
}

const queuedPost = `We doubled our signups last quarter.

Here is what actually moved the needle:
- Faster onboarding
- Weekly changelog posts

What growth lever surprised you most? #growth #saas`

func TestHandleHybridAnalyzeCompletesJob(t *testing.T) {
	w, db, engine := newTestWorker(t)

	require.NoError(t, db.CreateHybridAnalysis("job-1", queuedPost))

	task := analyzeTask(t, HybridAnalyzePayload{AnalysisID: "job-1", Text: queuedPost})
	require.NoError(t, w.handleHybridAnalyze(context.Background(), task))

	record, err := db.GetHybridAnalysis("job-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobComplete, record.Status)
	require.NotNil(t, record.Result)

	// No AI provider wired, so the stored result must be the
	// deterministic output untouched.
	assert.Equal(t, models.MethodEnhancedOnly, record.Result.AnalysisMethod)
	assert.Zero(t, record.Result.AIContribution)
	assert.Equal(t, engine.Score(queuedPost, nil), record.Result.Legacy)
}

func TestHandleHybridAnalyzePassesParams(t *testing.T) {
	w, db, engine := newTestWorker(t)

	params := &models.AdvancedParams{
		FollowerRange:   models.Followers50KPlus,
		EngagementLevel: models.EngagementHigh,
	}
	require.NoError(t, db.CreateHybridAnalysis("job-params", queuedPost))

	task := analyzeTask(t, HybridAnalyzePayload{AnalysisID: "job-params", Text: queuedPost, Params: params})
	require.NoError(t, w.handleHybridAnalyze(context.Background(), task))

	record, err := db.GetHybridAnalysis("job-params")
	require.NoError(t, err)
	require.NotNil(t, record.Result)
	assert.Equal(t, engine.Score(queuedPost, params), record.Result.Legacy)
}

func TestHandleHybridAnalyzeMissingRecordDropsTask(t *testing.T) {
	w, _, _ := newTestWorker(t)

	task := analyzeTask(t, HybridAnalyzePayload{AnalysisID: "never-created", Text: queuedPost})
	// A deleted record is not an error worth retrying.
	assert.NoError(t, w.handleHybridAnalyze(context.Background(), task))
}

func TestHandleHybridAnalyzeInvalidPayload(t *testing.T) {
	w, _, _ := newTestWorker(t)

	task := asynq.NewTask(TypeHybridAnalyze, []byte("not json"))
	err := w.handleHybridAnalyze(context.Background(), task)
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry), "malformed payloads must not be retried")
}

func TestHandleHybridCompareCompletesJob(t *testing.T) {
	w, db, _ := newTestWorker(t)

	strong := queuedPost
	weak := "we shipped."
	require.NoError(t, db.CreateComparison("cmp-1", strong, weak))

	task := compareTask(t, HybridComparePayload{ComparisonID: "cmp-1", TextA: strong, TextB: weak})
	require.NoError(t, w.handleHybridCompare(context.Background(), task))

	record, err := db.GetComparison("cmp-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobComplete, record.Status)
	require.NotNil(t, record.Result)
	assert.Equal(t, models.WinnerA, record.Result.Winner)
	assert.Greater(t, record.Result.Margin, 0)
	require.NotNil(t, record.MetricsA)
	require.NotNil(t, record.MetricsB)
	assert.Greater(t, record.MetricsA.EngagementScore, record.MetricsB.EngagementScore)
}

func TestHandleHybridCompareIdenticalTextsTie(t *testing.T) {
	w, db, _ := newTestWorker(t)

	require.NoError(t, db.CreateComparison("cmp-tie", queuedPost, "  "+queuedPost+"  "))

	task := compareTask(t, HybridComparePayload{
		ComparisonID: "cmp-tie",
		TextA:        queuedPost,
		TextB:        "  " + queuedPost + "  ",
	})
	require.NoError(t, w.handleHybridCompare(context.Background(), task))

	record, err := db.GetComparison("cmp-tie")
	require.NoError(t, err)
	require.NotNil(t, record.Result)
	assert.Equal(t, models.WinnerTie, record.Result.Winner)
	assert.Zero(t, record.Result.Margin)
}

func TestHandleHybridCompareMissingRecordDropsTask(t *testing.T) {
	w, _, _ := newTestWorker(t)

	task := compareTask(t, HybridComparePayload{ComparisonID: "never-created", TextA: "a", TextB: "b"})
	assert.NoError(t, w.handleHybridCompare(context.Background(), task))
}
