package database

import (
	"errors"
	"testing"

	"github.com/postforge/postscore/internal/models"
)

const testPost = "Just hit a big milestone. What should we build next? #startup"

func sampleHybridResult() *models.HybridResult {
	return &models.HybridResult{
		Enhanced: models.EnhancedScores{
			EngagementScore: 62,
			ReachScore:      55,
			ViralityScore:   48,
		},
		Legacy: models.PostMetrics{
			EngagementScore: 64, ReachScore: 56, ViralityScore: 50,
			Likes: 154, Comments: 19, Shares: 10,
		},
		Confidence:          0.71,
		AnalysisMethod:      models.MethodHybrid,
		AIContribution:      0.35,
		RecommendedHashtags: []string{"startup", "milestone"},
	}
}

func TestHybridAnalysisLifecycle(t *testing.T) {
	db := setupTestDB(t)

	if err := db.CreateHybridAnalysis("job-1", testPost); err != nil {
		t.Fatalf("CreateHybridAnalysis failed: %v", err)
	}

	record, err := db.GetHybridAnalysis("job-1")
	if err != nil {
		t.Fatalf("GetHybridAnalysis failed: %v", err)
	}
	if record.Status != models.JobQueued {
		t.Errorf("Expected status %q, got %q", models.JobQueued, record.Status)
	}
	if record.Result != nil {
		t.Error("Expected no result on a queued job")
	}
	if record.Text != testPost {
		t.Errorf("Expected text %q, got %q", testPost, record.Text)
	}

	if err := db.MarkHybridProcessing("job-1"); err != nil {
		t.Fatalf("MarkHybridProcessing failed: %v", err)
	}
	record, err = db.GetHybridAnalysis("job-1")
	if err != nil {
		t.Fatalf("GetHybridAnalysis failed: %v", err)
	}
	if record.Status != models.JobProcessing {
		t.Errorf("Expected status %q, got %q", models.JobProcessing, record.Status)
	}

	want := sampleHybridResult()
	if err := db.CompleteHybridAnalysis("job-1", want); err != nil {
		t.Fatalf("CompleteHybridAnalysis failed: %v", err)
	}

	record, err = db.GetHybridAnalysis("job-1")
	if err != nil {
		t.Fatalf("GetHybridAnalysis failed: %v", err)
	}
	if record.Status != models.JobComplete {
		t.Errorf("Expected status %q, got %q", models.JobComplete, record.Status)
	}
	if record.Result == nil {
		t.Fatal("Expected stored result")
	}
	if record.Result.AnalysisMethod != models.MethodHybrid {
		t.Errorf("Expected method %q, got %q", models.MethodHybrid, record.Result.AnalysisMethod)
	}
	if record.Result.Legacy != want.Legacy {
		t.Errorf("Stored legacy metrics %+v, want %+v", record.Result.Legacy, want.Legacy)
	}
	if record.UpdatedAt.Before(record.CreatedAt) {
		t.Error("Expected updated_at >= created_at")
	}
}

func TestFailHybridAnalysisStoresError(t *testing.T) {
	db := setupTestDB(t)

	if err := db.CreateHybridAnalysis("job-fail", testPost); err != nil {
		t.Fatalf("CreateHybridAnalysis failed: %v", err)
	}
	if err := db.FailHybridAnalysis("job-fail", "llm unreachable"); err != nil {
		t.Fatalf("FailHybridAnalysis failed: %v", err)
	}

	record, err := db.GetHybridAnalysis("job-fail")
	if err != nil {
		t.Fatalf("GetHybridAnalysis failed: %v", err)
	}
	if record.Status != models.JobFailed {
		t.Errorf("Expected status %q, got %q", models.JobFailed, record.Status)
	}
	if record.LastError != "llm unreachable" {
		t.Errorf("Expected stored error, got %q", record.LastError)
	}
}

func TestGetHybridAnalysisNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetHybridAnalysis("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestListHybridAnalyses(t *testing.T) {
	db := setupTestDB(t)

	ids := []string{"job-a", "job-b", "job-c"}
	for _, id := range ids {
		if err := db.CreateHybridAnalysis(id, testPost); err != nil {
			t.Fatalf("CreateHybridAnalysis(%s) failed: %v", id, err)
		}
	}
	if err := db.CompleteHybridAnalysis("job-b", sampleHybridResult()); err != nil {
		t.Fatalf("CompleteHybridAnalysis failed: %v", err)
	}

	all, err := db.ListHybridAnalyses("", 10, 0)
	if err != nil {
		t.Fatalf("ListHybridAnalyses failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(all))
	}

	hybridOnly, err := db.ListHybridAnalyses(models.MethodHybrid, 10, 0)
	if err != nil {
		t.Fatalf("ListHybridAnalyses(method) failed: %v", err)
	}
	if len(hybridOnly) != 1 || hybridOnly[0].ID != "job-b" {
		t.Errorf("Expected only job-b for method filter, got %d records", len(hybridOnly))
	}

	page, err := db.ListHybridAnalyses("", 2, 0)
	if err != nil {
		t.Fatalf("ListHybridAnalyses(paged) failed: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("Expected page of 2 records, got %d", len(page))
	}
}

func TestDeleteHybridAnalysis(t *testing.T) {
	db := setupTestDB(t)

	if err := db.CreateHybridAnalysis("job-del", testPost); err != nil {
		t.Fatalf("CreateHybridAnalysis failed: %v", err)
	}
	if err := db.DeleteHybridAnalysis("job-del"); err != nil {
		t.Fatalf("DeleteHybridAnalysis failed: %v", err)
	}
	if _, err := db.GetHybridAnalysis("job-del"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := db.DeleteHybridAnalysis("job-del"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on double delete, got %v", err)
	}
}

func TestComparisonLifecycle(t *testing.T) {
	db := setupTestDB(t)

	if err := db.CreateComparison("cmp-1", "draft a", "draft b"); err != nil {
		t.Fatalf("CreateComparison failed: %v", err)
	}

	record, err := db.GetComparison("cmp-1")
	if err != nil {
		t.Fatalf("GetComparison failed: %v", err)
	}
	if record.Status != models.JobQueued {
		t.Errorf("Expected status %q, got %q", models.JobQueued, record.Status)
	}
	if record.Result != nil || record.MetricsA != nil {
		t.Error("Expected no result on a queued comparison")
	}

	if err := db.MarkComparisonProcessing("cmp-1"); err != nil {
		t.Fatalf("MarkComparisonProcessing failed: %v", err)
	}

	verdict := models.ComparisonResult{Winner: models.WinnerA, Margin: 12}
	metricsA := models.PostMetrics{EngagementScore: 70, ReachScore: 60, ViralityScore: 55, Likes: 168}
	metricsB := models.PostMetrics{EngagementScore: 58, ReachScore: 52, ViralityScore: 50, Likes: 139}
	if err := db.CompleteComparison("cmp-1", verdict, metricsA, metricsB); err != nil {
		t.Fatalf("CompleteComparison failed: %v", err)
	}

	record, err = db.GetComparison("cmp-1")
	if err != nil {
		t.Fatalf("GetComparison failed: %v", err)
	}
	if record.Status != models.JobComplete {
		t.Errorf("Expected status %q, got %q", models.JobComplete, record.Status)
	}
	if record.Result == nil || *record.Result != verdict {
		t.Errorf("Stored verdict %+v, want %+v", record.Result, verdict)
	}
	if record.MetricsA == nil || *record.MetricsA != metricsA {
		t.Errorf("Stored metrics A %+v, want %+v", record.MetricsA, metricsA)
	}
	if record.MetricsB == nil || *record.MetricsB != metricsB {
		t.Errorf("Stored metrics B %+v, want %+v", record.MetricsB, metricsB)
	}
}

func TestFailComparison(t *testing.T) {
	db := setupTestDB(t)

	if err := db.CreateComparison("cmp-fail", "a", "b"); err != nil {
		t.Fatalf("CreateComparison failed: %v", err)
	}
	if err := db.FailComparison("cmp-fail", "worker crashed"); err != nil {
		t.Fatalf("FailComparison failed: %v", err)
	}

	record, err := db.GetComparison("cmp-fail")
	if err != nil {
		t.Fatalf("GetComparison failed: %v", err)
	}
	if record.Status != models.JobFailed {
		t.Errorf("Expected status %q, got %q", models.JobFailed, record.Status)
	}
	if record.LastError != "worker crashed" {
		t.Errorf("Expected stored error, got %q", record.LastError)
	}
}

func TestDeleteComparison(t *testing.T) {
	db := setupTestDB(t)

	if err := db.CreateComparison("cmp-del", "a", "b"); err != nil {
		t.Fatalf("CreateComparison failed: %v", err)
	}
	if err := db.DeleteComparison("cmp-del"); err != nil {
		t.Fatalf("DeleteComparison failed: %v", err)
	}
	if _, err := db.GetComparison("cmp-del"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}
