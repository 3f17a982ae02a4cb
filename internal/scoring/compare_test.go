package scoring

import (
	"testing"

	"github.com/postforge/postscore/internal/models"
)

func TestCompareIdenticalTextIsTie(t *testing.T) {
	inputs := []string{
		"Great news, team!",
		samplePost,
		"x",
	}

	engine := New(Config{})
	for _, text := range inputs {
		result := engine.Compare(text, text, nil)
		if result.Winner != models.WinnerTie || result.Margin != 0 {
			t.Errorf("Compare(%q, same) = %+v, want tie with zero margin", text, result)
		}
	}
}

func TestCompareTieIgnoresWhitespaceAndCase(t *testing.T) {
	engine := New(Config{})
	result := engine.Compare("Great news, team!", "  great NEWS, team!  ", nil)
	if result.Winner != models.WinnerTie || result.Margin != 0 {
		t.Errorf("normalized-equal texts should tie, got %+v", result)
	}
}

func TestCompareStrongerPostWins(t *testing.T) {
	weak := "ok"
	strong := samplePost

	engine := New(Config{})
	result, metricsA, metricsB := engine.CompareWithMetrics(weak, strong, nil)

	if result.Winner != models.WinnerB {
		t.Errorf("expected second post to win, got %+v (A=%+v B=%+v)", result, metricsA, metricsB)
	}
	if result.Margin <= 0 {
		t.Errorf("a declared winner needs a positive margin, got %d", result.Margin)
	}

	// Order symmetry: swapping sides flips the winner, not the margin.
	flipped := engine.Compare(strong, weak, nil)
	if flipped.Winner != models.WinnerA {
		t.Errorf("expected first post to win after swap, got %+v", flipped)
	}
	if flipped.Margin != result.Margin {
		t.Errorf("margin should be symmetric: %d vs %d", result.Margin, flipped.Margin)
	}
}

func TestCompareMaterialityThreshold(t *testing.T) {
	// Two variants that differ only by a trailing period score within
	// noise of each other and must not declare a winner.
	a := samplePost
	b := samplePost + "."

	engine := New(Config{})
	result := engine.Compare(a, b, nil)
	if result.Winner != models.WinnerTie {
		t.Errorf("noise-level difference declared a winner: %+v", result)
	}
	if result.Margin != 0 {
		t.Errorf("tie must carry zero margin, got %d", result.Margin)
	}
}

func TestNormalizedEqualAgreesWithFingerprint(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Hello team", "  hello TEAM  ", true},
		// Final sigma folds to sigma under EqualFold but survives
		// ToLower; the tie predicate must follow the fingerprint.
		{"καλό ς", "καλό σ", false},
		{"a", "b", false},
	}

	for _, tt := range tests {
		if got := normalizedEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("normalizedEqual(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := Fingerprint(tt.a) == Fingerprint(tt.b); got != tt.want {
			t.Errorf("fingerprint equality for (%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCompareMetricsZeroCompositeMargin(t *testing.T) {
	strong := models.PostMetrics{EngagementScore: 80, ReachScore: 70, ViralityScore: 60}
	result := CompareMetrics(strong, models.PostMetrics{})

	if result.Winner != models.WinnerA {
		t.Errorf("expected the scored side to win, got %+v", result)
	}
	if result.Margin != 100 {
		t.Errorf("margin against a zero composite should hit the 100%% ceiling, got %d", result.Margin)
	}
}

func TestCompareAgainstEmpty(t *testing.T) {
	engine := New(Config{})
	result := engine.Compare("", samplePost, nil)
	if result.Winner != models.WinnerB {
		t.Errorf("non-empty post should beat empty, got %+v", result)
	}
	if result.Margin < 0 {
		t.Errorf("margin must be non-negative, got %d", result.Margin)
	}
}
