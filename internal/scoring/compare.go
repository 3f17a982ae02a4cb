package scoring

import (
	"math"

	"github.com/postforge/postscore/internal/models"
)

// Compare ranks two post drafts. Identical normalized text is a tie by
// identity, decided before any scoring. Otherwise the winner is the side
// with the higher composite score (engagement 50%, reach 30%, virality
// 20%); gaps under the materiality threshold are forced to a tie so
// noise-level differences never declare a winner.
func (e *Engine) Compare(textA, textB string, params *models.AdvancedParams) models.ComparisonResult {
	result, _, _ := e.CompareWithMetrics(textA, textB, params)
	return result
}

// CompareWithMetrics is Compare plus both sides' full metrics, for
// callers that persist or display the underlying scores.
func (e *Engine) CompareWithMetrics(textA, textB string, params *models.AdvancedParams) (models.ComparisonResult, models.PostMetrics, models.PostMetrics) {
	metricsA := e.Score(textA, params)
	metricsB := e.Score(textB, params)

	if normalizedEqual(textA, textB) {
		return models.ComparisonResult{Winner: models.WinnerTie, Margin: 0}, metricsA, metricsB
	}

	return CompareMetrics(metricsA, metricsB), metricsA, metricsB
}

// CompareMetrics ranks two already-computed metric sets with the same
// composite and materiality rules as Compare. It cannot apply the
// identity-tie rule; callers comparing raw text should use Compare.
func CompareMetrics(metricsA, metricsB models.PostMetrics) models.ComparisonResult {
	compositeA := composite(metricsA)
	compositeB := composite(metricsB)

	delta := math.Abs(compositeA - compositeB)
	if delta < materialityThreshold {
		return models.ComparisonResult{Winner: models.WinnerTie, Margin: 0}
	}

	winner := models.WinnerA
	if compositeB > compositeA {
		winner = models.WinnerB
	}

	lower := math.Min(compositeA, compositeB)
	// Margin is relative to the losing side; against a zero composite it
	// is reported as the 100% ceiling rather than dividing by zero.
	margin := 100
	if lower > 0 {
		margin = int(math.Round(delta / lower * 100))
	}
	return models.ComparisonResult{Winner: winner, Margin: margin}
}

// composite blends the three sub-scores into a single ranking number.
func composite(m models.PostMetrics) float64 {
	return compositeEngagementWeight*float64(m.EngagementScore) +
		compositeReachWeight*float64(m.ReachScore) +
		compositeViralityWeight*float64(m.ViralityScore)
}
