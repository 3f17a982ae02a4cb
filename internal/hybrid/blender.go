package hybrid

import (
	"context"
	"log/slog"
	"math"

	"github.com/postforge/postscore/internal/llm"
	"github.com/postforge/postscore/internal/models"
	"github.com/postforge/postscore/internal/scoring"
)

// Options are the blender's tunable heuristics. The constants have no
// derivation beyond tuning against observed posts; treat them as
// configuration, not business rules.
type Options struct {
	// AIConfidenceThreshold below which AI scores are discarded
	// entirely (hashtags and suggestions are still kept).
	AIConfidenceThreshold float64
	// PreferEnhanced biases blend weights toward the deterministic side.
	PreferEnhanced bool
	// RealismPenaltyAbove is the average AI score beyond which the
	// realism penalty applies; LLMs flatter drafts.
	RealismPenaltyAbove float64
	// RealismPenalty subtracted from AI confidence when triggered.
	RealismPenalty float64
	// SuggestionBonus added to AI confidence when the provider returned
	// at least two suggestions.
	SuggestionBonus float64
	// MinEnhancedConfidence under which a confident AI result takes
	// over entirely (ai-only).
	MinEnhancedConfidence float64
}

// DefaultOptions returns the tuned defaults.
func DefaultOptions() Options {
	return Options{
		AIConfidenceThreshold: 0.6,
		PreferEnhanced:        true,
		RealismPenaltyAbove:   85,
		RealismPenalty:        0.25,
		SuggestionBonus:       0.10,
		MinEnhancedConfidence: 0.20,
	}
}

// Blender combines deterministic scoring with the AI adapter's opinion
// under confidence weighting.
type Blender struct {
	engine *scoring.Engine
	ai     *llm.Client
	opts   Options
	logger *slog.Logger
}

// NewBlender creates a blender. The AI client may be nil, in which case
// every analysis is enhanced-only.
func NewBlender(engine *scoring.Engine, ai *llm.Client, opts Options) *Blender {
	if opts.AIConfidenceThreshold <= 0 {
		opts = DefaultOptions()
	}
	return &Blender{
		engine: engine,
		ai:     ai,
		opts:   opts,
		logger: slog.Default(),
	}
}

// Analyze runs the deterministic engine and the AI adapter for one post
// and blends the results. The AI call is the only suspension point; its
// failure never fails the analysis.
func (b *Blender) Analyze(ctx context.Context, text string, params *models.AdvancedParams) models.HybridResult {
	metrics, features := b.engine.ScoreWithFeatures(text, params)

	industry := ""
	if params != nil {
		industry = params.Industry
	}
	aiResult := b.ai.Analyze(ctx, text, industry)

	result := Blend(metrics, features, aiResult, params != nil, b.opts)
	b.logger.Info("hybrid analysis complete",
		"method", result.AnalysisMethod,
		"confidence", result.Confidence,
		"ai_contribution", result.AIContribution,
	)
	return result
}

// Blend is the pure blending step: deterministic metrics plus an
// optional, already-validated AI result. Exposed separately so the
// confidence logic is testable without a provider.
func Blend(det models.PostMetrics, features models.FeatureVector, ai *models.AIResult, advanced bool, opts Options) models.HybridResult {
	enhanced := models.EnhancedScores{
		Features:        features,
		EngagementScore: det.EngagementScore,
		ReachScore:      det.ReachScore,
		ViralityScore:   det.ViralityScore,
	}

	detConf := deterministicConfidence(det)

	if ai == nil {
		return models.HybridResult{
			Enhanced:       enhanced,
			Legacy:         det,
			Confidence:     detConf,
			AnalysisMethod: models.MethodEnhancedOnly,
			AIContribution: 0,
		}
	}

	aiConf := aiConfidence(det, ai, opts)

	if aiConf < opts.AIConfidenceThreshold {
		// AI scores are discarded; its qualitative output is still
		// worth surfacing.
		return models.HybridResult{
			Enhanced:            enhanced,
			Legacy:              det,
			Confidence:          detConf,
			AnalysisMethod:      models.MethodEnhancedOnly,
			AIContribution:      0,
			Suggestions:         ai.Suggestions,
			RecommendedHashtags: ai.RecommendedHashtags,
		}
	}

	var detWeight float64
	method := models.MethodHybrid
	switch {
	case detConf < opts.MinEnhancedConfidence:
		detWeight = 0
		method = models.MethodAIOnly
	case opts.PreferEnhanced:
		detWeight = math.Max(0.6, 1-aiConf*0.4)
	default:
		detWeight = math.Max(0.4, 1-aiConf*0.6)
	}
	aiWeight := 1 - detWeight

	blended := models.PostMetrics{
		EngagementScore: blendScore(det.EngagementScore, ai.EngagementScore, detWeight),
		ReachScore:      blendScore(det.ReachScore, ai.ReachScore, detWeight),
		ViralityScore:   blendScore(det.ViralityScore, ai.ViralityScore, detWeight),
	}
	// Derived counts come from the blended scores, not from averaging
	// the two sides' counts; interpolating counts compounds rounding.
	blended.Likes, blended.Comments, blended.Shares = scoring.DeriveCounts(blended, advanced)

	return models.HybridResult{
		Enhanced:            enhanced,
		Legacy:              blended,
		Confidence:          clamp01(detWeight*detConf + aiWeight*aiConf),
		AnalysisMethod:      method,
		AIContribution:      aiWeight,
		Suggestions:         ai.Suggestions,
		RecommendedHashtags: ai.RecommendedHashtags,
	}
}

// deterministicConfidence grows with internal consistency (low spread
// across the three sub-scores) and with absolute score level.
func deterministicConfidence(m models.PostMetrics) float64 {
	scores := []float64{
		float64(m.EngagementScore),
		float64(m.ReachScore),
		float64(m.ViralityScore),
	}

	var mean float64
	for _, s := range scores {
		mean += s
	}
	mean /= float64(len(scores))

	var variance float64
	for _, s := range scores {
		variance += (s - mean) * (s - mean)
	}
	stddev := math.Sqrt(variance / float64(len(scores)))

	// Level multiplies rather than adds: near-zero scores mean the
	// extractors found nothing to score, and agreement between three
	// zeros is not evidence.
	consistency := 1 - math.Min(1, stddev/30)
	level := mean / 100
	return clamp01(level * (0.4 + 0.6*consistency))
}

// aiConfidence: agreement with the deterministic mean, minus a realism
// penalty for implausibly high scores, plus a bonus for substantive
// suggestion output.
func aiConfidence(det models.PostMetrics, ai *models.AIResult, opts Options) float64 {
	detMean := float64(det.EngagementScore+det.ReachScore+det.ViralityScore) / 3
	aiMean := float64(ai.EngagementScore+ai.ReachScore+ai.ViralityScore) / 3

	agreement := 1 - math.Min(1, math.Abs(aiMean-detMean)/50)
	conf := 0.3 + 0.5*agreement

	if aiMean > opts.RealismPenaltyAbove {
		conf -= opts.RealismPenalty
	}
	if len(ai.Suggestions) >= 2 {
		conf += opts.SuggestionBonus
	}
	return clamp01(conf)
}

func blendScore(det, ai int, detWeight float64) int {
	blended := float64(det)*detWeight + float64(ai)*(1-detWeight)
	return int(math.Round(blended))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
