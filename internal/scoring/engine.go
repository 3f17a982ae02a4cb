package scoring

import (
	"math"

	"github.com/postforge/postscore/internal/models"
)

// DefaultCacheSize bounds the fingerprint memoization cache.
const DefaultCacheSize = 4096

// Config configures a scoring engine.
type Config struct {
	// Profile selects the formula generation. Zero value means
	// ProfileWeightedV2.
	Profile Profile
	// CacheSize bounds the fingerprint LRU. Zero means DefaultCacheSize.
	CacheSize int
}

// Engine is the deterministic post-scoring engine. It is safe for
// concurrent use; the only shared mutable state is the fingerprint cache.
type Engine struct {
	profile Profile
	cache   *lruCache
}

// New creates a scoring engine.
func New(cfg Config) *Engine {
	profile := cfg.Profile
	if profile == "" {
		profile = ProfileWeightedV2
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Engine{
		profile: profile,
		cache:   newLRUCache(size),
	}
}

// Profile returns the formula generation this engine runs.
func (e *Engine) Profile() Profile { return e.profile }

// CacheStats returns lifetime fingerprint-cache hit/miss counts.
func (e *Engine) CacheStats() (hits, misses uint64) { return e.cache.stats() }

// Score computes PostMetrics for a post. Identical normalized text always
// yields identical output; params only select audience multipliers.
func (e *Engine) Score(text string, params *models.AdvancedParams) models.PostMetrics {
	metrics, _ := e.ScoreWithFeatures(text, params)
	return metrics
}

// ScoreWithFeatures is Score plus the extracted feature vector, for
// callers that present sub-signals alongside the composite result.
func (e *Engine) ScoreWithFeatures(text string, params *models.AdvancedParams) (models.PostMetrics, models.FeatureVector) {
	content := e.contentScores(text)

	engagement := content.engagement
	reach := content.reach
	virality := content.virality

	if params != nil {
		mult := audienceMultiplier(params, Normalize(text))
		engagement *= mult
		reach *= mult
		virality *= mult
	}

	// Clamp exactly once, after the full multiplier chain.
	metrics := models.PostMetrics{
		EngagementScore: clampScore(engagement),
		ReachScore:      clampScore(reach),
		ViralityScore:   clampScore(virality),
	}
	metrics.Likes, metrics.Comments, metrics.Shares = deriveCounts(metrics, params != nil)
	return metrics, content.features
}

// contentScores returns the params-independent sub-scores, memoized by
// fingerprint.
func (e *Engine) contentScores(text string) contentScores {
	key := Fingerprint(text)
	if cached, ok := e.cache.get(key); ok {
		return cached
	}

	fv := ExtractFeatures(text)
	var scores contentScores
	scores.features = fv

	if fv.Length == 0 {
		e.cache.put(key, scores)
		return scores
	}

	switch e.profile {
	case ProfileMultiplicativeV1:
		scores.engagement, scores.reach, scores.virality = scoreMultiplicativeV1(fv)
	case ProfileEightFactorV3:
		scores.engagement, scores.reach, scores.virality = scoreEightFactorV3(fv)
	default:
		scores.engagement, scores.reach, scores.virality = scoreWeightedV2(fv)
	}

	e.cache.put(key, scores)
	return scores
}

// scoreMultiplicativeV1: base score times a chain of multipliers each
// centered near 1.0. Multiplication commutes, so order is irrelevant;
// clamping happens once in the caller.
func scoreMultiplicativeV1(fv models.FeatureVector) (engagement, reach, virality float64) {
	band := lengthBands[ProfileMultiplicativeV1]
	length := lengthFactor(fv.Length, band)
	hook := 0.85 + 0.35*fv.HookStrength
	triggers := 0.90 + 0.30*triggerStrength(fv.TriggerCount)
	story := 0.90 + 0.25*fv.StorytellingScore
	value := 0.90 + 0.25*fv.ValueScore
	sentiment := 1.0 + 0.10*fv.Sentiment
	structure := structureMultiplier(fv)
	readTime := readTimeMultiplier(fv.ReadingTimeMin)

	cta := 0.95
	if fv.HasCTA {
		cta = 1.10
	}

	lengthMult := 0.70 + 0.50*length

	engagement = 50 * lengthMult * hook * triggers * cta * sentiment * structure * readTime
	reach = 50 * lengthMult * hashtagMultiplier(fv.HashtagCount) * hook * value
	virality = 45 * hook * story * triggers * emojiMultiplier(fv.EmojiCount) * sentiment
	return engagement, reach, virality
}

// scoreWeightedV2: base floor plus a weighted average of [0,1] factor
// values scaled by a bonus cap.
func scoreWeightedV2(fv models.FeatureVector) (engagement, reach, virality float64) {
	band := lengthBands[ProfileWeightedV2]
	length := lengthFactor(fv.Length, band)
	hook := fv.HookStrength
	triggers := triggerStrength(fv.TriggerCount)
	structure := structureFactor(fv)
	readTime := readTimeFactor(fv.ReadingTimeMin)
	hashtags := hashtagFactor(fv.HashtagCount)
	emoji := emojiFactor(fv.EmojiCount)
	tone := (fv.Sentiment + 1) / 2

	cta := 0.0
	if fv.HasCTA {
		cta = 1.0
	}

	const base, bonus = 35.0, 60.0

	engagement = base + bonus*weightedAverage([]weightedFactor{
		{hook, 25}, {triggers, 20}, {length, 15}, {cta, 10},
		{structure, 10}, {readTime, 10}, {fv.ValueScore, 5}, {tone, 5},
	})
	reach = base + bonus*weightedAverage([]weightedFactor{
		{length, 25}, {hashtags, 25}, {hook, 20},
		{fv.ValueScore, 15}, {structure, 10}, {tone, 5},
	})
	virality = base - 5 + bonus*weightedAverage([]weightedFactor{
		{hook, 25}, {fv.StorytellingScore, 20}, {triggers, 20},
		{emoji, 10}, {fv.ValueScore, 10}, {length, 10}, {tone, 5},
	})
	return engagement, reach, virality
}

// scoreEightFactorV3: virality is the dot product of eight factors
// pre-scored 0-10 against the canonical weight table. Dividing by the
// actual weight sum guards against drift if the table ever changes.
func scoreEightFactorV3(fv models.FeatureVector) (engagement, reach, virality float64) {
	band := lengthBands[ProfileEightFactorV3]

	factorValues := map[string]float64{
		"hook":         fv.HookStrength * 10,
		"storytelling": fv.StorytellingScore * 10,
		"value":        fv.ValueScore * 10,
		"triggers":     triggerStrength(fv.TriggerCount) * 10,
		"structure":    structureFactor(fv) * 10,
		"length":       lengthFactor(fv.Length, band) * 10,
		"hashtags":     hashtagFactor(fv.HashtagCount) * 10,
		"tone":         (fv.Sentiment + 1) / 2 * 10,
	}

	var dot, weightSum float64
	for _, fw := range eightFactorWeightsV3 {
		dot += factorValues[fw.Name] * fw.Weight
		weightSum += fw.Weight
	}
	// 0-10 scale, then onto the 0-100 score scale.
	virality = dot / weightSum * 10

	// Engagement and reach reuse the v2 weighted-sum model; the v3
	// formula only redefined virality.
	engagement, reach, _ = scoreWeightedV2(fv)
	return engagement, reach, virality
}

type weightedFactor struct {
	value  float64
	weight float64
}

func weightedAverage(factors []weightedFactor) float64 {
	var sum, weights float64
	for _, f := range factors {
		sum += f.value * f.weight
		weights += f.weight
	}
	if weights == 0 {
		return 0
	}
	return sum / weights
}

// lengthFactor is the piecewise optimal-band curve on [0,1]: linear ramp
// below the band, near-peak with a cosine bump inside, linear decay with
// a floor above. It never reaches zero for non-empty text.
func lengthFactor(length int, band lengthBand) float64 {
	const (
		floor = 0.15
		peak  = 1.0
	)
	l := float64(length)
	low, high := float64(band.low), float64(band.high)

	switch {
	case length <= 0:
		return 0
	case l < low:
		return floor + (0.85-floor)*(l/low)
	case l <= high:
		// Cosine bump centered on the band midpoint.
		mid := (low + high) / 2
		halfWidth := (high - low) / 2
		return 0.85 + (peak-0.85)*math.Cos((l-mid)/halfWidth*math.Pi/2)
	default:
		over := (l - high) / high
		return math.Max(floor, 0.85-0.5*over)
	}
}

// hashtagFactor peaks at the 3-5 hashtag sweet spot. It is monotonically
// non-decreasing up to the optimum.
func hashtagFactor(count int) float64 {
	switch {
	case count == 0:
		return 0.20
	case count <= 2:
		return 0.60
	case count <= 5:
		return 1.00
	case count <= 8:
		return 0.70
	default:
		return 0.40
	}
}

func hashtagMultiplier(count int) float64 {
	return 0.85 + 0.30*hashtagFactor(count)
}

func emojiFactor(count int) float64 {
	switch {
	case count == 0:
		return 0.40
	case count <= 3:
		return 1.00
	case count <= 6:
		return 0.70
	default:
		return 0.30
	}
}

func emojiMultiplier(count int) float64 {
	return 0.90 + 0.20*emojiFactor(count)
}

// structureFactor rewards paragraph breaks and list formatting on [0,1].
func structureFactor(fv models.FeatureVector) float64 {
	score := 0.0
	switch {
	case fv.ParagraphCount >= 3:
		score += 0.60
	case fv.ParagraphCount == 2:
		score += 0.35
	default:
		score += 0.10
	}
	if fv.BulletCount > 0 || fv.NumberedListCount > 0 {
		score += 0.40
	}
	return math.Min(1, score)
}

func structureMultiplier(fv models.FeatureVector) float64 {
	return 0.90 + 0.20*structureFactor(fv)
}

// readTimeFactor is a bell peaking at 1-3 minute reads.
func readTimeFactor(minutes int) float64 {
	switch {
	case minutes <= 0:
		return 0.30
	case minutes <= 3:
		return 1.00
	case minutes <= 5:
		return 0.60
	default:
		return 0.25
	}
}

func readTimeMultiplier(minutes int) float64 {
	return 0.85 + 0.25*readTimeFactor(minutes)
}

// audienceMultiplier composes the three AdvancedParams multipliers.
// Multiplication commutes, so composition order is fixed only for
// consistency between calls.
func audienceMultiplier(params *models.AdvancedParams, normalizedText string) float64 {
	mult := 1.0
	if m, ok := followerMultipliersV1[params.FollowerRange]; ok {
		mult *= m
	}
	if params.Industry != "" {
		mult *= industryMultiplier(params.Industry, normalizedText)
	}
	if m, ok := engagementMultipliersV1[params.EngagementLevel]; ok {
		mult *= m
	}
	return mult
}

// deriveCounts maps scores onto expected like/comment/share counts.
// Zero scores always derive zero counts.
func deriveCounts(m models.PostMetrics, advanced bool) (likes, comments, shares int) {
	kLikes, kComments, kShares := likesPerEngagement, commentsPerEngagement, sharesPerVirality
	if advanced {
		kLikes, kComments, kShares = likesPerEngagementAdv, commentsPerEngagementAdv, sharesPerViralityAdv
	}
	likes = int(math.Round(float64(m.EngagementScore) * kLikes))
	comments = int(math.Round(float64(m.EngagementScore) * kComments))
	shares = int(math.Round(float64(m.ViralityScore) * kShares))
	return likes, comments, shares
}

// DeriveCounts recomputes derived interaction counts for externally
// blended scores, using the same constants as Score.
func DeriveCounts(m models.PostMetrics, advanced bool) (likes, comments, shares int) {
	return deriveCounts(m, advanced)
}

func clampScore(score float64) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(math.Round(score))
}

// normalizedEqual reports whether two texts share a fingerprint without
// hashing. Must agree exactly with Normalize; EqualFold does not (it
// folds characters that ToLower keeps distinct).
func normalizedEqual(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
