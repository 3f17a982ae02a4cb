package scoring

import (
	"fmt"
	"testing"

	"github.com/postforge/postscore/internal/models"
)

const samplePost = `I made a mistake that cost us our biggest client.

Here's what I learned about listening before pitching:
- Ask questions first
- Follow up within a day
- Never assume the budget

What do you think? Let me know in the comments.

#sales #lessons #growth`

func allProfiles() []Profile {
	return []Profile{ProfileMultiplicativeV1, ProfileWeightedV2, ProfileEightFactorV3}
}

func TestScoreEmptyText(t *testing.T) {
	for _, profile := range allProfiles() {
		t.Run(string(profile), func(t *testing.T) {
			engine := New(Config{Profile: profile})
			for _, input := range []string{"", "   ", "\n\n"} {
				got := engine.Score(input, nil)
				if got != (models.PostMetrics{}) {
					t.Errorf("Score(%q) = %+v, want all zeros", input, got)
				}
			}
		})
	}
}

func TestScoreDeterminism(t *testing.T) {
	params := &models.AdvancedParams{
		FollowerRange:   models.Followers2KTo10K,
		Industry:        "technology",
		EngagementLevel: models.EngagementHigh,
	}

	for _, profile := range allProfiles() {
		t.Run(string(profile), func(t *testing.T) {
			engine := New(Config{Profile: profile})
			first := engine.Score(samplePost, params)
			for i := 0; i < 5; i++ {
				if got := engine.Score(samplePost, params); got != first {
					t.Fatalf("run %d: got %+v, want %+v", i, got, first)
				}
			}

			// A fresh engine (cold cache) must agree with the cached path.
			cold := New(Config{Profile: profile}).Score(samplePost, params)
			if cold != first {
				t.Errorf("cold engine disagrees: %+v vs %+v", cold, first)
			}
		})
	}
}

func TestScoreNormalizationIdempotence(t *testing.T) {
	engine := New(Config{})
	base := engine.Score(samplePost, nil)
	padded := engine.Score("  "+samplePost+"\n\n", nil)
	if base != padded {
		t.Errorf("whitespace padding changed scores: %+v vs %+v", base, padded)
	}
}

func TestScoreBounds(t *testing.T) {
	inputs := []string{
		samplePost,
		"short",
		"ALL CAPS RANT!!! TERRIBLE AWFUL HORRIBLE FAILURE",
		string(make([]byte, 5000)),
		"🚀🚀🚀🚀🚀🚀🚀🚀🚀🚀 #a #b #c #d #e #f #g #h #i #j",
	}
	paramSets := []*models.AdvancedParams{
		nil,
		{FollowerRange: models.Followers50KPlus, Industry: "technology", EngagementLevel: models.EngagementHigh},
		{FollowerRange: models.Followers0To500, EngagementLevel: models.EngagementLow},
	}

	for _, profile := range allProfiles() {
		engine := New(Config{Profile: profile})
		for i, input := range inputs {
			for j, params := range paramSets {
				t.Run(fmt.Sprintf("%s/input%d/params%d", profile, i, j), func(t *testing.T) {
					m := engine.Score(input, params)
					for name, score := range map[string]int{
						"engagement": m.EngagementScore,
						"reach":      m.ReachScore,
						"virality":   m.ViralityScore,
					} {
						if score < 0 || score > 100 {
							t.Errorf("%s score %d out of [0,100]", name, score)
						}
					}
					if m.Likes < 0 || m.Comments < 0 || m.Shares < 0 {
						t.Errorf("negative derived counts: %+v", m)
					}
				})
			}
		}
	}
}

func TestHashtagMonotonicity(t *testing.T) {
	base := "Sharing a quick lesson from our latest product launch. Shipping early beat waiting for perfect, and customer calls taught us more than any dashboard."

	for _, profile := range allProfiles() {
		t.Run(string(profile), func(t *testing.T) {
			engine := New(Config{Profile: profile})
			without := engine.Score(base, nil)
			with := engine.Score(base+" #product", nil)
			if with.ReachScore < without.ReachScore {
				t.Errorf("adding first hashtag lowered reach: %d -> %d", without.ReachScore, with.ReachScore)
			}
		})
	}
}

func TestLengthFactorShape(t *testing.T) {
	band := lengthBands[ProfileWeightedV2]
	mid := (band.low + band.high) / 2

	peak := lengthFactor(mid, band)
	short := lengthFactor(40, band)
	long := lengthFactor(band.high*3, band)

	if peak <= short || peak <= long {
		t.Errorf("band midpoint should dominate: peak=%f short=%f long=%f", peak, short, long)
	}
	if long <= 0 {
		t.Errorf("over-length factor should stay above zero, got %f", long)
	}

	// A 2000-char post vs its 300-char rewrite under the v1 band
	// (150-800) must not favor the longer one.
	v1 := lengthBands[ProfileMultiplicativeV1]
	if lengthFactor(300, v1) < lengthFactor(2000, v1) {
		t.Error("300-char post should score at least as well as a 2000-char post on length")
	}
}

func TestAudienceMultipliers(t *testing.T) {
	engine := New(Config{})

	small := engine.Score(samplePost, &models.AdvancedParams{FollowerRange: models.Followers0To500})
	large := engine.Score(samplePost, &models.AdvancedParams{FollowerRange: models.Followers50KPlus})
	if small.EngagementScore >= large.EngagementScore {
		t.Errorf("follower bucket should scale scores: small=%d large=%d",
			small.EngagementScore, large.EngagementScore)
	}

	low := engine.Score(samplePost, &models.AdvancedParams{EngagementLevel: models.EngagementLow})
	high := engine.Score(samplePost, &models.AdvancedParams{EngagementLevel: models.EngagementHigh})
	if low.EngagementScore >= high.EngagementScore {
		t.Errorf("engagement level should scale scores: low=%d high=%d",
			low.EngagementScore, high.EngagementScore)
	}
}

func TestIndustryMultiplierRelevance(t *testing.T) {
	techPost := "We rewrote the api layer and our cloud data pipeline. The engineering team shipped the new developer product last week. #tech"

	relevant := industryMultiplier("technology", Normalize(techPost))
	irrelevant := industryMultiplier("healthcare", Normalize(techPost))
	unknown := industryMultiplier("underwater-basket-weaving", Normalize(techPost))

	if relevant <= irrelevant {
		t.Errorf("matching vocabulary should raise the multiplier: relevant=%f irrelevant=%f", relevant, irrelevant)
	}
	if unknown != 1.0 {
		t.Errorf("unknown industry should be neutral, got %f", unknown)
	}
}

func TestDerivedCountsScaleWithParams(t *testing.T) {
	m := models.PostMetrics{EngagementScore: 60, ViralityScore: 40}

	likes, comments, shares := DeriveCounts(m, false)
	likesAdv, commentsAdv, sharesAdv := DeriveCounts(m, true)

	if likes <= comments || likes <= shares {
		t.Errorf("likes should dominate: likes=%d comments=%d shares=%d", likes, comments, shares)
	}
	if likesAdv <= likes || commentsAdv <= comments || sharesAdv <= shares {
		t.Error("advanced params should raise derived counts")
	}

	zeros, zc, zs := DeriveCounts(models.PostMetrics{}, true)
	if zeros != 0 || zc != 0 || zs != 0 {
		t.Error("zero scores must derive zero counts")
	}
}

func TestEightFactorWeightSum(t *testing.T) {
	var sum float64
	for _, fw := range eightFactorWeightsV3 {
		sum += fw.Weight
	}
	if sum != 100 {
		t.Errorf("canonical weights must sum to 100, got %f", sum)
	}
}

func TestCacheBounded(t *testing.T) {
	engine := New(Config{CacheSize: 8})
	for i := 0; i < 100; i++ {
		engine.Score(fmt.Sprintf("post number %d with some content", i), nil)
	}
	if engine.cache.len() > 8 {
		t.Errorf("cache exceeded bound: %d entries", engine.cache.len())
	}

	hits, misses := engine.CacheStats()
	if misses == 0 {
		t.Error("expected cache misses to be counted")
	}
	_ = hits
}
