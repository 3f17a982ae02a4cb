package scoring

import (
	"strings"

	"github.com/postforge/postscore/internal/models"
)

// Profile selects which scoring formula generation the engine runs.
// The three generations evolved in production with diverging constants;
// they are kept as explicit variants rather than silently merged.
type Profile string

const (
	// ProfileMultiplicativeV1 composes a base score with a chain of
	// feature-derived multipliers. Optimal length band: 150-800 chars.
	ProfileMultiplicativeV1 Profile = "multiplicative-v1"

	// ProfileWeightedV2 is a weighted sum over [0,1] factor values on
	// top of a base floor. Optimal length band: 150-1300 chars. Default.
	ProfileWeightedV2 Profile = "weighted-v2"

	// ProfileEightFactorV3 scores virality as a dot product of eight
	// factors pre-scored 0-10 against fixed canonical weights.
	ProfileEightFactorV3 Profile = "eight-factor-v3"
)

// ParseProfile maps a request string onto a known profile, falling back
// to the default for unknown or empty input.
func ParseProfile(s string) Profile {
	switch Profile(strings.ToLower(strings.TrimSpace(s))) {
	case ProfileMultiplicativeV1:
		return ProfileMultiplicativeV1
	case ProfileEightFactorV3:
		return ProfileEightFactorV3
	default:
		return ProfileWeightedV2
	}
}

// lengthBand is the optimal character-count band for a profile.
type lengthBand struct {
	low, high int
}

var lengthBands = map[Profile]lengthBand{
	ProfileMultiplicativeV1: {150, 800},
	ProfileWeightedV2:       {150, 1300},
	ProfileEightFactorV3:    {150, 1300},
}

// eightFactorWeightsV3 are the canonical percentages of the v3 formula.
// They must sum to 100; the engine divides by the actual sum so adding or
// removing a factor cannot silently skew scores.
var eightFactorWeightsV3 = []struct {
	Name   string
	Weight float64
}{
	{"hook", 20},
	{"storytelling", 15},
	{"value", 15},
	{"triggers", 15},
	{"structure", 10},
	{"length", 10},
	{"hashtags", 10},
	{"tone", 5},
}

// followerMultipliersV1: audience size scales absolute expectations.
var followerMultipliersV1 = map[models.FollowerRange]float64{
	models.Followers0To500:   0.50,
	models.Followers500To2K:  0.80,
	models.Followers2KTo10K:  1.00,
	models.Followers10KTo50K: 1.40,
	models.Followers50KPlus:  2.00,
}

// engagementMultipliersV1: historical audience activity.
var engagementMultipliersV1 = map[models.EngagementLevel]float64{
	models.EngagementLow:    0.60,
	models.EngagementMedium: 1.00,
	models.EngagementHigh:   1.50,
}

// Derived-count constants. Likes dominate comments and shares; the
// "advanced" set is larger because audience context makes absolute
// estimates realistic rather than conservative.
const (
	likesPerEngagement    = 2.4
	commentsPerEngagement = 0.30
	sharesPerVirality     = 0.20

	likesPerEngagementAdv    = 3.2
	commentsPerEngagementAdv = 0.45
	sharesPerViralityAdv     = 0.35
)

// Comparison constants: composite weighting and the materiality
// threshold below which a winner is not declared.
const (
	compositeEngagementWeight = 0.50
	compositeReachWeight      = 0.30
	compositeViralityWeight   = 0.20
	materialityThreshold      = 2.0
)

// industryMultiplier combines keyword relevance with the fixed
// per-industry scale. Unknown industries are neutral.
func industryMultiplier(industry, lowerText string) float64 {
	key := strings.ToLower(strings.TrimSpace(industry))
	keywords, ok := industryKeywordsV1[key]
	if !ok || len(keywords) == 0 {
		return 1.0
	}

	matched := 0
	for _, kw := range keywords {
		if strings.Contains(lowerText, kw) {
			matched++
		}
	}
	ratio := float64(matched) / float64(len(keywords))

	relevance := 0.8 + minFloat(0.6, ratio*0.6)
	scale, ok := industryMultipliersV1[key]
	if !ok {
		scale = 1.0
	}
	return relevance * scale
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
