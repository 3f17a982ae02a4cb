package scoring

import "github.com/postforge/postscore/internal/models"

const (
	minSuggestions = 2
	maxSuggestions = 5
)

// suggestionRule pairs a predicate over the feature vector with the
// static suggestion it emits. Rules run in catalog order, which keeps the
// output ordering stable across calls.
type suggestionRule struct {
	When       func(models.FeatureVector) bool
	Suggestion models.Suggestion
}

var suggestionRulesV1 = []suggestionRule{
	{
		When: func(fv models.FeatureVector) bool { return fv.Length > 0 && fv.Length < 150 },
		Suggestion: models.Suggestion{
			ID: "too-short", Type: models.SuggestionImprovement,
			Title:       "Expand your post",
			Description: "Posts under 150 characters rarely carry enough substance to earn engagement. Add context, a lesson, or an example.",
		},
	},
	{
		When: func(fv models.FeatureVector) bool { return fv.Length > 1300 },
		Suggestion: models.Suggestion{
			ID: "too-long", Type: models.SuggestionWarning,
			Title:       "Tighten it up",
			Description: "Very long posts lose readers before the payoff. Cut anything that doesn't serve the core idea.",
		},
	},
	{
		When: func(fv models.FeatureVector) bool { return fv.HashtagCount == 0 },
		Suggestion: models.Suggestion{
			ID: "no-hashtags", Type: models.SuggestionImprovement,
			Title:       "Add 3-5 hashtags",
			Description: "Hashtags extend reach beyond your network. Three to five niche tags outperform broad ones.",
		},
	},
	{
		When: func(fv models.FeatureVector) bool { return fv.HashtagCount > 8 },
		Suggestion: models.Suggestion{
			ID: "too-many-hashtags", Type: models.SuggestionWarning,
			Title:       "Trim your hashtags",
			Description: "More than eight hashtags reads as spam and suppresses distribution. Keep the three to five most specific ones.",
		},
	},
	{
		When: func(fv models.FeatureVector) bool { return fv.TriggerCount == 0 && !fv.HasQuestion },
		Suggestion: models.Suggestion{
			ID: "no-engagement-trigger", Type: models.SuggestionImprovement,
			Title:       "Invite a response",
			Description: "End with a question or ask readers to share their experience. Posts that invite replies earn far more comments.",
		},
	},
	{
		When: func(fv models.FeatureVector) bool { return fv.HookStrength < 0.3 },
		Suggestion: models.Suggestion{
			ID: "weak-hook", Type: models.SuggestionImprovement,
			Title:       "Strengthen your opening line",
			Description: "Only the first 100 characters show before \"see more\". Lead with a question, a number, or a bold statement.",
		},
	},
	{
		When: func(fv models.FeatureVector) bool { return fv.Length >= 300 && fv.ParagraphCount <= 1 },
		Suggestion: models.Suggestion{
			ID: "no-paragraph-breaks", Type: models.SuggestionImprovement,
			Title:       "Break up the wall of text",
			Description: "A single block of text is hard to scan on mobile. Split it into short paragraphs with blank lines between them.",
		},
	},
	{
		When: func(fv models.FeatureVector) bool { return fv.ReadingTimeMin > 3 },
		Suggestion: models.Suggestion{
			ID: "too-long-reading-time", Type: models.SuggestionWarning,
			Title:       "Shorten the read",
			Description: "This takes more than three minutes to read. Feed engagement drops sharply past that point.",
		},
	},
	{
		When: func(fv models.FeatureVector) bool { return fv.Sentiment < -0.2 },
		Suggestion: models.Suggestion{
			ID: "negative-sentiment", Type: models.SuggestionWarning,
			Title:       "Balance the negativity",
			Description: "Heavily negative posts underperform. Pair the problem with a lesson, a fix, or a way forward.",
		},
	},
	{
		When: func(fv models.FeatureVector) bool { return fv.Length >= 150 && fv.EmojiCount == 0 },
		Suggestion: models.Suggestion{
			ID: "no-emoji", Type: models.SuggestionTip,
			Title:       "Consider an emoji or two",
			Description: "One or two well-placed emoji add visual anchors without hurting credibility.",
		},
	},
	{
		When: func(fv models.FeatureVector) bool { return fv.EmojiCount > 6 },
		Suggestion: models.Suggestion{
			ID: "too-many-emoji", Type: models.SuggestionWarning,
			Title:       "Cut back on emoji",
			Description: "Heavy emoji use undercuts a professional tone. Keep the few that carry meaning.",
		},
	},
}

// Suggestions evaluates the rule catalog against the post's features and
// returns an ordered, capped list. If fewer than the minimum fire,
// generic tips backfill deterministically.
func (e *Engine) Suggestions(text string) []models.Suggestion {
	fv := ExtractFeatures(text)

	suggestions := make([]models.Suggestion, 0, maxSuggestions)
	for _, rule := range suggestionRulesV1 {
		if len(suggestions) == maxSuggestions {
			return suggestions
		}
		if rule.When(fv) {
			suggestions = append(suggestions, rule.Suggestion)
		}
	}

	for _, tip := range genericTipsV1 {
		if len(suggestions) >= minSuggestions {
			break
		}
		suggestions = append(suggestions, models.Suggestion{
			ID:          tip.ID,
			Type:        models.SuggestionTip,
			Title:       tip.Title,
			Description: tip.Description,
		})
	}
	return suggestions
}
