package scoring

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"regexp"
	"strings"

	"github.com/postforge/postscore/internal/models"
)

// hookWindow is the number of characters LinkedIn shows before the
// "see more" fold; hook detection only looks at this prefix.
const hookWindow = 100

// wordsPerMinute is the assumed reading speed for reading-time estimates.
const wordsPerMinute = 225

var (
	hashtagRegexp  = regexp.MustCompile(`#\w+`)
	emojiRegexp    = regexp.MustCompile(`[\x{1F300}-\x{1FAFF}\x{1F000}-\x{1F0FF}\x{2600}-\x{27BF}\x{2B00}-\x{2BFF}\x{FE0F}]`)
	bulletRegexp   = regexp.MustCompile(`(?m)^\s*[-•*]\s+`)
	numberedRegexp = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+`)
	wordRegexp     = regexp.MustCompile(`[^\w\s']`)
	leadDigitRe    = regexp.MustCompile(`^\W*\d`)
)

// Normalize returns the canonical form of post text: trimmed and
// lowercased. All scoring is a pure function of this form.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Fingerprint returns the cache/tie-detection key for a post text: the
// hex SHA-256 of its normalized form.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}

// ExtractFeatures computes the full feature vector for a post. It is
// pure, total and deterministic: empty or whitespace-only input yields
// the zero vector.
func ExtractFeatures(text string) models.FeatureVector {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.FeatureVector{}
	}

	lower := strings.ToLower(trimmed)
	words := extractWords(lower)

	fv := models.FeatureVector{
		Length:            len([]rune(trimmed)),
		WordCount:         len(words),
		Sentiment:         scoreSentiment(words),
		HashtagCount:      len(hashtagRegexp.FindAllString(trimmed, -1)),
		EmojiCount:        len(emojiRegexp.FindAllString(trimmed, -1)),
		ParagraphCount:    countParagraphs(trimmed),
		BulletCount:       len(bulletRegexp.FindAllString(trimmed, -1)),
		NumberedListCount: len(numberedRegexp.FindAllString(trimmed, -1)),
		ReadingTimeMin:    readingTimeMinutes(len(words)),
		HookStrength:      scoreHook(lower),
		StorytellingScore: phraseStrength(lower, storytellingPhrasesV1, 5),
		ValueScore:        phraseStrength(lower, valuePhrasesV1, 5),
		TriggerCount:      countUniquePhrases(lower, engagementTriggerPhrasesV1),
		HasCTA:            countUniquePhrases(lower, ctaPhrasesV1) > 0,
		HasQuestion:       strings.Contains(trimmed, "?"),
	}
	return fv
}

// extractWords splits normalized text into plain words, stripping
// punctuation the way the sentiment lexicons expect.
func extractWords(lower string) []string {
	cleaned := wordRegexp.ReplaceAllString(lower, " ")
	return strings.Fields(cleaned)
}

func countParagraphs(text string) int {
	count := 0
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			count++
		}
	}
	if count == 0 {
		count = 1
	}
	return count
}

func readingTimeMinutes(wordCount int) int {
	if wordCount == 0 {
		return 0
	}
	return int(math.Ceil(float64(wordCount) / wordsPerMinute))
}

// scoreSentiment is lexicon polarity normalized by word count, scaled and
// clamped to [-1, 1]. The score only ever nudges multipliers by ±10%.
func scoreSentiment(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	positive, negative := 0, 0
	for _, w := range words {
		if positiveWordsV1[w] {
			positive++
		}
		if negativeWordsV1[w] {
			negative++
		}
	}
	if positive+negative == 0 {
		return 0
	}
	score := float64(positive-negative) / float64(len(words)) * 10
	return math.Max(-1, math.Min(1, math.Round(score*100)/100))
}

// scoreHook inspects only the pre-fold prefix. Each signal contributes an
// additive capped bonus; the total saturates at 1.0.
func scoreHook(lower string) float64 {
	runes := []rune(lower)
	window := lower
	if len(runes) > hookWindow {
		window = string(runes[:hookWindow])
	}

	strength := 0.0
	if strings.Contains(window, "?") {
		strength += 0.30
	}
	for _, phrase := range hookPhrasesV1 {
		if strings.Contains(window, phrase) {
			strength += 0.30
			break
		}
	}
	if leadDigitRe.MatchString(window) {
		strength += 0.25
	}
	for _, opener := range firstPersonOpenersV1 {
		if strings.HasPrefix(window, opener) {
			strength += 0.15
			break
		}
	}
	return math.Min(1, strength)
}

// countUniquePhrases counts distinct matching phrases, not occurrences:
// repeating the same trigger ten times is one match.
func countUniquePhrases(lower string, phrases []string) int {
	count := 0
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			count++
		}
	}
	return count
}

// phraseStrength applies a diminishing-returns transform so the first
// match matters far more than the cap'th.
func phraseStrength(lower string, phrases []string, maxMatches int) float64 {
	matches := countUniquePhrases(lower, phrases)
	if matches > maxMatches {
		matches = maxMatches
	}
	return math.Log(1+float64(matches)) / math.Log(1+float64(maxMatches))
}

// triggerStrength maps the unique-trigger count onto [0,1] with the same
// logarithmic falloff used for phrase strengths.
func triggerStrength(count int) float64 {
	const maxTriggers = 5
	if count > maxTriggers {
		count = maxTriggers
	}
	return math.Log(1+float64(count)) / math.Log(1+float64(maxTriggers))
}
