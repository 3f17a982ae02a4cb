package models

import "time"

// FollowerRange buckets the author's audience size.
type FollowerRange string

const (
	Followers0To500   FollowerRange = "0-500"
	Followers500To2K  FollowerRange = "500-2k"
	Followers2KTo10K  FollowerRange = "2k-10k"
	Followers10KTo50K FollowerRange = "10k-50k"
	Followers50KPlus  FollowerRange = "50k+"
)

// EngagementLevel describes how active the author's audience historically is.
type EngagementLevel string

const (
	EngagementLow    EngagementLevel = "low"
	EngagementMedium EngagementLevel = "medium"
	EngagementHigh   EngagementLevel = "high"
)

// AdvancedParams is optional caller-supplied audience context. It only
// selects multipliers; it is never mutated by the engine.
type AdvancedParams struct {
	FollowerRange   FollowerRange   `json:"follower_range,omitempty"`
	Industry        string          `json:"industry,omitempty"`
	EngagementLevel EngagementLevel `json:"engagement_level,omitempty"`
}

// FeatureVector contains the signals extracted from one post text.
// It is created fresh per analysis call and never persisted.
type FeatureVector struct {
	Length            int     `json:"length"`
	WordCount         int     `json:"word_count"`
	Sentiment         float64 `json:"sentiment"` // -1.0 to 1.0
	HashtagCount      int     `json:"hashtag_count"`
	EmojiCount        int     `json:"emoji_count"`
	ParagraphCount    int     `json:"paragraph_count"`
	BulletCount       int     `json:"bullet_count"`
	NumberedListCount int     `json:"numbered_list_count"`
	ReadingTimeMin    int     `json:"reading_time_minutes"`
	HookStrength      float64 `json:"hook_strength"`         // 0.0 to 1.0
	StorytellingScore float64 `json:"storytelling_strength"` // 0.0 to 1.0
	ValueScore        float64 `json:"value_strength"`        // 0.0 to 1.0
	TriggerCount      int     `json:"engagement_trigger_count"`
	HasCTA            bool    `json:"cta_present"`
	HasQuestion       bool    `json:"question_present"`
}

// PostMetrics is the deterministic scoring output. All three scores are
// saturated to [0,100]; derived counts are non-negative.
type PostMetrics struct {
	EngagementScore int `json:"engagement_score"`
	ReachScore      int `json:"reach_score"`
	ViralityScore   int `json:"virality_score"`
	Likes           int `json:"likes"`
	Comments        int `json:"comments"`
	Shares          int `json:"shares"`
}

// Comparison winner values.
const (
	WinnerTie = 0
	WinnerA   = 1
	WinnerB   = 2
)

// ComparisonResult reports which of two posts is predicted to perform
// better. Winner 0 means tie (identical text or a gap below the
// materiality threshold); Margin is always 0 on a tie.
type ComparisonResult struct {
	Winner int `json:"winner"` // 0 = tie, 1 = first post, 2 = second post
	Margin int `json:"margin"` // symmetric percentage gap, rounded
}

// Suggestion types.
const (
	SuggestionImprovement = "improvement"
	SuggestionWarning     = "warning"
	SuggestionTip         = "tip"
)

// Suggestion is one actionable recommendation for improving a post.
type Suggestion struct {
	ID          string `json:"id"`
	Type        string `json:"type"` // improvement, warning, tip
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TimePoint is one hour of the synthesized engagement curve.
type TimePoint struct {
	Hour       int `json:"hour"`
	Engagement int `json:"engagement"`
}

// AISuggestion is a suggestion as returned by the LLM provider.
type AISuggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// AIResult is the untrusted record parsed from an LLM response. Scores
// are clamped to [0,100] at the adapter boundary before anything reads
// them.
type AIResult struct {
	EngagementScore     int            `json:"engagement_score"`
	ReachScore          int            `json:"reach_score"`
	ViralityScore       int            `json:"virality_score"`
	Suggestions         []AISuggestion `json:"suggestions"`
	RecommendedHashtags []string       `json:"recommended_hashtags"`
}

// Analysis methods reported by the hybrid blender.
const (
	MethodEnhancedOnly = "enhanced-only"
	MethodAIOnly       = "ai-only"
	MethodHybrid       = "hybrid"
)

// EnhancedScores pairs the extracted feature vector with the
// deterministic sub-scores it produced.
type EnhancedScores struct {
	Features        FeatureVector `json:"features"`
	EngagementScore int           `json:"engagement_score"`
	ReachScore      int           `json:"reach_score"`
	ViralityScore   int           `json:"virality_score"`
}

// HybridResult is the blended output of the deterministic engine and the
// AI adapter for a single post.
type HybridResult struct {
	Enhanced            EnhancedScores `json:"enhanced"`
	Legacy              PostMetrics    `json:"legacy"`
	Confidence          float64        `json:"confidence"` // 0.0 to 1.0
	AnalysisMethod      string         `json:"analysis_method"`
	AIContribution      float64        `json:"ai_contribution"` // 0.0 to 1.0
	Suggestions         []AISuggestion `json:"suggestions,omitempty"`
	RecommendedHashtags []string       `json:"recommended_hashtags,omitempty"`
}

// Job lifecycle states for queued hybrid work.
const (
	JobQueued     = "queued"
	JobProcessing = "processing"
	JobComplete   = "complete"
	JobFailed     = "failed"
)

// HybridAnalysis is a persisted hybrid analysis job. Result is nil until
// the job completes.
type HybridAnalysis struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Status    string        `json:"status"`
	Result    *HybridResult `json:"result,omitempty"`
	LastError string        `json:"last_error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Comparison is a persisted two-post comparison job, including the full
// metrics computed for each side once complete.
type Comparison struct {
	ID        string            `json:"id"`
	TextA     string            `json:"text_a"`
	TextB     string            `json:"text_b"`
	Status    string            `json:"status"`
	Result    *ComparisonResult `json:"result,omitempty"`
	MetricsA  *PostMetrics      `json:"metrics_a,omitempty"`
	MetricsB  *PostMetrics      `json:"metrics_b,omitempty"`
	LastError string            `json:"last_error,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
