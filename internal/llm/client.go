package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/postforge/postscore/internal/models"
)

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 30 * time.Second

// Provider generates a completion for a prompt. Implementations wrap one
// LLM backend and are safe for concurrent use.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// CallRecorder counts provider calls by outcome. The metrics package
// implements it; a nil recorder disables accounting.
type CallRecorder interface {
	RecordAICall(provider, outcome string)
}

// Client is the AI augmentation adapter. It never lets a provider,
// network or parse failure escape: every failure path yields nil,
// letting callers fall back to deterministic-only scoring.
type Client struct {
	provider Provider
	timeout  time.Duration
	logger   *slog.Logger
	recorder CallRecorder
}

// NewClient wraps a provider with the adapter's failure-absorbing
// boundary. A zero timeout means DefaultTimeout.
func NewClient(provider Provider, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		provider: provider,
		timeout:  timeout,
		logger:   slog.Default(),
	}
}

// SetRecorder wires per-call accounting. Safe on a nil client.
func (c *Client) SetRecorder(r CallRecorder) {
	if c == nil {
		return
	}
	c.recorder = r
}

// ProviderName reports which backend this client calls.
func (c *Client) ProviderName() string {
	if c == nil || c.provider == nil {
		return "none"
	}
	return c.provider.Name()
}

// Analyze asks the LLM for a parallel opinion on the post. It returns
// nil on any provider, timeout or parse failure; nil simply means "no AI
// signal" to the blender.
func (c *Client) Analyze(ctx context.Context, text, industry string) *models.AIResult {
	if c == nil || c.provider == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	response, err := c.provider.Generate(ctx, buildAnalysisPrompt(text, industry))
	if err != nil {
		c.logger.Warn("ai analysis failed, falling back to deterministic scoring",
			"provider", c.provider.Name(), "error", err)
		c.record("provider_error")
		return nil
	}

	result, err := parseAnalysisResponse(response)
	if err != nil {
		c.logger.Warn("ai response rejected",
			"provider", c.provider.Name(), "error", err, "response_length", len(response))
		c.record("parse_error")
		return nil
	}
	c.record("success")
	return result
}

func (c *Client) record(outcome string) {
	if c.recorder != nil {
		c.recorder.RecordAICall(c.provider.Name(), outcome)
	}
}

// buildAnalysisPrompt asks for the strict JSON contract the parser
// expects. Industry context is optional.
func buildAnalysisPrompt(text, industry string) string {
	audience := "professionals"
	if strings.TrimSpace(industry) != "" {
		audience = strings.TrimSpace(industry) + " professionals"
	}

	return fmt.Sprintf(`You are an expert LinkedIn content strategist. Analyze the following post draft written for %s and predict how it will perform.

Score each dimension from 0 to 100:
- engagement_score: likes, comments and reactions relative to reach
- reach_score: how far the feed will distribute the post
- virality_score: likelihood of reshares beyond the author's network

Also provide up to 4 concrete improvement suggestions and up to 5 recommended hashtags (lowercase, no spaces).

Respond with ONLY a JSON object, nothing else:
{
  "engagement_score": <0-100>,
  "reach_score": <0-100>,
  "virality_score": <0-100>,
  "suggestions": [{"title": "<short title>", "description": "<one sentence>"}],
  "recommended_hashtags": ["<hashtag>"]
}

Post:
%s`, audience, text)
}

// rawAnalysis mirrors the wire contract with pointer scores so missing
// fields are distinguishable from zeros.
type rawAnalysis struct {
	EngagementScore     *float64              `json:"engagement_score"`
	ReachScore          *float64              `json:"reach_score"`
	ViralityScore       *float64              `json:"virality_score"`
	Suggestions         []models.AISuggestion `json:"suggestions"`
	RecommendedHashtags []string              `json:"recommended_hashtags"`
}

// parseAnalysisResponse defensively extracts the JSON object from the
// response (providers wrap JSON in prose or markdown fences), validates
// the required numeric fields, and clamps every score to [0,100]. The
// provider is untrusted and must not be able to violate score bounds.
func parseAnalysisResponse(response string) (*models.AIResult, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(response[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse analysis JSON: %w", err)
	}

	if raw.EngagementScore == nil || raw.ReachScore == nil || raw.ViralityScore == nil {
		return nil, fmt.Errorf("response missing required score fields")
	}

	result := &models.AIResult{
		EngagementScore:     clampScore(*raw.EngagementScore),
		ReachScore:          clampScore(*raw.ReachScore),
		ViralityScore:       clampScore(*raw.ViralityScore),
		Suggestions:         raw.Suggestions,
		RecommendedHashtags: normalizeHashtags(raw.RecommendedHashtags),
	}
	if result.Suggestions == nil {
		result.Suggestions = []models.AISuggestion{}
	}
	return result, nil
}

func clampScore(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v + 0.5)
}

// normalizeHashtags lowercases, strips leading #, and drops empties and
// duplicates while preserving order.
func normalizeHashtags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		tag = strings.TrimPrefix(tag, "#")
		tag = strings.ReplaceAll(tag, " ", "-")
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
