package scoring

import (
	"math"

	"github.com/postforge/postscore/internal/models"
)

// DefaultTimeSeriesHours is the standard engagement-curve window.
const DefaultTimeSeriesHours = 24

// maxTimeSeriesHours caps requested curve length at one week.
const maxTimeSeriesHours = 168

// TimeSeries synthesizes an hour-indexed engagement curve from the
// post's engagement score. The shape is fully deterministic: a linear
// ramp over hours 0-2, a plateau with a sine bump over hours 3-11, and
// an exponential decay tail from hour 12 on, floored so the curve never
// touches zero while the score is positive.
func (e *Engine) TimeSeries(text string, hours int, params *models.AdvancedParams) []models.TimePoint {
	if hours <= 0 {
		hours = DefaultTimeSeriesHours
	}
	if hours > maxTimeSeriesHours {
		hours = maxTimeSeriesHours
	}

	score := float64(e.Score(text, params).EngagementScore)

	floor := 0.0
	if score > 0 {
		floor = math.Max(1, math.Round(score*0.05))
	}

	points := make([]models.TimePoint, 0, hours)
	for h := 0; h < hours; h++ {
		var value float64
		switch {
		case h <= 2:
			// Ramp from 20% to 85% of the score.
			value = score * (0.20 + 0.325*float64(h))
		case h <= 11:
			// Plateau with a sine bump peaking mid-window.
			value = score * (0.90 + 0.10*math.Sin(math.Pi*float64(h-3)/8))
		default:
			value = score * 0.90 * math.Exp(-0.15*float64(h-11))
		}
		value = math.Max(floor, value)
		points = append(points, models.TimePoint{Hour: h, Engagement: int(math.Round(value))})
	}
	return points
}
