package risk

import (
	"math"
	"sort"
	"time"
)

type Direction string

const (
	Improving Direction = "improving"
	Stable    Direction = "stable"
	Worsening Direction = "worsening"
)

const (
	// StableSlope is the per-day score change below which a trend counts as stable.
	StableSlope  = 0.1
	forecastDays = 7.0
)

type ScorePoint struct {
	At    time.Time `json:"at"`
	Score float64   `json:"score"`
}

type TrendResult struct {
	Direction     Direction `json:"direction"`
	SlopePerDay   float64   `json:"slope_per_day"`
	Intercept     float64   `json:"intercept"`
	Forecast7Days float64   `json:"forecast_7_days"`
}

// Trend fits an ordinary least squares line through the score history and extrapolates
// seven days past the last point. A rising risk score is worsening.
func Trend(points []ScorePoint) TrendResult {
	if len(points) == 0 {
		return TrendResult{Direction: Stable}
	}
	pts := make([]ScorePoint, len(points))
	copy(pts, points)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].At.Before(pts[j].At) })

	last := pts[len(pts)-1]
	if len(pts) == 1 {
		return TrendResult{Direction: Stable, Intercept: last.Score, Forecast7Days: clampScore(last.Score)}
	}

	origin := pts[0].At
	n := float64(len(pts))
	var sx, sy, sxx, sxy float64
	for _, p := range pts {
		x := p.At.Sub(origin).Hours() / 24
		sx += x
		sy += p.Score
		sxx += x * x
		sxy += x * p.Score
	}

	var slope float64
	if den := n*sxx - sx*sx; den != 0 {
		slope = (n*sxy - sx*sy) / den
	}
	intercept := (sy - slope*sx) / n

	lastX := last.At.Sub(origin).Hours() / 24
	return TrendResult{
		Direction:     classify(slope),
		SlopePerDay:   slope,
		Intercept:     intercept,
		Forecast7Days: clampScore(intercept + slope*(lastX+forecastDays)),
	}
}

func classify(slope float64) Direction {
	switch {
	case math.Abs(slope) < StableSlope:
		return Stable
	case slope > 0:
		return Worsening
	default:
		return Improving
	}
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
