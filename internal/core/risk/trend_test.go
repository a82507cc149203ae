package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func series(start time.Time, scores ...float64) []ScorePoint {
	out := make([]ScorePoint, len(scores))
	for i, s := range scores {
		out[i] = ScorePoint{At: start.Add(time.Duration(i) * 24 * time.Hour), Score: s}
	}
	return out
}

func TestTrend_Worsening(t *testing.T) {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	res := Trend(series(start, 40, 42, 44, 46, 48))

	assert.Equal(t, Worsening, res.Direction)
	assert.InDelta(t, 2.0, res.SlopePerDay, 1e-9)
	assert.InDelta(t, 40.0, res.Intercept, 1e-9)
	// last x = 4, forecast at x = 11
	assert.InDelta(t, 62.0, res.Forecast7Days, 1e-9)
}

func TestTrend_Improving(t *testing.T) {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	res := Trend(series(start, 90, 80, 70))

	assert.Equal(t, Improving, res.Direction)
	assert.InDelta(t, -10.0, res.SlopePerDay, 1e-9)
	// 90 - 10*(2+7) = 0
	assert.InDelta(t, 0.0, res.Forecast7Days, 1e-9)
}

func TestTrend_ForecastClamped(t *testing.T) {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	res := Trend(series(start, 70, 85, 100))
	assert.Equal(t, 100.0, res.Forecast7Days)
}

func TestTrend_Stable(t *testing.T) {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	res := Trend(series(start, 50, 50.05, 50, 50.05))
	assert.Equal(t, Stable, res.Direction)
}

func TestTrend_UnsortedInput(t *testing.T) {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	pts := series(start, 40, 42, 44)
	pts[0], pts[2] = pts[2], pts[0]

	res := Trend(pts)
	assert.InDelta(t, 2.0, res.SlopePerDay, 1e-9)
	assert.Equal(t, 40.0, pts[2].Score) // input left untouched
}

func TestTrend_Degenerate(t *testing.T) {
	assert.Equal(t, TrendResult{Direction: Stable}, Trend(nil))

	one := Trend([]ScorePoint{{At: time.Now(), Score: 64}})
	assert.Equal(t, Stable, one.Direction)
	assert.Equal(t, 64.0, one.Forecast7Days)

	at := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	same := Trend([]ScorePoint{{At: at, Score: 10}, {At: at, Score: 30}})
	assert.Equal(t, Stable, same.Direction)
	assert.Equal(t, 20.0, same.Forecast7Days)
}
