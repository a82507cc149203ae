// Package risk computes the time-decayed churn risk R(t) of a node from its performance log.
package risk

import (
	"math"
	"sort"
	"time"

	"github.com/agenthands/tempo/internal/core/model"
)

const (
	DefaultAlpha        = 1.5
	DefaultHalfLifeDays = 30.0

	minSatisfaction = 0.1
	neutralScore    = 50.0
	scoreScale      = 10.0
	churnBaseDays   = 90.0
)

// DefaultCategoryWeights returns the stock weight per performance category.
func DefaultCategoryWeights() map[model.Category]float64 {
	return map[model.Category]float64{
		model.CategoryGrade:      1.0,
		model.CategoryAttendance: 1.2,
		model.CategoryEngagement: 0.8,
		model.CategoryPayment:    1.5,
	}
}

type Config struct {
	Alpha           float64
	HalfLifeDays    float64
	CategoryWeights map[model.Category]float64
	Actions         ActionTable
	Actuation       ActuationPolicy
}

func DefaultConfig() Config {
	return Config{
		Alpha:           DefaultAlpha,
		HalfLifeDays:    DefaultHalfLifeDays,
		CategoryWeights: DefaultCategoryWeights(),
		Actions:         DefaultActions(),
		Actuation:       DefaultActuation(),
	}
}

// Scorer holds an immutable configuration; it is safe for concurrent use.
type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) *Scorer {
	if cfg.Alpha <= 0 {
		cfg.Alpha = DefaultAlpha
	}
	if cfg.HalfLifeDays <= 0 {
		cfg.HalfLifeDays = DefaultHalfLifeDays
	}
	if cfg.CategoryWeights == nil {
		cfg.CategoryWeights = DefaultCategoryWeights()
	}
	if cfg.Actions.ByLevel == nil {
		cfg.Actions = DefaultActions()
	}
	return &Scorer{cfg: cfg}
}

func (s *Scorer) Config() Config {
	return s.cfg
}

// Input is one node's snapshot for scoring.
type Input struct {
	NodeID       string                    `json:"node_id"`
	Changes      []model.PerformanceChange `json:"changes"`
	Satisfaction float64                   `json:"satisfaction"`
}

// Score runs the full pipeline for one node.
func (s *Scorer) Score(in Input, now time.Time) model.RiskResult {
	ws := s.WeightedSum(in.Changes, now)
	raw := -ws / math.Pow(math.Max(minSatisfaction, in.Satisfaction), s.cfg.Alpha)
	score := Normalize(raw)
	level := LevelFor(score)
	factors := Factors(in.Changes)

	return model.RiskResult{
		NodeID:             in.NodeID,
		Score:              score,
		Level:              level,
		RawRisk:            raw,
		WeightedSum:        ws,
		PredictedChurnDays: ChurnDays(score, in.Satisfaction),
		Factors:            factors,
		Actions:            s.cfg.Actions.Recommend(level, factors),
		AutoActions:        s.cfg.Actuation.Schedule(level, now),
		ComputedAt:         now,
	}
}

// WeightedSum is Σ time_weight × category_weight × delta. Future timestamps count as now.
func (s *Scorer) WeightedSum(changes []model.PerformanceChange, now time.Time) float64 {
	var sum float64
	for _, c := range changes {
		sum += s.TimeWeight(c.Timestamp, now) * s.cfg.CategoryWeights[c.Category] * c.Delta
	}
	return sum
}

// TimeWeight is e^(−days_since/half_life).
func (s *Scorer) TimeWeight(at, now time.Time) float64 {
	days := math.Max(0, now.Sub(at).Hours()/24)
	return math.Exp(-days / s.cfg.HalfLifeDays)
}

// Normalize centers raw risk at 50 and clamps to [0,100].
func Normalize(raw float64) float64 {
	v := neutralScore + raw*scoreScale
	if math.IsNaN(v) {
		return neutralScore
	}
	return math.Max(0, math.Min(100, v))
}

func LevelFor(score float64) model.RiskLevel {
	switch {
	case score >= 80:
		return model.RiskCritical
	case score >= 60:
		return model.RiskHigh
	case score >= 40:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// ChurnDays is 90 × ((100−score)/100) × (0.5 + satisfaction), never negative.
func ChurnDays(score, satisfaction float64) float64 {
	return math.Max(0, churnBaseDays*((100-score)/100)*(0.5+satisfaction))
}

// Factors groups changes by category, ranked by |mean delta| descending.
func Factors(changes []model.PerformanceChange) []model.RiskFactor {
	if len(changes) == 0 {
		return nil
	}
	sums := make(map[model.Category]float64)
	counts := make(map[model.Category]int)
	for _, c := range changes {
		sums[c.Category] += c.Delta
		counts[c.Category]++
	}

	out := make([]model.RiskFactor, 0, len(counts))
	total := float64(len(changes))
	for cat, n := range counts {
		out = append(out, model.RiskFactor{
			Category:  cat,
			Share:     float64(n) / total,
			MeanDelta: sums[cat] / float64(n),
			Count:     n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].MeanDelta), math.Abs(out[j].MeanDelta)
		if ai != aj {
			return ai > aj
		}
		return out[i].Category < out[j].Category
	})
	return out
}
