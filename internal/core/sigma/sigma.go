// Package sigma computes the pairwise synergy coefficient σ.
package sigma

import (
	"math"

	"github.com/agenthands/tempo/internal/core/model"
)

// Weights for compatibility, goal alignment, value match and rhythm sync. They should sum to 1.
type Weights struct {
	Compatibility float64 `json:"compatibility" toml:"compatibility" yaml:"compatibility"`
	Goal          float64 `json:"goal" toml:"goal" yaml:"goal"`
	Value         float64 `json:"value" toml:"value" yaml:"value"`
	Rhythm        float64 `json:"rhythm" toml:"rhythm" yaml:"rhythm"`
}

var DefaultWeights = Weights{Compatibility: 0.3, Goal: 0.3, Value: 0.2, Rhythm: 0.2}

func (w Weights) Sum() float64 {
	return w.Compatibility + w.Goal + w.Value + w.Rhythm
}

// Normalized rescales w to sum to 1. A non-positive sum yields DefaultWeights.
func (w Weights) Normalized() Weights {
	s := w.Sum()
	if s <= 0 {
		return DefaultWeights
	}
	return Weights{
		Compatibility: w.Compatibility / s,
		Goal:          w.Goal / s,
		Value:         w.Value / s,
		Rhythm:        w.Rhythm / s,
	}
}

// Compute returns Σ weight·factor.
func Compute(f model.SynergyFactors, w Weights) float64 {
	return w.Compatibility*f.Style +
		w.Goal*f.GoalAlignment +
		w.Value*f.ValueMatch +
		w.Rhythm*f.RhythmSync
}

type TeachingStyle string

const (
	TeachingLecture  TeachingStyle = "lecture"
	TeachingSocratic TeachingStyle = "socratic"
	TeachingCoaching TeachingStyle = "coaching"
	TeachingProject  TeachingStyle = "project"
)

type LearningStyle string

const (
	LearningVisual      LearningStyle = "visual"
	LearningAuditory    LearningStyle = "auditory"
	LearningKinesthetic LearningStyle = "kinesthetic"
	LearningReading     LearningStyle = "reading"
)

var styleTable = map[TeachingStyle]map[LearningStyle]float64{
	TeachingLecture: {
		LearningVisual:      0.2,
		LearningAuditory:    0.8,
		LearningKinesthetic: -0.4,
		LearningReading:     0.5,
	},
	TeachingSocratic: {
		LearningVisual:      0.3,
		LearningAuditory:    0.7,
		LearningKinesthetic: 0.1,
		LearningReading:     0.6,
	},
	TeachingCoaching: {
		LearningVisual:      0.5,
		LearningAuditory:    0.5,
		LearningKinesthetic: 0.7,
		LearningReading:     0.3,
	},
	TeachingProject: {
		LearningVisual:      0.6,
		LearningAuditory:    0.1,
		LearningKinesthetic: 0.9,
		LearningReading:     -0.2,
	},
}

// StyleCompatibility looks up the teaching × learning constant. Unknown pairs are neutral (0).
func StyleCompatibility(t TeachingStyle, l LearningStyle) float64 {
	return styleTable[t][l]
}

// CosineSimilarity of two embeddings, in [-1,1]. Empty, mismatched or zero vectors give 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	s := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return math.Max(-1, math.Min(1, s))
}
