// Package density computes relationship density P and its idle-time decay.
package density

import (
	"math"
	"time"

	"github.com/agenthands/tempo/internal/core/model"
)

// DefaultDecayRate is δ per idle day.
const DefaultDecayRate = 0.01

// Compute returns frequency × quality × depth with each input clamped to [0,1].
func Compute(frequency, quality, depth float64) float64 {
	return unit(frequency) * unit(quality) * unit(depth)
}

// FrequencyToScore is min(1, actual/expected), 0 when expected is not positive.
func FrequencyToScore(actual, expected float64) float64 {
	if expected <= 0 || actual <= 0 {
		return 0
	}
	return math.Min(1, actual/expected)
}

// ApplyDecay returns P·e^(−δ·idleDays). Negative idle time or δ are treated as 0.
func ApplyDecay(p, idleDays, delta float64) float64 {
	if idleDays < 0 {
		idleDays = 0
	}
	if delta < 0 {
		delta = 0
	}
	return math.Max(0, p*math.Exp(-delta*idleDays))
}

// DepthFloor maps a depth level to its fixed density floor.
func DepthFloor(d model.DepthLevel) float64 {
	switch d {
	case model.DepthAwareness:
		return 0.2
	case model.DepthFamiliarity:
		return 0.4
	case model.DepthTrust:
		return 0.6
	case model.DepthDependence:
		return 0.8
	case model.DepthPartnership:
		return 1.0
	default:
		return 0.2
	}
}

// Snapshot is a relationship's density before and after idle decay.
type Snapshot struct {
	Density  float64 `json:"density"`
	Decayed  float64 `json:"decayed"`
	IdleDays float64 `json:"idle_days"`
}

// ForRelationship derives P from the relationship's frequency (contacts in the period),
// quality and depth, then decays it by idle time. expectedContacts ≤ 0 keeps the stored
// frequency score as is.
func ForRelationship(rel model.Relationship, expectedContacts float64, now time.Time) Snapshot {
	freq := rel.Frequency
	if expectedContacts > 0 {
		freq = FrequencyToScore(rel.Frequency, expectedContacts)
	}
	p := Compute(freq, rel.Quality, DepthFloor(rel.Depth))
	delta := rel.DecayRate
	if delta == 0 {
		delta = DefaultDecayRate
	}
	idle := rel.IdleDays(now)
	return Snapshot{
		Density:  p,
		Decayed:  ApplyDecay(p, idle, delta),
		IdleDays: idle,
	}
}

// Effective is the decayed density used for valuation. A stored density wins over the
// frequency/quality/depth derivation, where frequency is a contact count scored against
// expectedContacts.
func Effective(rel model.Relationship, expectedContacts float64, now time.Time) float64 {
	if rel.Density <= 0 {
		return ForRelationship(rel, expectedContacts, now).Decayed
	}
	delta := rel.DecayRate
	if delta == 0 {
		delta = DefaultDecayRate
	}
	return ApplyDecay(unit(rel.Density), rel.IdleDays(now), delta)
}

func unit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
