package model

import (
	"math"
	"time"
)

// DepthLevel orders how deep a relationship has grown.
type DepthLevel int

const (
	DepthAwareness DepthLevel = iota + 1
	DepthFamiliarity
	DepthTrust
	DepthDependence
	DepthPartnership
)

var depthNames = map[DepthLevel]string{
	DepthAwareness:   "awareness",
	DepthFamiliarity: "familiarity",
	DepthTrust:       "trust",
	DepthDependence:  "dependence",
	DepthPartnership: "partnership",
}

func (d DepthLevel) String() string {
	if name, ok := depthNames[d]; ok {
		return name
	}
	return "unknown"
}

// ParseDepth returns DepthAwareness for unknown names.
func ParseDepth(s string) DepthLevel {
	for level, name := range depthNames {
		if name == s {
			return level
		}
	}
	return DepthAwareness
}

// SynergyFactors are the compatibility inputs of σ, each in [-1,1].
type SynergyFactors struct {
	Style         float64 `json:"style"`
	GoalAlignment float64 `json:"goal_alignment"`
	ValueMatch    float64 `json:"value_match"`
	RhythmSync    float64 `json:"rhythm_sync"`
}

// Relationship is an unordered pair of nodes.
type Relationship struct {
	ID              string         `json:"id"`
	OrgID           string         `json:"org_id"`
	NodeA           string         `json:"node_a"`
	NodeB           string         `json:"node_b"`
	Sigma           float64        `json:"sigma"`
	Synergy         SynergyFactors `json:"synergy"`
	Density         float64        `json:"density"`
	Frequency       float64        `json:"frequency"`
	Quality         float64        `json:"quality"`
	Depth           DepthLevel     `json:"depth"`
	LastInteraction time.Time      `json:"last_interaction"`
	DecayRate       float64        `json:"decay_rate"`
	InvestedA       float64        `json:"invested_a"` // real hours invested by NodeA
	InvestedB       float64        `json:"invested_b"`
	Months          float64        `json:"months"`
}

// Key identifies the pair regardless of orientation.
func (r Relationship) Key() string {
	return PairKey(r.NodeA, r.NodeB)
}

// PairKey is order independent: PairKey(a, b) == PairKey(b, a).
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// IdleDays is the number of whole and fractional days since the last interaction, never negative.
func (r Relationship) IdleDays(now time.Time) float64 {
	if r.LastInteraction.IsZero() {
		return 0
	}
	days := now.Sub(r.LastInteraction).Hours() / 24
	return math.Max(0, days)
}

// Involves reports whether id is one of the pair.
func (r Relationship) Involves(id string) bool {
	return r.NodeA == id || r.NodeB == id
}
