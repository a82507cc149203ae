// Package lambda computes a node's time-value constant λ.
package lambda

import (
	"math"

	"github.com/agenthands/tempo/internal/core/model"
)

const (
	Min = 0.5
	Max = 10.0

	// DefaultIndustryK scales raw capability into λ for the education sector.
	DefaultIndustryK = 0.3

	minReplaceability = 0.05
	floor             = 1.0
)

var roleDefaults = map[model.Role]float64{
	model.RoleOwner:      5.0,
	model.RoleManager:    3.0,
	model.RoleTeacher:    2.5,
	model.RolePartner:    2.0,
	model.RoleAdmin:      1.5,
	model.RoleRegulatory: 1.2,
	model.RoleStudent:    1.0,
	model.RoleParent:     0.8,
	model.RoleExternal:   0.5,
}

// Compute returns (1/max(0.05, replaceability)) × influence × expertise × network × k, floored at 1.0.
func Compute(f model.LambdaFactors, industryK float64) float64 {
	r := math.Max(minReplaceability, f.Replaceability)
	raw := (1 / r) * f.Influence * f.Expertise * f.Network * industryK
	return math.Max(floor, raw)
}

// ForRole is the λ used when a node has no capability factors.
func ForRole(role model.Role) float64 {
	if v, ok := roleDefaults[role]; ok {
		return v
	}
	return Min
}

// Clamp bounds λ to [Min, Max]. NaN collapses to Min.
func Clamp(v float64) float64 {
	if math.IsNaN(v) || v < Min {
		return Min
	}
	if v > Max {
		return Max
	}
	return v
}

// Resolve picks factors when present, the role default otherwise.
func Resolve(n model.Node, industryK float64) float64 {
	if n.Factors != nil {
		return Clamp(Compute(*n.Factors, industryK))
	}
	if n.Lambda > 0 {
		return Clamp(n.Lambda)
	}
	return Clamp(ForRole(n.Role))
}

// Growth projects λ0·e^(γ·years).
func Growth(lambda0, gamma, years float64) float64 {
	return lambda0 * math.Exp(gamma*years)
}

// Adjust scales λ by (1 + rate×performance) where performance is clamped to [-1,1].
func Adjust(current, performance, rate float64) float64 {
	p := math.Max(-1, math.Min(1, performance))
	return Clamp(current * (1 + rate*p))
}
