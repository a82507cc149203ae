// Package relvalue computes relationship value V = P × Λ × synergy multiplier.
package relvalue

import (
	"fmt"
	"math"
)

// SynergyPolicy turns σ and relationship age in months into a multiplier.
type SynergyPolicy interface {
	Multiplier(sigma, months float64) float64
	Name() string
}

// Unbounded is e^(σ·t/12). It diverges for large positive σ·t.
type Unbounded struct{}

func (Unbounded) Multiplier(sigma, months float64) float64 {
	return math.Exp(sigma * (months / 12))
}

func (Unbounded) Name() string { return "unbounded" }

const (
	DefaultSMax = 50.0
	DefaultTau  = 24.0
)

// Saturating is SMax·(1 − e^(−σ·t/τ)) for σ > 0 and the exponential decay e^(σ·t/12) for σ ≤ 0.
type Saturating struct {
	SMax float64
	Tau  float64 // months
}

func (s Saturating) Multiplier(sigma, months float64) float64 {
	if sigma <= 0 {
		return Unbounded{}.Multiplier(sigma, months)
	}
	smax, tau := s.SMax, s.Tau
	if smax <= 0 {
		smax = DefaultSMax
	}
	if tau <= 0 {
		tau = DefaultTau
	}
	return smax * (1 - math.Exp(-sigma*months/tau))
}

func (Saturating) Name() string { return "saturating" }

// DefaultPolicy is the policy used for production value computations.
var DefaultPolicy SynergyPolicy = Saturating{SMax: DefaultSMax, Tau: DefaultTau}

// PolicyByName resolves "saturating" or "unbounded".
func PolicyByName(name string, smax, tau float64) (SynergyPolicy, error) {
	switch name {
	case "", "saturating":
		return Saturating{SMax: smax, Tau: tau}, nil
	case "unbounded":
		return Unbounded{}, nil
	default:
		return nil, fmt.Errorf("unknown synergy policy: %s", name)
	}
}
