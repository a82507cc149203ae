package relvalue

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiplier_NeutralSigma(t *testing.T) {
	assert.Equal(t, 1.0, Unbounded{}.Multiplier(0, 12))
	assert.Equal(t, 1.0, DefaultPolicy.Multiplier(0, 12))
}

func TestUnbounded(t *testing.T) {
	assert.InDelta(t, math.E, Unbounded{}.Multiplier(1, 12), 1e-12)
	assert.InDelta(t, math.Exp(-0.5), Unbounded{}.Multiplier(-0.5, 12), 1e-12)
}

func TestSaturating(t *testing.T) {
	s := Saturating{SMax: 50, Tau: 24}
	assert.InDelta(t, 50*(1-math.Exp(-0.5)), s.Multiplier(0.5, 24), 1e-9)
	assert.Less(t, s.Multiplier(1, 10000), 50.0+1e-9)
	// non-positive σ decays the same way as the unbounded form
	assert.Equal(t, Unbounded{}.Multiplier(-0.4, 18), s.Multiplier(-0.4, 18))

	zero := Saturating{}
	assert.Equal(t, s.Multiplier(0.3, 6), zero.Multiplier(0.3, 6))
}

func TestPolicyByName(t *testing.T) {
	p, err := PolicyByName("unbounded", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "unbounded", p.Name())

	p, err = PolicyByName("", 40, 12)
	require.NoError(t, err)
	assert.Equal(t, Saturating{SMax: 40, Tau: 12}, p)

	_, err = PolicyByName("linear", 0, 0)
	assert.Error(t, err)
}

func TestEngineValue(t *testing.T) {
	e := NewEngine(Unbounded{})
	res := e.Value(Input{
		Density: 0.5,
		Sigma:   0,
		Months:  6,
		LambdaA: 2.5, HoursA: 10,
		LambdaB: 1, HoursB: 5,
	})

	assert.Equal(t, 30.0, res.MutualTimeValue)
	assert.Equal(t, 1.0, res.Multiplier)
	assert.Equal(t, 15.0, res.Value)
	assert.Equal(t, "unbounded", res.Policy)
	require.Len(t, res.Projections, 3)
	for _, p := range res.Projections {
		assert.Equal(t, 15.0, p.Value) // σ = 0, duration alone never changes value
	}
}

func TestEngineValue_ProjectionsGrowWithPositiveSigma(t *testing.T) {
	e := NewEngine(nil)
	res := e.Value(Input{Density: 0.8, Sigma: 0.6, Months: 12, LambdaA: 3, HoursA: 20, LambdaB: 1, HoursB: 20})

	require.Len(t, res.Projections, 3)
	assert.Equal(t, "saturating", res.Policy)
	prev := res.Value
	for _, p := range res.Projections {
		assert.Greater(t, p.Value, prev)
		prev = p.Value
	}
}

func TestAssess(t *testing.T) {
	h := Assess(1, 1, 10)
	assert.Equal(t, 100.0, h.Score)
	assert.Equal(t, BandExcellent, h.Band)
	assert.Equal(t, []string{RecMaintain}, h.Recommendations)

	h = Assess(0.1, -0.6, 0.5)
	// 4 + 6 + 2.5
	assert.InDelta(t, 12.5, h.Score, 1e-9)
	assert.Equal(t, BandCritical, h.Band)
	assert.Equal(t, []string{RecIncreaseContact, RecSynergyRepair, RecEscalate}, h.Recommendations)

	h = Assess(0.5, 0, 0.8)
	// 20 + 15 + 4
	assert.InDelta(t, 39.0, h.Score, 1e-9)
	assert.Equal(t, BandPoor, h.Band)
	assert.Equal(t, []string{RecBuildMomentum, RecIntervene}, h.Recommendations)
}

func TestBandBoundaries(t *testing.T) {
	assert.Equal(t, BandExcellent, bandFor(80))
	assert.Equal(t, BandGood, bandFor(79.99))
	assert.Equal(t, BandGood, bandFor(60))
	assert.Equal(t, BandFair, bandFor(40))
	assert.Equal(t, BandPoor, bandFor(20))
	assert.Equal(t, BandCritical, bandFor(19.99))
}

func TestNetRelationshipValue(t *testing.T) {
	assert.Equal(t, 300.0, NetRelationshipValue(0.5, 15, 2, 20))
	assert.Equal(t, 0.0, NetRelationshipValue(0.5, 15, 2, 0))
}

func TestSaturatingProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())
	s := Saturating{SMax: DefaultSMax, Tau: DefaultTau}

	properties.Property("saturating multiplier is bounded by SMax", prop.ForAll(
		func(sigma, months float64) bool {
			m := s.Multiplier(sigma, months)
			return m >= 0 && m <= DefaultSMax
		},
		gen.Float64Range(-1, 5),
		gen.Float64Range(0, 1200),
	))

	properties.Property("health score stays in [0,100]", prop.ForAll(
		func(p, sigma, m float64) bool {
			h := Assess(p, sigma, m)
			return h.Score >= 0 && h.Score <= 100 && len(h.Recommendations) > 0
		},
		gen.Float64Range(0, 1),
		gen.Float64Range(-1, 1),
		gen.Float64Range(0, 100),
	))

	properties.TestingRun(t)
}
