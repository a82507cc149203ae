package stu

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversions(t *testing.T) {
	assert.Equal(t, 7.5, ToSTU(3, 2.5))
	assert.Equal(t, 150.0, ToMoney(7.5, 20))
	assert.Equal(t, 7.5, FromMoney(150, 20))
	assert.Equal(t, 0.0, FromMoney(150, 0))
}

func TestOmega(t *testing.T) {
	assert.Equal(t, 25.0, Omega(1000, 40))
	assert.Equal(t, 0.0, Omega(1000, 0))
}

func TestBadge(t *testing.T) {
	f, err := NewFormatter("en", "USD")
	require.NoError(t, err)

	b := f.Badge(12.5, 100)
	assert.Equal(t, 1250.0, b.Money)
	assert.Equal(t, "12.5 STU · $ 1,250.00", b.Label)

	b = f.Badge(3, 0)
	assert.Equal(t, "3.0 STU", b.Label)
}

func TestNewFormatter_Invalid(t *testing.T) {
	_, err := NewFormatter("en", "NOPE")
	assert.Error(t, err)
	_, err = NewFormatter("!!", "USD")
	assert.Error(t, err)
}

func TestRoundTripProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("money of STU equals h·λ·ω", prop.ForAll(
		func(h, l, w float64) bool {
			got := ToMoney(ToSTU(h, l), w)
			want := h * l * w
			return math.Abs(got-want) <= 1e-9*math.Max(1, math.Abs(want))
		},
		gen.Float64Range(0, 1e4),
		gen.Float64Range(0.5, 10),
		gen.Float64Range(0, 1e5),
	))

	properties.Property("FromMoney inverts ToMoney for ω ≠ 0", prop.ForAll(
		func(s, w float64) bool {
			back := FromMoney(ToMoney(s, w), w)
			return math.Abs(back-s) <= 1e-9*math.Max(1, math.Abs(s))
		},
		gen.Float64Range(0, 1e6),
		gen.Float64Range(0.01, 1e5),
	))

	properties.TestingRun(t)
}
