package duration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromToken(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		wantTicks float64
	}{
		{"breve", "breve", 2048},
		{"whole", "whole", 1024},
		{"half", "half", 512},
		{"quarter", "quarter", 256},
		{"eighth", "eighth", 128},
		{"sixteenth", "16th", 64},
		{"thirty-second", "32nd", 32},
		{"sixty-fourth", "64th", 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := FromToken(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTicks, v.Ticks())
		})
	}
}

func TestFromTokenUnknown(t *testing.T) {
	for _, token := range []string{"", "semibreve", "th", "xxth", "-4th"} {
		t.Run(token, func(t *testing.T) {
			_, err := FromToken(token)
			var ute *UnknownTokenError
			require.ErrorAs(t, err, &ute)
			assert.Equal(t, token, ute.Token)
		})
	}
}

func TestEqualAcrossConstructionPaths(t *testing.T) {
	// Token and numeric construction of the same ratio must compare equal.
	fromToken, err := FromToken("quarter")
	require.NoError(t, err)
	fromDenom := FromDenominator(4)

	assert.True(t, fromToken.Equal(fromDenom))
	assert.False(t, fromToken.Less(fromDenom))
	assert.False(t, fromDenom.Less(fromToken))
}

func TestHalf(t *testing.T) {
	v := FromDenominator(4)
	got := v.Half()

	// In-place mutation: the returned value is the receiver.
	assert.Same(t, v, got)
	assert.Equal(t, 128.0, v.Ticks())
	assert.Equal(t, 8.0, v.Denominator())
}

func TestNDot(t *testing.T) {
	tests := []struct {
		dots int
		want float64
	}{
		{0, 256},
		{1, 256 * 1.5},
		{2, 256 * 1.75},
		{3, 256 * 1.875},
	}

	for _, tt := range tests {
		v := FromDenominator(4).NDot(tt.dots)
		assert.InDelta(t, tt.want, v.Ticks(), 1e-9, "dots=%d", tt.dots)
	}
}

func TestDotMatchesNDot(t *testing.T) {
	assert.Equal(t, FromDenominator(8).Dot().Ticks(), FromDenominator(8).NDot(1).Ticks())
}

func TestNTuplet(t *testing.T) {
	tests := []struct {
		name           string
		actual, normal int
		want           float64
	}{
		{"triplet", 3, 2, 256 * 2.0 / 3.0},
		{"quintuplet", 5, 4, 256 * 4.0 / 5.0},
		{"duplet", 2, 3, 256 * 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := FromDenominator(4).NTuplet(tt.actual, tt.normal)
			assert.InDelta(t, tt.want, v.Ticks(), 1e-9)
		})
	}
}

func TestTripletEqualsNTuplet32(t *testing.T) {
	assert.InDelta(t,
		FromDenominator(4).NTuplet(3, 2).Ticks(),
		FromDenominator(4).Triplet().Ticks(),
		1e-9)
}

func TestCloneIsIndependent(t *testing.T) {
	v := FromDenominator(4)
	c := v.Clone()
	c.Half()

	assert.Equal(t, 256.0, v.Ticks())
	assert.Equal(t, 128.0, c.Ticks())
}

func TestChaining(t *testing.T) {
	// quarter → dotted eighth inside a triplet
	v := FromDenominator(4).Half().Dot().Triplet()
	assert.InDelta(t, 128*1.5*2.0/3.0, v.Ticks(), 1e-9)
}

func TestNonPositivePanics(t *testing.T) {
	assert.Panics(t, func() { FromDenominator(0) })
	assert.Panics(t, func() { FromDenominator(-4) })
	assert.Panics(t, func() { FromDenominator(4).NTuplet(0, 2) })
	assert.Panics(t, func() { FromDenominator(4).NTuplet(3, -1) })
}

func TestDotMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, DotMultiplier(0))
	assert.Equal(t, 1.5, DotMultiplier(1))
	assert.Equal(t, 1.75, DotMultiplier(2))
}
