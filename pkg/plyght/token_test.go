package plyght

import (
	"math"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	t.Run("bare", func(t *testing.T) {
		assert.Equal(t, "!!New2D", Bare(KeyNew2D).String())
		assert.Equal(t, []byte("!!StartIBuf\n"), Bare(KeyStartFrame).Bytes())
	})

	t.Run("text", func(t *testing.T) {
		assert.Equal(t, "!!Title<Sine wave>", Text(KeyTitle, "Sine wave").String())
	})

	t.Run("empty text keeps brackets", func(t *testing.T) {
		assert.Equal(t, "!!Legend<>", Text(KeyLegend, "").String())
	})

	t.Run("pair", func(t *testing.T) {
		assert.Equal(t, "!!Pt<1.0000000000000000e+00,-2.5000000000000000e+00>", Pair(KeyPoint, 1, -2.5).String())
	})

	t.Run("text is not escaped", func(t *testing.T) {
		assert.Equal(t, "!!Title<a,b>", Text(KeyTitle, "a,b").String())
	})
}

func TestParseToken(t *testing.T) {
	t.Run("bare", func(t *testing.T) {
		tok, err := ParseToken("!!EndPts\n")
		require.NoError(t, err)
		assert.Equal(t, KeyEndPts, tok.Keyword)
		assert.Nil(t, tok.Args)
	})

	t.Run("with args", func(t *testing.T) {
		tok, err := ParseToken("!!XRange<1.5,2>")
		require.NoError(t, err)
		assert.Equal(t, KeyXRange, tok.Keyword)
		assert.Equal(t, []string{"1.5", "2"}, tok.Args)

		vals, err := tok.Floats()
		require.NoError(t, err)
		assert.Equal(t, []float64{1.5, 2}, vals)
	})

	t.Run("empty args", func(t *testing.T) {
		tok, err := ParseToken("!!Legend<>")
		require.NoError(t, err)
		assert.Equal(t, KeyLegend, tok.Keyword)
		assert.Equal(t, "", tok.Value())
		assert.Equal(t, "!!Legend<>", tok.String())
	})

	t.Run("crlf", func(t *testing.T) {
		tok, err := ParseToken("!!Label<S>\r\n")
		require.NoError(t, err)
		assert.Equal(t, "S", tok.Value())
	})

	t.Run("malformed", func(t *testing.T) {
		for _, line := range []string{"", "New2D", "!!", "!!<1,2>", "!!Pt<1,2", "!!Pt>"} {
			_, err := ParseToken(line)
			assert.ErrorIs(t, err, ErrMalformedToken, "line %q", line)
		}
	})

	t.Run("non numeric floats", func(t *testing.T) {
		tok, err := ParseToken("!!Pt<x,1>")
		require.NoError(t, err)
		_, err = tok.Floats()
		assert.Error(t, err)
	})
}

func TestFormatCoordRoundTrip(t *testing.T) {
	values := []float64{
		0,
		math.Copysign(0, -1),
		1,
		-1,
		1.0 / 3.0,
		math.Pi,
		0.1,
		0.1 + 0.2,
		1e-300,
		-1e300,
		math.MaxFloat64,
		-math.MaxFloat64,
		math.SmallestNonzeroFloat64,
		2.2250738585072014e-308,
		math.Inf(1),
		math.Inf(-1),
	}

	rng := rand.New(rand.NewSource(41410))
	for i := 0; i < 2000; i++ {
		values = append(values, math.Float64frombits(rng.Uint64()))
	}

	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		s := FormatCoord(v)
		got, err := strconv.ParseFloat(s, 64)
		require.NoError(t, err, "value %v formatted as %q", v, s)
		assert.Equal(t, math.Float64bits(v), math.Float64bits(got), "value %v formatted as %q", v, s)
	}

	t.Run("nan", func(t *testing.T) {
		got, err := strconv.ParseFloat(FormatCoord(math.NaN()), 64)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(got))
	})
}

func TestFormatCoordThroughToken(t *testing.T) {
	tok, err := ParseToken(Pair(KeyPoint, math.Pi, -math.E).String())
	require.NoError(t, err)

	vals, err := tok.Floats()
	require.NoError(t, err)
	assert.Equal(t, []float64{math.Pi, -math.E}, vals)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "8.000000", FormatSize(8))
	assert.Equal(t, "4.500000", FormatSize(4.5))
	assert.Equal(t, "0.333333", FormatSize(1.0/3.0))
}
