package units

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDimension(t *testing.T, s string) DimensionVector {
	t.Helper()
	v, err := ParseDimensionVector(s)
	require.NoError(t, err, s)
	return v
}

func TestDimensionVector_RenderParse_RoundTrip(t *testing.T) {
	vectors := []DimensionVector{
		Dimensionless,
		NewDimensionVector(0, 0, 1, 0, 1, 0, -2, 0),
		NewDimensionVector(0, -1, 2, 0, 1, 0, -3, 0),
		mustDimension(t, "A0E0L0dot5I0M0H0T-1dot5D0"),
		NewDimensionVector(1, 0, -3, 0, 0, 0, 0, 0),
		mustDimension(t, "A0E0L0dot25I0M0H0T0D0"),
		NewDimensionVector(0, 0, 0, 0, 0, 0, 0, 0),
	}
	for _, v := range vectors {
		s := v.String()
		got, err := ParseDimensionVector(s)
		require.NoError(t, err, s)
		assert.Equal(t, v, got, "round trip of %s", s)
		assert.Equal(t, s, got.String())
	}
}

func TestDimensionVector_String_Canonical(t *testing.T) {
	assert.Equal(t, "A0E0L1I0M1H0T-2D0", NewDimensionVector(0, 0, 1, 0, 1, 0, -2, 0).String())
	assert.Equal(t, "A0E0L0dot5I0M0H0T0D0", mustDimension(t, "A0E0L0dot50I0M0H0T0D0").String())
	assert.Equal(t, "A0E0L0I0M0H0T0D0", mustDimension(t, "A0E0L-0I0M0H0T0D0").String())
	assert.Equal(t, "A0E0L0I0M0H0T0D1", Dimensionless.String())
}

func TestParseDimensionVector_Prefixes(t *testing.T) {
	want := NewDimensionVector(0, 0, 1, 0, 0, 0, -1, 0)
	for _, s := range []string{
		"A0E0L1I0M0H0T-1D0",
		"qkdv:A0E0L1I0M0H0T-1D0",
		"http://qudt.org/vocab/dimensionvector/A0E0L1I0M0H0T-1D0",
	} {
		got, err := ParseDimensionVector(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}
	assert.Equal(t, "http://qudt.org/vocab/dimensionvector/A0E0L1I0M0H0T-1D0", want.IRI())
}

func TestParseDimensionVector_Malformed_ParseError(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing slot", "A0E0L1I0M0H0T0"},
		{"wrong order", "E0A0L1I0M0H0T0D0"},
		{"no digits", "A0E0L-I0M0H0T0D0"},
		{"dangling dot", "A0E0L1dotI0M0H0T0D0"},
		{"trailing", "A0E0L1I0M0H0T0D0X"},
		{"lowercase", "a0e0l1i0m0h0t0d0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDimensionVector(tc.input)
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "want ParseError, got %v", err)
			assert.True(t, errors.Is(err, ErrParse))
			assert.Equal(t, tc.input, pe.Input)
		})
	}
}

func TestDimensionVector_Add_RecomputesMarker(t *testing.T) {
	// GIVEN length and inverse length
	l := NewDimensionVector(0, 0, 1, 0, 0, 0, 0, 0)
	inv := l.Scale(-1)

	// WHEN added
	sum := l.Add(inv)

	// THEN the result is dimensionless with the D marker set
	assert.True(t, sum.IsDimensionless())
	assert.Equal(t, Dimensionless, sum)
	assert.Equal(t, "A0E0L0I0M0H0T0D1", sum.String())
}

func TestDimensionVector_Scale_NoNegativeZero(t *testing.T) {
	// GIVEN time scaled by -2: zero slots must not render as "-0"
	v := NewDimensionVector(0, 0, 0, 0, 0, 0, 1, 0).Scale(-2)
	assert.Equal(t, "A0E0L0I0M0H0T-2D0", v.String())
}

func TestDimensionVector_TextMarshalling(t *testing.T) {
	v := NewDimensionVector(0, 0, 2, 0, 0, 0, 0, 0)
	text, err := v.MarshalText()
	require.NoError(t, err)

	var got DimensionVector
	require.NoError(t, got.UnmarshalText(text))
	assert.True(t, v.Equal(got))
	assert.Error(t, got.UnmarshalText([]byte("nope")))
}

func TestDimensionVector_Add_FractionalExponentsStayExact(t *testing.T) {
	// GIVEN a tenth of a length dimension
	tenth := mustDimension(t, "A0E0L0dot1I0M0H0T0D0")

	// WHEN it is added to itself three times
	sum := tenth.Add(tenth).Add(tenth)

	// THEN the result equals three tenths exactly
	assert.Equal(t, mustDimension(t, "A0E0L0dot3I0M0H0T0D0"), sum)
	assert.Equal(t, "A0E0L0dot3I0M0H0T0D0", sum.String())
	assert.Equal(t, "3/10", sum.Get(DimLength).RatString())
}

func TestDimensionVector_Scale_FractionalToInteger(t *testing.T) {
	half := mustDimension(t, "A0E0L0dot5I0M0H0T-0dot5D0")
	assert.Equal(t, NewDimensionVector(0, 0, 1, 0, 0, 0, -1, 0), half.Scale(2))
	assert.Equal(t, Dimensionless, half.Scale(0))
}

func TestParseDimensionVector_ExponentOutOfRange(t *testing.T) {
	_, err := ParseDimensionVector("A0E0L99999999999999999999I0M0H0T0D0")
	assert.True(t, errors.Is(err, ErrParse))
}
