package units

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids[T interface{ ID() string }](entities []T) []string {
	out := make([]string, len(entities))
	for i, e := range entities {
		out[i] = e.ID()
	}
	return out
}

func TestCatalog_Lookups(t *testing.T) {
	c := newTestCatalog(t)

	assert.Len(t, c.Units(), 22)
	assert.Equal(t, []string{"prefix:Kilo", "prefix:Milli"}, ids(c.Prefixes()))
	assert.Len(t, c.QuantityKinds(), 4)
	assert.Equal(t, []string{"sou:SI"}, ids(c.SystemsOfUnits()))

	p, err := c.Prefix("prefix:Kilo")
	require.NoError(t, err)
	assert.Equal(t, "1000", FormatRat(p.Multiplier()))

	q, err := c.QuantityKind("quantitykind:Force")
	require.NoError(t, err)
	dv, ok := q.Dimension()
	assert.True(t, ok)
	assert.Equal(t, dimForce, dv.String())

	q, err = c.QuantityKind("quantitykind:Temperature")
	require.NoError(t, err)
	_, ok = q.Dimension()
	assert.False(t, ok, "undeclared dimension")
}

func TestCatalog_UnknownIDs_NotFoundError(t *testing.T) {
	c := newTestCatalog(t)

	_, err := c.Unit("unit:NOPE")
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "unit", nf.Kind)

	_, err = c.Prefix("prefix:Nope")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = c.QuantityKind("quantitykind:Nope")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = c.SystemOfUnits("sou:Nope")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = c.BaseUnit("unit:NOPE")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = c.ScaledUnits("unit:NOPE")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = c.BroaderQuantityKinds("quantitykind:Nope")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = c.UnitsOfSystem("sou:Nope")
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.Panics(t, func() { c.MustUnit("unit:NOPE") })
}

func TestCatalog_Relations(t *testing.T) {
	c := newTestCatalog(t)

	base, err := c.BaseUnit("unit:KiloGM")
	require.NoError(t, err)
	assert.Equal(t, "unit:GM", base.ID())

	base, err = c.BaseUnit("unit:M")
	require.NoError(t, err)
	assert.Equal(t, "unit:M", base.ID(), "an unscaled unit is its own base")

	scaled, err := c.ScaledUnits("unit:M")
	require.NoError(t, err)
	assert.Equal(t, []string{"unit:KiloM", "unit:MilliM"}, ids(scaled))

	kinds, err := c.QuantityKindsOf("unit:DEG_C")
	require.NoError(t, err)
	assert.Equal(t, []string{"quantitykind:ThermodynamicTemperature"}, ids(kinds))

	broader, err := c.BroaderQuantityKinds("quantitykind:ThermodynamicTemperature")
	require.NoError(t, err)
	assert.Equal(t, []string{"quantitykind:Temperature"}, ids(broader))

	members, err := c.UnitsOfSystem("sou:SI")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"unit:A", "unit:J", "unit:K", "unit:KiloGM", "unit:M", "unit:N", "unit:SEC", "unit:W",
	}, ids(members))

	dv, err := ParseDimensionVector(dimTime)
	require.NoError(t, err)
	assert.Equal(t, []string{"unit:HR", "unit:SEC"}, ids(c.UnitsWithDimension(dv)))
	assert.Equal(t, []string{"unit:UNITLESS"}, ids(c.UnitsWithDimension(Dimensionless)))
}

func TestCatalog_SearchUnits(t *testing.T) {
	c := newTestCatalog(t)

	tests := []struct {
		name  string
		query string
		flags SearchFlags
		want  []string
	}{
		{"label", "Meter", 0, []string{"unit:M"}},
		{"symbol", "km", 0, []string{"unit:KiloM"}},
		{"local name", "KiloN", 0, []string{"unit:KiloN"}},
		{"composed label", "Meter per Second", 0, []string{"unit:M-PER-SEC"}},
		{"prefix", "Kilo", MatchPrefix, []string{"unit:KiloGM", "unit:KiloM", "unit:KiloM-PER-HR", "unit:KiloN"}},
		{"ignore case", "kilometer", IgnoreCase, []string{"unit:KiloM"}},
		{"case-sensitive miss", "kilometer", 0, []string{}},
		{"prefix ignore case", "newton", MatchPrefix | IgnoreCase, []string{"unit:N", "unit:N-M"}},
		{"miss", "Furlong", MatchPrefix, []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(c.SearchUnits(tc.query, tc.flags)))
		})
	}
}

func TestCatalog_SearchUnits_CaseSensitiveIndex(t *testing.T) {
	// GIVEN an index without folded keys
	c := newTestCatalog(t, WithCaseInsensitiveSearch(false))

	// THEN ignore-case queries still resolve
	assert.Equal(t, []string{"unit:KiloM"}, ids(c.SearchUnits("KILOMETER", IgnoreCase)))
	assert.Equal(t, []string{"unit:KiloM"}, ids(c.SearchUnits("Kilometer", 0)))
}

func TestCatalog_SearchQuantityKinds(t *testing.T) {
	c := newTestCatalog(t)

	assert.Equal(t, []string{"quantitykind:Force"}, ids(c.SearchQuantityKinds("Kraft", 0)))
	assert.Equal(t, []string{"quantitykind:Force"}, ids(c.SearchQuantityKinds("F", 0)))
	assert.Equal(t, []string{"quantitykind:Temperature"}, ids(c.SearchQuantityKinds("temp", MatchPrefix|IgnoreCase)))
	assert.Empty(t, c.SearchQuantityKinds("Meter", 0))
}
