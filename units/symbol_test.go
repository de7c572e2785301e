package units

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Symbol(t *testing.T) {
	c := newTestCatalog(t)

	tests := []struct {
		name string
		fus  FactorUnits
		want string
	}{
		{"newton", FactorUnits{fu("unit:KiloGM", 1), fu("unit:M", 1), fu("unit:SEC", -2)}, "kg·m/s²"},
		{"reciprocal", FactorUnits{fu("unit:SEC", -1)}, "1/s"},
		{"grouped denominator", FactorUnits{fu("unit:KiloGM", 1), fu("unit:M", -1), fu("unit:SEC", -2)}, "kg/(m·s²)"},
		{"cube", FactorUnits{fu("unit:M", 3)}, "m³"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.Symbol(tc.fus)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := c.Symbol(FactorUnits{fu("unit:UNITLESS", 1), fu("unit:M", 1)})
	assert.True(t, errors.Is(err, ErrArgument), "factor without a symbol")
}

func TestCatalog_UCUMCodeAndLocalName(t *testing.T) {
	c := newTestCatalog(t)
	n := FactorUnits{fu("unit:KiloGM", 1), fu("unit:M", 1), fu("unit:SEC", -2)}

	code, err := c.UCUMCode(n)
	require.NoError(t, err)
	assert.Equal(t, "kg.m.s-2", code)

	assert.Equal(t, "KiloGM-M-PER-SEC2", c.LocalName(n))
	assert.Equal(t, "PER-SEC", c.LocalName(FactorUnits{fu("unit:SEC", -1)}))
	assert.Equal(t, "M3", c.LocalName(FactorUnits{fu("unit:M", 3)}))
}

func TestCatalog_Labels(t *testing.T) {
	c := newTestCatalog(t)

	got := c.Labels(FactorUnits{fu("unit:KiloGM", 1), fu("unit:M", 1), fu("unit:SEC", -2)})
	assert.Equal(t, []LangString{
		{Text: "Kilogramm Meter pro QuadratSekunde", Lang: "de"},
		{Text: "Kilogram Meter per Square Second", Lang: "en"},
	}, got)

	// Exponents without a locale entry drop the language.
	assert.Empty(t, c.Labels(FactorUnits{fu("unit:M", 4)}))

	// A factor missing the language drops it.
	got = c.Labels(FactorUnits{fu("unit:A", 1), fu("unit:SEC", 1)})
	assert.Equal(t, []LangString{{Text: "Ampere Second", Lang: "en"}}, got)
}

func TestCatalog_Labels_CustomLocales(t *testing.T) {
	// GIVEN a locale table with a single language
	c := newTestCatalog(t, WithLocales(LocaleTable{"en": {Per: "/", Joiner: "-"}}))

	// THEN composed labels follow it
	assert.Equal(t, "Meter / Second", c.MustUnit("unit:M-PER-SEC").Label("en"))
	assert.Equal(t, "", c.MustUnit("unit:M-PER-SEC").Label("de"))
	assert.Empty(t, c.MustUnit("unit:M2").Labels(), "no power entries")
}

func TestSuperscript(t *testing.T) {
	assert.Equal(t, "²", superscript(2))
	assert.Equal(t, "⁻¹²", superscript(-12))
}

func TestCatalog_ComposedNames_IndependentOfFactorOrder(t *testing.T) {
	c := newTestCatalog(t)

	// GIVEN the same product written three ways
	products := []FactorUnits{
		{fu("unit:M", 2), fu("unit:SEC", -1)},
		{fu("unit:M", 1), fu("unit:SEC", -1), fu("unit:M", 1)},
		{fu("unit:SEC", -1), fu("unit:M", 2)},
	}
	for _, p := range products {
		// THEN every composed name is the canonical one
		sym, err := c.Symbol(p)
		require.NoError(t, err)
		assert.Equal(t, "m²/s", sym, "%v", p)

		code, err := c.UCUMCode(p)
		require.NoError(t, err)
		assert.Equal(t, "m2.s-1", code, "%v", p)

		assert.Equal(t, "M2-PER-SEC", c.LocalName(p), "%v", p)
		assert.Equal(t, c.Labels(products[0]), c.Labels(p), "%v", p)
	}

	assert.Equal(t, "M-SEC", c.LocalName(FactorUnits{fu("unit:SEC", 1), fu("unit:M", 1)}))
	assert.Equal(t, "M-SEC", c.LocalName(FactorUnits{fu("unit:M", 1), fu("unit:SEC", 1)}))
}

func TestCatalog_Symbol_EmptyProduct(t *testing.T) {
	c := newTestCatalog(t)

	_, err := c.Symbol(FactorUnits{fu("unit:M", 1), fu("unit:M", -1)})
	assert.True(t, errors.Is(err, ErrArgument))
	_, err = c.UCUMCode(nil)
	assert.True(t, errors.Is(err, ErrArgument))
	assert.Equal(t, "", c.LocalName(nil))
}

func TestCatalog_Symbol_BracketsCompoundFactors(t *testing.T) {
	c := newTestCatalog(t)
	require.Equal(t, "m/s", c.MustUnit("unit:M-PER-SEC").Symbol())

	tests := []struct {
		name string
		fus  FactorUnits
		want string
	}{
		{"squared quotient", FactorUnits{fu("unit:M-PER-SEC", 2)}, "(m/s)²"},
		{"quotient in denominator", FactorUnits{fu("unit:KiloGM", 1), fu("unit:M-PER-SEC", -1)}, "kg/(m/s)"},
		{"quotient beside another factor", FactorUnits{fu("unit:KiloGM", 1), fu("unit:M-PER-SEC", 1)}, "kg·(m/s)"},
		{"product to the first power", FactorUnits{fu("unit:J", 1), fu("unit:SEC", -1)}, "N·m/s"},
		{"product in denominator", FactorUnits{fu("unit:W", 1), fu("unit:J", -1)}, "(N·m/s)/(N·m)"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.Symbol(tc.fus)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	code, err := c.UCUMCode(FactorUnits{fu("unit:M-PER-SEC", 2)})
	require.NoError(t, err)
	assert.Equal(t, "(m.s-1)2", code)
}
